package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestQueue(t *testing.T) *RedisRenderQueue {
	t.Helper()
	mr := miniredis.RunT(t)
	q, err := NewRedisRenderQueue(Config{
		Addr:       mr.Addr(),
		Stream:     "test:renders",
		Group:      "renderers",
		Consumer:   "test-consumer",
		Block:      50 * time.Millisecond,
		ClaimIdle:  time.Minute,
		RetryDelay: 10 * time.Millisecond,
		MaxRetries: 2,
	})
	if err != nil {
		t.Fatalf("NewRedisRenderQueue: %v", err)
	}
	t.Cleanup(func() { q.Close() })
	return q
}

func TestEnqueueRequiresGenerationID(t *testing.T) {
	q := newTestQueue(t)
	if _, err := q.Enqueue(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank generation id")
	}
}

func TestStartDeliversJobs(t *testing.T) {
	q := newTestQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	seen := make(map[string]int)
	done := make(chan struct{})
	q.ensureGroup(ctx)

	job, err := q.Enqueue(ctx, "gen-1")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if job.ID == "" {
		t.Fatal("expected job id assigned")
	}

	q.Start(ctx, 1, func(_ context.Context, j RenderJob) error {
		mu.Lock()
		seen[j.GenerationID]++
		mu.Unlock()
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for job")
	}
	mu.Lock()
	defer mu.Unlock()
	if seen["gen-1"] != 1 {
		t.Fatalf("expected gen-1 handled once, got %d", seen["gen-1"])
	}
}

func TestFailedJobRetriesThenDrops(t *testing.T) {
	q := newTestQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var attempts []int
	settled := make(chan struct{})
	q.ensureGroup(ctx)

	if _, err := q.Enqueue(ctx, "gen-retry"); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	q.Start(ctx, 1, func(_ context.Context, j RenderJob) error {
		mu.Lock()
		attempts = append(attempts, j.Attempts)
		if len(attempts) == 2 {
			close(settled)
		}
		mu.Unlock()
		return errors.New("render failed")
	})

	select {
	case <-settled:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for retries")
	}
	// Give the loop a moment; a third delivery would mean the drop cap
	// is not enforced.
	time.Sleep(200 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if len(attempts) != 2 {
		t.Fatalf("expected exactly 2 attempts, got %v", attempts)
	}
	if attempts[0] != 1 || attempts[1] != 2 {
		t.Fatalf("expected attempt counts [1 2], got %v", attempts)
	}
}
