// Package video simulates the render pipeline behind video generations.
// There is no real model call: a render waits a configured delay, then
// fills in fabricated asset URLs and flips the record to completed.
package video

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"studyhub/pkg/domain"
	"studyhub/pkg/queue"
	"studyhub/pkg/store"
)

const defaultRenderDelay = 5 * time.Second

// Renderer drives a single generation record through
// pending -> processing -> completed.
type Renderer struct {
	store   store.Store
	delay   time.Duration
	baseURL string
	logger  *slog.Logger
}

func NewRenderer(st store.Store, delay time.Duration, logger *slog.Logger) *Renderer {
	if delay <= 0 {
		delay = defaultRenderDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		store:   st,
		delay:   delay,
		baseURL: "https://videos.studyhub.dev",
		logger:  logger,
	}
}

// Render processes one generation. Redelivered jobs for a record that
// already settled are acked without side effects.
func (r *Renderer) Render(ctx context.Context, generationID string) error {
	gen, ok, err := r.store.GetVideoGeneration(generationID)
	if err != nil {
		return err
	}
	if !ok {
		r.logger.Warn("render job for unknown generation", "generation_id", generationID)
		return nil
	}
	if gen.Status == domain.VideoCompleted || gen.Status == domain.VideoFailed {
		return nil
	}

	processing := domain.VideoProcessing
	if _, err := r.store.UpdateVideoGeneration(generationID, store.VideoGenerationPatch{Status: &processing}); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(r.delay):
	}

	completed := domain.VideoCompleted
	videoURL := fmt.Sprintf("%s/%s.mp4", r.baseURL, generationID)
	thumbURL := fmt.Sprintf("%s/%s-thumb.jpg", r.baseURL, generationID)
	completedAt := time.Now().UTC()
	if _, err := r.store.UpdateVideoGeneration(generationID, store.VideoGenerationPatch{
		Status:       &completed,
		VideoURL:     &videoURL,
		ThumbnailURL: &thumbURL,
		CompletedAt:  &completedAt,
	}); err != nil {
		return err
	}
	r.logger.Info("video render completed", "generation_id", generationID, "delay", r.delay)
	return nil
}

// Dispatcher hands a generation to the render pipeline. The server only
// sees this interface; whether renders go through Redis or an in-process
// goroutine is wiring.
type Dispatcher interface {
	Dispatch(ctx context.Context, generationID string) error
}

// QueueDispatcher enqueues renders onto a Redis Stream consumed by
// StartQueueWorkers.
type QueueDispatcher struct {
	queue *queue.RedisRenderQueue
}

func NewQueueDispatcher(q *queue.RedisRenderQueue) *QueueDispatcher {
	return &QueueDispatcher{queue: q}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, generationID string) error {
	_, err := d.queue.Enqueue(ctx, generationID)
	return err
}

// StartQueueWorkers consumes render jobs until ctx is canceled.
func StartQueueWorkers(ctx context.Context, q *queue.RedisRenderQueue, r *Renderer, concurrency int) {
	q.Start(ctx, concurrency, func(jobCtx context.Context, job queue.RenderJob) error {
		return r.Render(jobCtx, job.GenerationID)
	})
}

// LocalDispatcher renders in-process. Used when no Redis address is
// configured; a crash mid-render loses the job.
type LocalDispatcher struct {
	renderer *Renderer
	logger   *slog.Logger
}

func NewLocalDispatcher(r *Renderer, logger *slog.Logger) *LocalDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalDispatcher{renderer: r, logger: logger}
}

func (d *LocalDispatcher) Dispatch(_ context.Context, generationID string) error {
	go func() {
		if err := d.renderer.Render(context.Background(), generationID); err != nil {
			d.logger.Error("in-process render failed", "generation_id", generationID, "error", err)
		}
	}()
	return nil
}
