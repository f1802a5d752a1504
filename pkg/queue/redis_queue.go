package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RenderJob is one queued video render.
type RenderJob struct {
	ID           string
	GenerationID string
	Attempts     int
}

// RedisRenderQueue feeds video render jobs through a Redis Stream with a
// consumer group, so renders survive a worker restart and can be claimed
// from a dead consumer.
type RedisRenderQueue struct {
	client       *redis.Client
	stream       string
	group        string
	consumerBase string
	block        time.Duration
	claimIdle    time.Duration
	retryDelay   time.Duration
	maxRetries   int
	maxLen       int64
	once         sync.Once
}

type Config struct {
	Addr       string
	Password   string
	Stream     string
	Group      string
	Consumer   string
	Block      time.Duration
	ClaimIdle  time.Duration
	RetryDelay time.Duration
	MaxRetries int
	MaxLen     int64
}

// NewRedisRenderQueue validates config and connects.
func NewRedisRenderQueue(cfg Config) (*RedisRenderQueue, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("redis addr required")
	}
	stream := strings.TrimSpace(cfg.Stream)
	if stream == "" {
		stream = "studyhub:video:renders"
	}
	group := strings.TrimSpace(cfg.Group)
	if group == "" {
		group = "renderers"
	}
	consumer := strings.TrimSpace(cfg.Consumer)
	if consumer == "" {
		consumer = uuid.NewString()
	}
	block := cfg.Block
	if block <= 0 {
		block = 5 * time.Second
	}
	claimIdle := cfg.ClaimIdle
	if claimIdle <= 0 {
		claimIdle = 30 * time.Second
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	maxLen := cfg.MaxLen
	if maxLen <= 0 {
		maxLen = 10000
	}
	return &RedisRenderQueue{
		client:       redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Password}),
		stream:       stream,
		group:        group,
		consumerBase: consumer,
		block:        block,
		claimIdle:    claimIdle,
		retryDelay:   retryDelay,
		maxRetries:   maxRetries,
		maxLen:       maxLen,
	}, nil
}

// Enqueue adds a render job for a generation id.
func (q *RedisRenderQueue) Enqueue(ctx context.Context, generationID string) (RenderJob, error) {
	generationID = strings.TrimSpace(generationID)
	if generationID == "" {
		return RenderJob{}, errors.New("generation id required")
	}
	job := RenderJob{ID: uuid.NewString(), GenerationID: generationID}
	if err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		MaxLen: q.maxLen,
		Approx: true,
		Values: map[string]any{
			"job_id":        job.ID,
			"generation_id": job.GenerationID,
			"attempts":      "0",
		},
	}).Err(); err != nil {
		return RenderJob{}, err
	}
	return job, nil
}

// Start launches consumer goroutines that run until ctx is canceled.
func (q *RedisRenderQueue) Start(ctx context.Context, concurrency int, handler func(context.Context, RenderJob) error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	q.ensureGroup(ctx)
	for i := 0; i < concurrency; i++ {
		consumer := fmt.Sprintf("%s-%d", q.consumerBase, i)
		go q.consumeLoop(ctx, consumer, handler)
	}
}

// Close releases the Redis connection.
func (q *RedisRenderQueue) Close() error {
	return q.client.Close()
}

func (q *RedisRenderQueue) ensureGroup(ctx context.Context) {
	q.once.Do(func() {
		err := q.client.XGroupCreateMkStream(ctx, q.stream, q.group, "$").Err()
		if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
			// best-effort; errors surface on consume
		}
	})
}

func (q *RedisRenderQueue) consumeLoop(ctx context.Context, consumer string, handler func(context.Context, RenderJob) error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if msgs, err := q.claimPending(ctx, consumer); err == nil {
			for _, msg := range msgs {
				q.handleMessage(ctx, msg, handler)
			}
		}

		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.group,
			Consumer: consumer,
			Streams:  []string{q.stream, ">"},
			Count:    10,
			Block:    q.block,
		}).Result()
		if err != nil {
			continue
		}
		for _, stream := range streams {
			for _, msg := range stream.Messages {
				q.handleMessage(ctx, msg, handler)
			}
		}
	}
}

func (q *RedisRenderQueue) claimPending(ctx context.Context, consumer string) ([]redis.XMessage, error) {
	res, _, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   q.stream,
		Group:    q.group,
		Consumer: consumer,
		MinIdle:  q.claimIdle,
		Start:    "0-0",
		Count:    10,
	}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (q *RedisRenderQueue) handleMessage(ctx context.Context, msg redis.XMessage, handler func(context.Context, RenderJob) error) {
	jobID, _ := msg.Values["job_id"].(string)
	generationID, _ := msg.Values["generation_id"].(string)
	if jobID == "" || generationID == "" {
		q.ackAndDel(ctx, msg.ID)
		return
	}
	attempts := 0
	if raw, _ := msg.Values["attempts"].(string); raw != "" {
		attempts, _ = strconv.Atoi(raw)
	}
	job := RenderJob{ID: jobID, GenerationID: generationID, Attempts: attempts + 1}

	if err := handler(ctx, job); err == nil {
		q.ackAndDel(ctx, msg.ID)
		return
	}
	if job.Attempts >= q.maxRetries {
		q.ackAndDel(ctx, msg.ID)
		return
	}
	if q.retryDelay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(q.retryDelay):
		}
	}
	_ = q.requeueAndAck(ctx, msg.ID, job)
}

func (q *RedisRenderQueue) ackAndDel(ctx context.Context, msgID string) {
	_, _ = q.client.XAck(ctx, q.stream, q.group, msgID).Result()
	_, _ = q.client.XDel(ctx, q.stream, msgID).Result()
}

func (q *RedisRenderQueue) requeueAndAck(ctx context.Context, msgID string, job RenderJob) error {
	pipe := q.client.TxPipeline()
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		MaxLen: q.maxLen,
		Approx: true,
		Values: map[string]any{
			"job_id":        job.ID,
			"generation_id": job.GenerationID,
			"attempts":      strconv.Itoa(job.Attempts),
		},
	})
	pipe.XAck(ctx, q.stream, q.group, msgID)
	pipe.XDel(ctx, q.stream, msgID)
	_, err := pipe.Exec(ctx)
	return err
}
