package thumbnail

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
)

// Queue is the producer side of the thumbnail job queue.
//
// Enqueue failures after a successful upload are logged and swallowed by
// the caller: the record stays valid, it just never gains thumbnails.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
}

// AsynqQueue implements Queue on an asynq (Redis-backed) task queue.
//
// Retry policy for failed jobs lives here on the producer side; the
// worker itself never retries. Jobs that can never succeed wrap
// asynq.SkipRetry and are dropped by the queue after the first attempt.
type AsynqQueue struct {
	client *asynq.Client
}

// NewAsynqQueue creates a queue producer talking to the given Redis server.
func NewAsynqQueue(redisOpt asynq.RedisClientOpt) *AsynqQueue {
	return &AsynqQueue{client: asynq.NewClient(redisOpt)}
}

// Enqueue submits a generation job.
func (q *AsynqQueue) Enqueue(ctx context.Context, job Job) error {
	payload, err := job.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode thumbnail job: %w", err)
	}

	task := asynq.NewTask(TaskTypeGenerate, payload)
	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue thumbnail job: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (q *AsynqQueue) Close() error {
	return q.client.Close()
}
