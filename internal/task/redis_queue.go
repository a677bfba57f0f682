package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/skeleton-api/internal/jsonutil"
	goredis "github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces queue lists in Redis.
const KeyPrefix = "skeleton:queue:"

// RedisQueue keeps jobs in a Redis list. Producers LPUSH and consumers
// BRPOP, so jobs are delivered oldest first and each to one consumer.
type RedisQueue struct {
	client       goredis.UniversalClient
	key          string
	blockTimeout time.Duration
	logger       *slog.Logger
}

// NewRedisQueue creates a queue over the list for the named queue.
func NewRedisQueue(client goredis.UniversalClient, queue string, logger *slog.Logger) *RedisQueue {
	if queue == "" {
		queue = DefaultQueue
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisQueue{
		client:       client,
		key:          KeyPrefix + queue,
		blockTimeout: time.Second,
		logger:       logger.With(slog.String("component", "redis_queue")),
	}
}

var _ Queue = (*RedisQueue)(nil)

// Enqueue implements Queue.
func (q *RedisQueue) Enqueue(ctx context.Context, job *Job) error {
	data, err := jsonutil.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", job.ID, err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("failed to push job %s: %w", job.ID, err)
	}
	q.logger.Debug("job enqueued", "job_id", job.ID, "job_name", job.Name, "key", q.key)
	return nil
}

// Dequeue implements Queue. It polls with a short blocking pop so that
// cancellation of ctx is noticed promptly. An entry that does not decode is
// removed from the list and reported wrapped with ErrDiscard.
func (q *RedisQueue) Dequeue(ctx context.Context) (*Job, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := q.client.BRPop(ctx, q.blockTimeout, q.key).Result()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("failed to pop from %s: %w", q.key, err)
		}

		// BRPOP replies with [key, value].
		var job Job
		if err := jsonutil.Unmarshal([]byte(res[1]), &job); err != nil {
			return nil, Discard(fmt.Errorf("failed to decode job from %s: %w", q.key, err))
		}
		return &job, nil
	}
}

// Ping implements Queue.
func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Close implements Queue. The client is owned by the caller and stays open.
func (q *RedisQueue) Close() error {
	return nil
}

// Len returns the number of jobs waiting in the list.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
