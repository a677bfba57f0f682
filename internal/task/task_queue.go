package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by queues
var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// MemoryQueue implements Queue with a buffered channel. Jobs are lost when
// the process exits.
type MemoryQueue struct {
	mu     sync.RWMutex
	jobs   chan *Job
	logger *slog.Logger
	closed bool
}

// NewMemoryQueue creates a new queue with the specified buffer size
func NewMemoryQueue(size int, logger *slog.Logger) *MemoryQueue {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryQueue{
		jobs:   make(chan *Job, size),
		logger: logger,
	}
}

var _ Queue = (*MemoryQueue)(nil)

// Enqueue adds a job to the queue for processing
// Returns an error if the queue is full or closed
func (q *MemoryQueue) Enqueue(_ context.Context, job *Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		q.logger.Debug("job enqueued",
			"job_id", job.ID,
			"job_name", job.Name,
			"queue_len", len(q.jobs),
			"queue_cap", cap(q.jobs))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.jobs))
	}
}

// Dequeue implements Queue. Once the queue is closed and drained it returns
// ErrQueueClosed.
func (q *MemoryQueue) Dequeue(ctx context.Context) (*Job, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case job, ok := <-q.jobs:
		if !ok {
			return nil, ErrQueueClosed
		}
		return job, nil
	}
}

// Ping implements Queue. An in-process queue is always reachable.
func (q *MemoryQueue) Ping(context.Context) error {
	return nil
}

// Close closes the queue, preventing further job submission. Jobs already
// buffered can still be dequeued.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.jobs)
		q.logger.Info("task queue closed")
	}
	return nil
}

// Len returns the number of buffered jobs.
func (q *MemoryQueue) Len() int {
	return len(q.jobs)
}
