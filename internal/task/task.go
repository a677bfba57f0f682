package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/phrazzld/skeleton-api/internal/jsonutil"
)

// DefaultQueue is the queue name used when none is given.
const DefaultQueue = "default"

// ErrDiscard marks a failure that retrying cannot fix, such as a payload
// that does not decode. Wrap it with Discard.
var ErrDiscard = errors.New("job discarded")

// ErrUnknownJob is returned when no handler is registered for a job name.
var ErrUnknownJob = errors.New("no handler registered for job")

// Discard wraps err so the runner drops the job instead of retrying it.
func Discard(err error) error {
	return fmt.Errorf("%w: %w", ErrDiscard, err)
}

// Job is the unit of background work as it travels through a queue.
type Job struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Queue      string          `json:"queue"`
	Payload    json.RawMessage `json:"payload"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// NewJob encodes payload and returns a job with a fresh ULID.
func NewJob(name, queue string, payload any) (*Job, error) {
	if name == "" {
		return nil, errors.New("job name is required")
	}
	if queue == "" {
		queue = DefaultQueue
	}

	data, err := jsonutil.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload for job %s: %w", name, err)
	}

	return &Job{
		ID:         ulid.Make().String(),
		Name:       name,
		Queue:      queue,
		Payload:    data,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the payload into v. Decoding failures are wrapped with
// ErrDiscard since the same bytes will never decode on a later attempt.
func (j *Job) Decode(v any) error {
	if err := jsonutil.Unmarshal(j.Payload, v); err != nil {
		return Discard(fmt.Errorf("failed to decode payload for job %s: %w", j.Name, err))
	}
	return nil
}

// Handler executes one job.
type Handler func(ctx context.Context, job *Job) error

// Registry maps job names to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds h to name, replacing any earlier handler.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Lookup returns the handler for name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Enqueuer accepts jobs for later execution.
type Enqueuer interface {
	Enqueue(ctx context.Context, job *Job) error
}

// Queue is a source and sink of jobs.
type Queue interface {
	Enqueuer

	// Dequeue blocks until a job is available or ctx is done.
	Dequeue(ctx context.Context) (*Job, error)

	// Ping reports whether the queue's backing store is reachable.
	Ping(ctx context.Context) error

	// Close stops accepting new jobs.
	Close() error
}

// NopEnqueuer drops every job. It stands in when background processing is
// disabled.
type NopEnqueuer struct{}

// Enqueue implements Enqueuer.
func (NopEnqueuer) Enqueue(context.Context, *Job) error { return nil }
