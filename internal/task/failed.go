package task

import (
	"context"
	"sync"
	"time"
)

// FailedJob is a job that exhausted its attempts.
type FailedJob struct {
	Job       Job
	LastError string
	FailedAt  time.Time
}

// FailedJobStore keeps jobs that could not be completed so they can be
// inspected or replayed.
type FailedJobStore interface {
	Record(ctx context.Context, job *Job, cause error) error
}

// MemoryFailedJobStore keeps failed jobs in process memory.
type MemoryFailedJobStore struct {
	mu   sync.Mutex
	jobs []FailedJob
}

// NewMemoryFailedJobStore creates an empty store.
func NewMemoryFailedJobStore() *MemoryFailedJobStore {
	return &MemoryFailedJobStore{}
}

// Record implements FailedJobStore.
func (s *MemoryFailedJobStore) Record(_ context.Context, job *Job, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, FailedJob{
		Job:       *job,
		LastError: cause.Error(),
		FailedAt:  time.Now().UTC(),
	})
	return nil
}

// List returns the recorded failures, oldest first.
func (s *MemoryFailedJobStore) List() []FailedJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]FailedJob, len(s.jobs))
	copy(out, s.jobs)
	return out
}
