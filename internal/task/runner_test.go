package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/phrazzld/skeleton-api/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:    1,
		MaxAttempts:    3,
		NewBackOff:     func() backoff.BackOff { return &backoff.ZeroBackOff{} },
		PollErrorDelay: time.Millisecond,
	}
}

func TestRunnerProcess(t *testing.T) {
	tests := []struct {
		name         string
		handler      Handler
		wantAttempts int
		wantErr      error
		wantFailed   int
		outcome      string
	}{
		{
			name:         "succeeds first time",
			handler:      func(context.Context, *Job) error { return nil },
			wantAttempts: 1,
			outcome:      telemetry.OutcomeSucceeded,
		},
		{
			name: "succeeds after a retry",
			handler: func(_ context.Context, j *Job) error {
				if j.Attempts < 2 {
					return errors.New("flaky")
				}
				return nil
			},
			wantAttempts: 2,
			outcome:      telemetry.OutcomeSucceeded,
		},
		{
			name:         "exhausts attempts",
			handler:      func(context.Context, *Job) error { return errors.New("down") },
			wantAttempts: 3,
			wantErr:      errors.New("down"),
			wantFailed:   1,
			outcome:      telemetry.OutcomeFailed,
		},
		{
			name: "discarded without retry",
			handler: func(context.Context, *Job) error {
				return Discard(errors.New("bad payload"))
			},
			wantAttempts: 1,
			wantErr:      ErrDiscard,
			outcome:      telemetry.OutcomeDiscarded,
		},
		{
			name:         "panic counts as failure",
			handler:      func(context.Context, *Job) error { panic("boom") },
			wantAttempts: 3,
			wantErr:      errors.New("panicked"),
			wantFailed:   1,
			outcome:      telemetry.OutcomeFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobName := "process_" + t.Name()
			registry := NewRegistry()
			registry.Register(jobName, tt.handler)
			failed := NewMemoryFailedJobStore()
			r := NewRunner(NewMemoryQueue(1, nil), registry, failed, testRunnerConfig(), setupTestLogger())

			job := newTestJob(t, jobName)
			before := testutil.ToFloat64(telemetry.JobsProcessed.WithLabelValues(jobName, tt.outcome))

			err := r.Process(context.Background(), job)

			assert.Equal(t, tt.wantAttempts, job.Attempts)
			switch {
			case tt.wantErr == nil:
				assert.NoError(t, err)
			case errors.Is(tt.wantErr, ErrDiscard):
				assert.ErrorIs(t, err, ErrDiscard)
			default:
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
			}
			assert.Len(t, failed.List(), tt.wantFailed)
			after := testutil.ToFloat64(telemetry.JobsProcessed.WithLabelValues(jobName, tt.outcome))
			assert.Equal(t, before+1, after)
		})
	}
}

func TestRunnerProcessUnknownJob(t *testing.T) {
	failed := NewMemoryFailedJobStore()
	r := NewRunner(NewMemoryQueue(1, nil), NewRegistry(), failed, testRunnerConfig(), setupTestLogger())

	err := r.Process(context.Background(), newTestJob(t, "nobody_handles_this"))
	assert.ErrorIs(t, err, ErrUnknownJob)
	assert.ErrorIs(t, err, ErrDiscard)
	assert.Empty(t, failed.List())
}

func TestRunnerRecordsFailureDetails(t *testing.T) {
	registry := NewRegistry()
	registry.Register("always_fails", func(context.Context, *Job) error { return errors.New("still down") })
	failed := NewMemoryFailedJobStore()
	r := NewRunner(NewMemoryQueue(1, nil), registry, failed, testRunnerConfig(), setupTestLogger())

	job := newTestJob(t, "always_fails")
	require.Error(t, r.Process(context.Background(), job))

	recorded := failed.List()
	require.Len(t, recorded, 1)
	assert.Equal(t, job.ID, recorded[0].Job.ID)
	assert.Equal(t, 3, recorded[0].Job.Attempts)
	assert.Equal(t, "still down", recorded[0].LastError)
}

func TestRunnerStartStop(t *testing.T) {
	queue := NewMemoryQueue(10, setupTestLogger())
	registry := NewRegistry()

	var done atomic.Int32
	registry.Register("tick", func(context.Context, *Job) error {
		done.Add(1)
		return nil
	})

	r := NewRunner(queue, registry, nil, testRunnerConfig(), setupTestLogger())
	r.Start()

	for i := 0; i < 5; i++ {
		require.NoError(t, queue.Enqueue(context.Background(), newTestJob(t, "tick")))
	}

	assert.Eventually(t, func() bool { return done.Load() == 5 }, time.Second, 5*time.Millisecond)
	r.Stop()
}

func TestRunnerStopAbandonsPendingRetries(t *testing.T) {
	queue := NewMemoryQueue(1, setupTestLogger())
	registry := NewRegistry()

	attempted := make(chan struct{}, 1)
	registry.Register("slow_retry", func(context.Context, *Job) error {
		select {
		case attempted <- struct{}{}:
		default:
		}
		return errors.New("down")
	})

	cfg := testRunnerConfig()
	cfg.NewBackOff = func() backoff.BackOff { return backoff.NewConstantBackOff(time.Hour) }
	failed := NewMemoryFailedJobStore()
	r := NewRunner(queue, registry, failed, cfg, setupTestLogger())
	r.Start()

	require.NoError(t, queue.Enqueue(context.Background(), newTestJob(t, "slow_retry")))
	<-attempted

	stopped := make(chan struct{})
	go func() {
		r.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop while waiting to retry")
	}
	require.Len(t, failed.List(), 1)
	assert.Equal(t, 1, failed.List()[0].Job.Attempts)
}

type failingQueue struct {
	*MemoryQueue
	calls atomic.Int32
}

func (q *failingQueue) Dequeue(ctx context.Context) (*Job, error) {
	if q.calls.Add(1) == 1 {
		return nil, Discard(errors.New("garbage entry"))
	}
	if q.calls.Load() == 2 {
		return nil, errors.New("connection reset")
	}
	return q.MemoryQueue.Dequeue(ctx)
}

func TestRunnerSurvivesQueueErrors(t *testing.T) {
	q := &failingQueue{MemoryQueue: NewMemoryQueue(1, setupTestLogger())}
	registry := NewRegistry()

	handled := make(chan struct{})
	registry.Register("after_errors", func(context.Context, *Job) error {
		close(handled)
		return nil
	})

	r := NewRunner(q, registry, nil, testRunnerConfig(), setupTestLogger())
	r.Start()
	defer r.Stop()

	require.NoError(t, q.Enqueue(context.Background(), newTestJob(t, "after_errors")))

	select {
	case <-handled:
	case <-time.After(time.Second):
		t.Fatal("job was not processed after queue errors")
	}
}
