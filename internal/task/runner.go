package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/phrazzld/skeleton-api/internal/telemetry"
)

// RunnerConfig holds configuration for the job runner
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process jobs
	WorkerCount int

	// MaxAttempts is the total number of executions a job gets, the first
	// one included
	MaxAttempts int

	// NewBackOff builds the wait policy between attempts of one job
	NewBackOff func() backoff.BackOff

	// PollErrorDelay is how long a worker pauses after the queue fails
	PollErrorDelay time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:    2,
		MaxAttempts:    3,
		NewBackOff:     func() backoff.BackOff { return NewPolynomialBackOff() },
		PollErrorDelay: time.Second,
	}
}

// Runner pulls jobs off a queue and executes their handlers.
type Runner struct {
	queue    Queue
	registry *Registry
	failed   FailedJobStore
	config   RunnerConfig
	pool     *WorkerPool
	logger   *slog.Logger
}

// NewRunner creates a new Runner. failed may be nil, in which case jobs
// that exhaust their attempts are only logged.
func NewRunner(queue Queue, registry *Registry, failed FailedJobStore, config RunnerConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultRunnerConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.NewBackOff == nil {
		config.NewBackOff = defaults.NewBackOff
	}
	if config.PollErrorDelay <= 0 {
		config.PollErrorDelay = defaults.PollErrorDelay
	}

	logger = logger.With(slog.String("component", "job_runner"))
	return &Runner{
		queue:    queue,
		registry: registry,
		failed:   failed,
		config:   config,
		pool:     NewWorkerPool(WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger),
		logger:   logger,
	}
}

// Start begins processing jobs in the background.
func (r *Runner) Start() {
	r.logger.Info("starting job runner",
		"worker_count", r.pool.WorkerCount(),
		"max_attempts", r.config.MaxAttempts)
	r.pool.Start(r.work)
}

// Stop gracefully shuts down the runner. Attempts already executing are
// allowed to finish; pending retries are abandoned and recorded as failed.
func (r *Runner) Stop() {
	r.pool.Stop()
	r.logger.Info("job runner stopped")
}

func (r *Runner) work(ctx context.Context, workerID int) {
	for {
		job, err := r.queue.Dequeue(ctx)
		if err != nil {
			switch {
			case ctx.Err() != nil, errors.Is(err, ErrQueueClosed):
				return
			case errors.Is(err, ErrDiscard):
				r.logger.Warn("discarding undecodable job", "worker_id", workerID, "error", err)
				telemetry.JobsProcessed.WithLabelValues("unknown", telemetry.OutcomeDiscarded).Inc()
				continue
			default:
				r.logger.Error("failed to dequeue job", "worker_id", workerID, "error", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(r.config.PollErrorDelay):
				}
				continue
			}
		}

		_ = r.Process(ctx, job)
	}
}

// Process executes job, retrying failures until it succeeds, is discarded,
// runs out of attempts or ctx is done. The returned error is the final
// failure, if any.
func (r *Runner) Process(ctx context.Context, job *Job) error {
	start := time.Now()
	log := r.logger.With(
		"job_id", job.ID,
		"job_name", job.Name,
		"queue", job.Queue)

	err := r.retry(ctx, job, log)
	telemetry.JobDuration.WithLabelValues(job.Name).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		log.Info("job completed", "attempts", job.Attempts)
		telemetry.JobsProcessed.WithLabelValues(job.Name, telemetry.OutcomeSucceeded).Inc()
	case errors.Is(err, ErrDiscard):
		log.Warn("job discarded", "attempts", job.Attempts, "error", err)
		telemetry.JobsProcessed.WithLabelValues(job.Name, telemetry.OutcomeDiscarded).Inc()
	default:
		log.Error("job failed", "attempts", job.Attempts, "error", err)
		telemetry.JobsProcessed.WithLabelValues(job.Name, telemetry.OutcomeFailed).Inc()
		if r.failed != nil {
			if recErr := r.failed.Record(context.WithoutCancel(ctx), job, err); recErr != nil {
				log.Error("failed to record failed job", "error", recErr)
			}
		}
	}
	return err
}

func (r *Runner) retry(ctx context.Context, job *Job, log *slog.Logger) error {
	h, ok := r.registry.Lookup(job.Name)
	if !ok {
		return Discard(fmt.Errorf("%w: %s", ErrUnknownJob, job.Name))
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(r.config.NewBackOff(), uint64(r.config.MaxAttempts-1)),
		ctx)

	operation := func() error {
		job.Attempts++
		err := execute(context.WithoutCancel(ctx), h, job)
		if errors.Is(err, ErrDiscard) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		log.Warn("job attempt failed, retrying",
			"attempt", job.Attempts,
			"retry_in", wait,
			"error", err)
		telemetry.JobsProcessed.WithLabelValues(job.Name, telemetry.OutcomeRetried).Inc()
	}

	return backoff.RetryNotify(operation, policy, notify)
}

// execute runs h once, converting a panic into an error.
func execute(ctx context.Context, h Handler, job *Job) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("job %s panicked: %v\n%s", job.Name, rec, debug.Stack())
		}
	}()
	return h(ctx, job)
}
