package postgres

import (
	"context"
	"log/slog"

	"github.com/phrazzld/skeleton-api/internal/store"
	"github.com/phrazzld/skeleton-api/internal/task"
)

// PostgresFailedJobStore records exhausted jobs in the failed_jobs table.
type PostgresFailedJobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFailedJobStore creates a new PostgresFailedJobStore.
func NewPostgresFailedJobStore(db store.DBTX, logger *slog.Logger) *PostgresFailedJobStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresFailedJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "failed_job_store")),
	}
}

var _ task.FailedJobStore = (*PostgresFailedJobStore)(nil)

// Record implements task.FailedJobStore. Recording the same job again
// overwrites the earlier entry.
func (s *PostgresFailedJobStore) Record(ctx context.Context, job *task.Job, cause error) error {
	query := `
		INSERT INTO failed_jobs (id, name, queue, payload, attempts, last_error, failed_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (id) DO UPDATE
		SET attempts = EXCLUDED.attempts,
			last_error = EXCLUDED.last_error,
			failed_at = EXCLUDED.failed_at
	`
	_, err := s.db.ExecContext(ctx, query,
		job.ID,
		job.Name,
		job.Queue,
		string(job.Payload),
		job.Attempts,
		cause.Error(),
	)
	if err != nil {
		s.logger.Error("failed to record failed job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID))
		return store.NewStoreError("failed_job", "record", "insert failed", MapError(err))
	}
	return nil
}

// Count returns the number of recorded failures.
func (s *PostgresFailedJobStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM failed_jobs`).Scan(&n); err != nil {
		return 0, store.NewStoreError("failed_job", "count", "query failed", MapError(err))
	}
	return n, nil
}
