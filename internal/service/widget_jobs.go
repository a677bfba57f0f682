package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/skeleton-api/internal/cache"
	"github.com/phrazzld/skeleton-api/internal/jsonutil"
	"github.com/phrazzld/skeleton-api/internal/store"
	"github.com/phrazzld/skeleton-api/internal/task"
)

// WidgetJobs handles background work that follows widget writes.
type WidgetJobs struct {
	store    store.WidgetStore
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewWidgetJobs creates the widget job handlers. c may be nil.
func NewWidgetJobs(s store.WidgetStore, c cache.Cache, ttl time.Duration, logger *slog.Logger) *WidgetJobs {
	if c == nil {
		c = cache.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WidgetJobs{
		store:    s,
		cache:    c,
		cacheTTL: ttl,
		logger:   logger.With(slog.String("component", "widget_jobs")),
	}
}

// Register binds the handlers to their job names.
func (j *WidgetJobs) Register(r *task.Registry) {
	r.Register(JobWidgetCreated, j.WidgetCreated)
}

// WidgetCreated warms the read-through cache for a new widget. A widget
// that no longer exists is discarded rather than retried.
func (j *WidgetJobs) WidgetCreated(ctx context.Context, job *task.Job) error {
	var payload WidgetCreatedPayload
	if err := job.Decode(&payload); err != nil {
		return err
	}

	w, err := j.store.GetByID(ctx, payload.WidgetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return task.Discard(err)
		}
		return fmt.Errorf("failed to load widget %s: %w", payload.WidgetID, err)
	}

	data, err := jsonutil.Marshal(w)
	if err != nil {
		return task.Discard(err)
	}
	if err := j.cache.Set(ctx, widgetCacheKey(w.ID), data, j.cacheTTL); err != nil {
		return fmt.Errorf("failed to warm cache for widget %s: %w", w.ID, err)
	}

	j.logger.Info("widget cache warmed", slog.String("widget_id", w.ID.String()), slog.String("job_id", job.ID))
	return nil
}

