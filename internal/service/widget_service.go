package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/skeleton-api/internal/cache"
	"github.com/phrazzld/skeleton-api/internal/domain"
	"github.com/phrazzld/skeleton-api/internal/pagination"
	"github.com/phrazzld/skeleton-api/internal/platform/logger"
	"github.com/phrazzld/skeleton-api/internal/store"
	"github.com/phrazzld/skeleton-api/internal/task"
)

// JobWidgetCreated is enqueued after a widget is stored.
const JobWidgetCreated = "widget.created"

// WidgetCreatedPayload is the payload of JobWidgetCreated.
type WidgetCreatedPayload struct {
	WidgetID uuid.UUID `json:"widget_id"`
}

// WidgetService provides widget-related operations
type WidgetService interface {
	// ListWidgets returns one page of widgets, oldest first.
	ListWidgets(ctx context.Context, req pagination.Request) (pagination.Page[*domain.Widget], error)

	// GetWidget retrieves a widget by its ID, consulting the cache first.
	GetWidget(ctx context.Context, id uuid.UUID) (*domain.Widget, error)

	// CreateWidget validates and stores a new widget, then enqueues
	// JobWidgetCreated.
	CreateWidget(ctx context.Context, name, description string, quantity int) (*domain.Widget, error)
}

// WidgetServiceConfig holds the collaborators of the widget service. Cache
// and Jobs may be nil.
type WidgetServiceConfig struct {
	Store    store.WidgetStore
	Strategy pagination.Strategy
	Cache    cache.Cache
	CacheTTL time.Duration
	Jobs     task.Enqueuer
	Queue    string
}

type widgetServiceImpl struct {
	store    store.WidgetStore
	strategy pagination.Strategy
	cache    cache.Cache
	cacheTTL time.Duration
	jobs     task.Enqueuer
	queue    string
	logger   *slog.Logger
}

// NewWidgetService creates a new WidgetService.
// It returns an error if the store or the strategy is nil.
func NewWidgetService(cfg WidgetServiceConfig, logger *slog.Logger) (WidgetService, error) {
	if cfg.Store == nil {
		return nil, errors.New("widget store cannot be nil")
	}
	if cfg.Strategy == nil {
		return nil, errors.New("pagination strategy cannot be nil")
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.Noop{}
	}
	if cfg.Jobs == nil {
		cfg.Jobs = task.NopEnqueuer{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &widgetServiceImpl{
		store:    cfg.Store,
		strategy: cfg.Strategy,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
		jobs:     cfg.Jobs,
		queue:    cfg.Queue,
		logger:   logger.With(slog.String("component", "widget_service")),
	}, nil
}

// ListWidgets implements WidgetService.
func (s *widgetServiceImpl) ListWidgets(
	ctx context.Context,
	req pagination.Request,
) (pagination.Page[*domain.Widget], error) {
	collection := pagination.CollectionFuncs[*domain.Widget]{
		CountFunc: s.store.Count,
		SliceFunc: s.store.List,
	}

	page, err := pagination.Paginate(ctx, s.strategy, req, collection)
	if err != nil {
		return page, NewServiceError("list_widgets", "failed to paginate widgets", err)
	}
	return page, nil
}

// GetWidget implements WidgetService.
func (s *widgetServiceImpl) GetWidget(ctx context.Context, id uuid.UUID) (*domain.Widget, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	w, err := cache.Fetch(ctx, s.cache, widgetCacheKey(id), s.cacheTTL,
		func(ctx context.Context) (*domain.Widget, error) {
			return s.store.GetByID(ctx, id)
		},
		func(op string, err error) {
			log.Warn("widget cache unavailable",
				slog.String("op", op),
				slog.String("widget_id", id.String()),
				slog.String("error", err.Error()))
		})
	if err != nil {
		return nil, NewServiceError("get_widget", "failed to retrieve widget", err)
	}
	return w, nil
}

// CreateWidget implements WidgetService. A failure to enqueue the follow-up
// job is logged and does not fail the request; the widget is already stored.
func (s *widgetServiceImpl) CreateWidget(
	ctx context.Context,
	name, description string,
	quantity int,
) (*domain.Widget, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	w, err := domain.NewWidget(name, description, quantity)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, w); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		return nil, NewServiceError("create_widget", "failed to save widget", err)
	}

	job, err := task.NewJob(JobWidgetCreated, s.queue, WidgetCreatedPayload{WidgetID: w.ID})
	if err == nil {
		err = s.jobs.Enqueue(ctx, job)
	}
	if err != nil {
		log.Error("failed to enqueue widget job",
			slog.String("widget_id", w.ID.String()),
			slog.String("job", JobWidgetCreated),
			slog.String("error", err.Error()))
	}

	return w, nil
}

func widgetCacheKey(id uuid.UUID) string {
	return "widget:" + id.String()
}
