package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/skeleton-api/internal/api"
	"github.com/phrazzld/skeleton-api/internal/cache"
	"github.com/phrazzld/skeleton-api/internal/config"
	"github.com/phrazzld/skeleton-api/internal/events"
	"github.com/phrazzld/skeleton-api/internal/health"
	"github.com/phrazzld/skeleton-api/internal/pagination"
	"github.com/phrazzld/skeleton-api/internal/platform/memory"
	"github.com/phrazzld/skeleton-api/internal/platform/postgres"
	"github.com/phrazzld/skeleton-api/internal/platform/redis"
	"github.com/phrazzld/skeleton-api/internal/service"
	"github.com/phrazzld/skeleton-api/internal/store"
	"github.com/phrazzld/skeleton-api/internal/task"
)

const (
	cacheKeyPrefix  = "skeleton:cache:"
	eventBufferSize = 256
)

// application holds all dependencies shared by the HTTP server and the
// background worker.
type application struct {
	config *config.Config
	logger *slog.Logger

	db       *sql.DB
	migrator *postgres.Migrator

	widgetStore store.WidgetStore
	failedJobs  task.FailedJobStore
	cache       cache.Cache

	queue    task.Queue
	registry *task.Registry
	runner   *task.Runner

	widgetService service.WidgetService
	reporter      *health.Reporter
	emitter       *events.AsyncEmitter
	pipeline      *api.Pipeline

	closers []func()
}

// newApplication wires every component selected by cfg. Without a database
// URL the service runs on the in-memory store.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   logger,
		registry: task.NewRegistry(),
	}

	if err := app.setupStorage(ctx); err != nil {
		app.cleanup()
		return nil, err
	}
	if err := app.setupCache(ctx); err != nil {
		app.cleanup()
		return nil, err
	}
	if err := app.setupJobs(ctx); err != nil {
		app.cleanup()
		return nil, err
	}

	strategy, err := pagination.ForName(cfg.Pagination.Strategy)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to select pagination strategy: %w", err)
	}

	var jobs task.Enqueuer = task.NopEnqueuer{}
	if app.queue != nil {
		jobs = app.queue
	}

	app.widgetService, err = service.NewWidgetService(service.WidgetServiceConfig{
		Store:    app.widgetStore,
		Strategy: strategy,
		Cache:    app.cache,
		CacheTTL: cfg.Cache.TTL,
		Jobs:     jobs,
		Queue:    cfg.Jobs.Queue,
	}, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create widget service: %w", err)
	}

	service.NewWidgetJobs(app.widgetStore, app.cache, cfg.Cache.TTL, logger).Register(app.registry)

	app.reporter = health.NewReporter(health.Config{
		Version:      cfg.App.Version,
		CacheTTL:     cfg.Health.CacheTTL,
		ProbeTimeout: cfg.Health.ProbeTimeout,
	}, logger, app.healthChecks()...)

	inner := events.NewInMemoryEventEmitter(logger)
	inner.RegisterHandler(events.MetricsHandler{})
	inner.RegisterHandler(events.LogHandler{Logger: logger})
	app.emitter = events.NewAsyncEmitter(inner, eventBufferSize, logger)

	app.pipeline = api.NewPipeline(api.NewClassifier(cfg.IsProduction(), logger), app.emitter)

	logger.Info("application initialized",
		slog.Bool("database", app.db != nil),
		slog.String("cache", cfg.Cache.Backend),
		slog.String("jobs", cfg.Jobs.Processor),
		slog.String("pagination", cfg.Pagination.Strategy))
	return app, nil
}

func (app *application) setupStorage(ctx context.Context) error {
	if app.config.Database.URL == "" {
		app.logger.Info("no database configured, using in-memory store")
		app.widgetStore = memory.NewWidgetStore()
		app.failedJobs = task.NewMemoryFailedJobStore()
		return nil
	}

	db, err := postgres.Open(ctx, app.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	app.db = db

	app.migrator, err = postgres.NewMigrator(db, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	app.widgetStore = postgres.NewPostgresWidgetStore(db, app.logger)
	app.failedJobs = postgres.NewPostgresFailedJobStore(db, app.logger)
	return nil
}

func (app *application) setupCache(ctx context.Context) error {
	switch app.config.Cache.Backend {
	case config.CacheNone:
		app.cache = cache.Noop{}
	case config.CacheMemory:
		app.cache = cache.NewMemory()
	case config.CacheRedis:
		client, closeFn, err := redis.New(ctx, app.config.Cache.RedisURL, redis.Options{})
		if err != nil {
			return fmt.Errorf("failed to connect cache: %w", err)
		}
		app.closers = append(app.closers, closeFn)
		app.cache = cache.NewRedis(client, cacheKeyPrefix)
	default:
		return fmt.Errorf("unknown cache backend %q", app.config.Cache.Backend)
	}
	return nil
}

func (app *application) setupJobs(ctx context.Context) error {
	switch app.config.Jobs.Processor {
	case config.JobsNone:
		return nil
	case config.JobsAsync:
		app.queue = task.NewMemoryQueue(app.config.Jobs.QueueSize, app.logger)
	case config.JobsRedis:
		client, closeFn, err := redis.New(ctx, app.config.Jobs.RedisURL, redis.Options{
			// BRPOP blocks for up to a second; leave headroom.
			ReadTimeout: 3 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("failed to connect job broker: %w", err)
		}
		app.closers = append(app.closers, closeFn)
		app.queue = task.NewRedisQueue(client, app.config.Jobs.Queue, app.logger)
	default:
		return fmt.Errorf("unknown job processor %q", app.config.Jobs.Processor)
	}
	return nil
}

func (app *application) healthChecks() []health.Check {
	var checks []health.Check
	if app.db != nil {
		checks = append(checks, health.DatabaseCheck(app.db))
	}
	if app.config.Cache.Backend == config.CacheRedis {
		checks = append(checks, health.PingCheck("cache", app.cache))
	}
	if app.config.Jobs.Processor == config.JobsRedis {
		checks = append(checks, health.PingCheck("queue", app.queue))
	}
	if app.migrator != nil {
		checks = append(checks, health.MigrationsCheck(app.migrator))
	}
	return checks
}

// startRunner launches the job workers. It is a no-op when no queue is
// configured.
func (app *application) startRunner() {
	if app.queue == nil || app.runner != nil {
		return
	}

	rc := task.DefaultRunnerConfig()
	rc.WorkerCount = app.config.Jobs.WorkerCount
	rc.MaxAttempts = app.config.Jobs.MaxAttempts

	app.runner = task.NewRunner(app.queue, app.registry, app.failedJobs, rc, app.logger)
	app.runner.Start()
}

// migrate applies pending migrations when a database is configured.
func (app *application) migrate(ctx context.Context) error {
	if app.migrator == nil {
		return nil
	}
	n, err := app.migrator.Up(ctx)
	if err != nil {
		return err
	}
	app.logger.Info("migrations complete", slog.Int("applied", n))
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.queue != nil {
		if err := app.queue.Close(); err != nil {
			app.logger.Error("error closing job queue", slog.Any("error", err))
		}
	}
	if app.runner != nil {
		app.runner.Stop()
	}

	if app.emitter != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := app.emitter.Close(ctx); err != nil {
			app.logger.Warn("request events not drained", slog.Any("error", err))
		}
		cancel()
	}

	for i := len(app.closers) - 1; i >= 0; i-- {
		app.closers[i]()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.Any("error", err))
		}
	}

	app.logger.Info("application shutdown completed")
}
