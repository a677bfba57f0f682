package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/skeleton-api/internal/api"
	apiMiddleware "github.com/phrazzld/skeleton-api/internal/api/middleware"
	"github.com/phrazzld/skeleton-api/internal/pagination"
	"github.com/phrazzld/skeleton-api/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, app.config.Telemetry.ServiceName)
	})
	r.Use(apiMiddleware.Trace(app.logger))
	r.Use(apiMiddleware.RequestLogger)
	r.Use(apiMiddleware.Metrics)
	r.Use(apiMiddleware.ForceJSON)

	p := app.pipeline
	r.NotFound(p.NotFound())
	r.MethodNotAllowed(p.MethodNotAllowed())

	healthHandler := api.NewHealthHandler(app.reporter)
	widgetHandler := api.NewWidgetHandler(app.widgetService, pagination.Defaults{
		PerPage:    app.config.Pagination.DefaultPerPage,
		MaxPerPage: app.config.Pagination.MaxPerPage,
	}, app.logger)

	widgetRoutes := func(r chi.Router) {
		r.Get("/", p.Wrap(widgetHandler.List))
		r.Post("/", p.Wrap(widgetHandler.Create))
		r.Get("/{id}", p.Wrap(widgetHandler.Get))
	}

	if app.config.Telemetry.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", telemetry.MetricsHandler())
	}

	r.Get("/health", p.Wrap(healthHandler.Shallow))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", p.Wrap(healthHandler.Standard))
		r.Get("/health/full", p.Wrap(healthHandler.Full))
		r.Route("/widgets", widgetRoutes)
	})
	r.Route("/widgets", widgetRoutes)

	return r
}
