package events

import (
	"context"
	"log/slog"

	"github.com/phrazzld/skeleton-api/internal/telemetry"
)

// MetricsHandler counts failed requests by error category.
type MetricsHandler struct{}

// HandleEvent implements EventHandler.
func (MetricsHandler) HandleEvent(_ context.Context, event *RequestEvent) error {
	if event.Failed() {
		telemetry.ErrorsTotal.WithLabelValues(event.Category).Inc()
	}
	return nil
}

// LogHandler writes failed requests to the log at debug level, for
// correlating error envelopes with trace IDs after the fact.
type LogHandler struct {
	Logger *slog.Logger
}

// HandleEvent implements EventHandler.
func (h LogHandler) HandleEvent(ctx context.Context, event *RequestEvent) error {
	if !event.Failed() {
		return nil
	}
	h.Logger.LogAttrs(ctx, slog.LevelDebug, "request event",
		slog.String("event_id", event.ID.String()),
		slog.String("request_id", event.RequestID),
		slog.String("trace_id", event.TraceID),
		slog.String("route", event.Route),
		slog.Int("status", event.Status),
		slog.String("category", event.Category),
		slog.Duration("duration", event.Duration),
	)
	return nil
}
