package middleware

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/skeleton-api/internal/api/shared"
	"github.com/phrazzld/skeleton-api/internal/platform/logger"
)

// HeaderTraceID echoes the request's trace ID back to the client.
const HeaderTraceID = "X-Trace-ID"

// Trace adds a trace ID to the request context and stores a request-scoped
// logger carrying trace_id, span_id and request_id. It must run after chi's
// RequestID middleware and after any OpenTelemetry handler so both IDs are
// already present.
func Trace(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			traceID := shared.GetTraceID(ctx)
			requestID := chimiddleware.GetReqID(ctx)

			log := logger.FromContextOrDefault(ctx, base).With(
				slog.String("trace_id", traceID),
				slog.String("request_id", requestID),
			)
			if spanID := shared.GetSpanID(ctx); spanID != "" {
				log = log.With(slog.String("span_id", spanID))
			}

			ctx = logger.WithRequestID(ctx, requestID)
			ctx = logger.WithLogger(ctx, log)

			w.Header().Set(HeaderTraceID, traceID)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
