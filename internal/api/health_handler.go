package api

import (
	"net/http"

	"github.com/phrazzld/skeleton-api/internal/health"
)

// HealthHandler serves the liveness and readiness endpoints. Their bodies
// are fixed shapes and bypass the success envelope.
type HealthHandler struct {
	reporter *health.Reporter
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(reporter *health.Reporter) *HealthHandler {
	return &HealthHandler{reporter: reporter}
}

// Shallow handles GET /health.
func (h *HealthHandler) Shallow(*http.Request) (any, error) {
	return RawResponse{Status: http.StatusOK, Body: h.reporter.Shallow()}, nil
}

// Standard handles GET /api/v1/health.
func (h *HealthHandler) Standard(r *http.Request) (any, error) {
	return h.deep(r, health.ModeStandard), nil
}

// Full handles GET /api/v1/health/full.
func (h *HealthHandler) Full(r *http.Request) (any, error) {
	return h.deep(r, health.ModeFull), nil
}

func (h *HealthHandler) deep(r *http.Request, mode health.Mode) RawResponse {
	report := h.reporter.Deep(r.Context(), mode)
	return RawResponse{Status: report.HTTPStatus(), Body: report}
}
