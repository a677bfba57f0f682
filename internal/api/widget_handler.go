package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/skeleton-api/internal/domain"
	"github.com/phrazzld/skeleton-api/internal/pagination"
	"github.com/phrazzld/skeleton-api/internal/platform/logger"
	"github.com/phrazzld/skeleton-api/internal/service"
)

// WidgetHandler serves the widget endpoints.
type WidgetHandler struct {
	service service.WidgetService
	paging  pagination.Defaults
	logger  *slog.Logger
}

// NewWidgetHandler creates a new WidgetHandler.
func NewWidgetHandler(svc service.WidgetService, paging pagination.Defaults, logger *slog.Logger) *WidgetHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WidgetHandler{
		service: svc,
		paging:  paging,
		logger:  logger.With(slog.String("component", "widget_handler")),
	}
}

// List handles GET /widgets.
func (h *WidgetHandler) List(r *http.Request) (any, error) {
	req := pagination.FromHTTP(r, h.paging)

	page, err := h.service.ListWidgets(r.Context(), req)
	if err != nil {
		return nil, err
	}

	return pagination.Page[WidgetResponse]{
		Items:   mapWidgets(page.Items),
		Meta:    page.Meta,
		Headers: page.Headers,
	}, nil
}

// Get handles GET /widgets/{id}.
func (h *WidgetHandler) Get(r *http.Request) (any, error) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		return nil, err
	}

	w, err := h.service.GetWidget(r.Context(), id)
	if err != nil {
		return nil, err
	}
	return widgetToResponse(w), nil
}

// Create handles POST /widgets.
func (h *WidgetHandler) Create(r *http.Request) (any, error) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateWidgetRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return nil, err
	}

	w, err := h.service.CreateWidget(r.Context(), req.Name, req.Description, req.Quantity)
	if err != nil {
		return nil, err
	}

	log.Info("widget created", slog.String("widget_id", w.ID.String()))
	return Created(widgetToResponse(w)), nil
}

func mapWidgets(widgets []*domain.Widget) []WidgetResponse {
	out := make([]WidgetResponse, 0, len(widgets))
	for _, w := range widgets {
		out = append(out, widgetToResponse(w))
	}
	return out
}
