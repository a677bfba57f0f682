package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/skeleton-api/internal/domain"
)

// CreateWidgetRequest defines the payload for the widget creation endpoint.
type CreateWidgetRequest struct {
	Name        string `json:"name"        validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
	Quantity    int    `json:"quantity"    validate:"gte=0"`
}

// WidgetResponse is the client view of a widget.
type WidgetResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// widgetToResponse converts a domain.Widget to a WidgetResponse.
func widgetToResponse(w *domain.Widget) WidgetResponse {
	return WidgetResponse{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Quantity:    w.Quantity,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}
