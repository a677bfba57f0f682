package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/skeleton-api/internal/domain"
)

// WidgetStore defines the interface for widget data persistence.
// Version: 1.0
type WidgetStore interface {
	// Create saves a new widget to the store.
	// Returns the domain validation error unchanged if the widget is invalid.
	Create(ctx context.Context, widget *domain.Widget) error

	// GetByID retrieves a widget by its unique ID.
	// Returns a *NotFoundError (ErrNotFound) if the widget does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Widget, error)

	// Count returns the total number of widgets.
	Count(ctx context.Context) (int, error)

	// List returns widgets ordered by creation time (oldest first), skipping
	// offset rows and returning at most limit rows.
	List(ctx context.Context, offset, limit int) ([]*domain.Widget, error)
}
