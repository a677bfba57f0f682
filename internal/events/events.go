package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RequestEvent describes one completed request.
type RequestEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	RequestID string `json:"request_id"`
	TraceID   string `json:"trace_id"`
	Method    string `json:"method"`
	Route     string `json:"route"`
	Path      string `json:"path"`
	Status    int    `json:"status"`

	// Category is the error category for failed requests, empty on success.
	Category string `json:"category,omitempty"`

	Duration   time.Duration `json:"duration"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// NewRequestEvent stamps a new event with an ID and the current time.
func NewRequestEvent(method, route, path string, status int) *RequestEvent {
	return &RequestEvent{
		ID:         uuid.New(),
		Method:     method,
		Route:      route,
		Path:       path,
		Status:     status,
		OccurredAt: time.Now().UTC(),
	}
}

// Failed reports whether the request ended in an error envelope.
func (e *RequestEvent) Failed() bool {
	return e.Category != ""
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *RequestEvent) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *RequestEvent) error

// HandleEvent implements EventHandler.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *RequestEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// Emit must not block the caller on handler work.
type EventEmitter interface {
	Emit(ctx context.Context, event *RequestEvent)
}
