package events

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// InMemoryEventEmitter stores registered handlers in memory and dispatches
// events to them synchronously.
type InMemoryEventEmitter struct {
	handlers []EventHandler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewInMemoryEventEmitter creates a new instance of InMemoryEventEmitter.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	return &InMemoryEventEmitter{
		handlers: make([]EventHandler, 0),
		logger:   logger.With("component", "in_memory_event_emitter"),
	}
}

// RegisterHandler adds a new event handler to receive events.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
	e.logger.Debug("registered new event handler", "handler_count", len(e.handlers))
}

// EmitEvent publishes the given event to all registered handlers.
// If any handler returns an error, the event will still be sent to all other handlers,
// and the first error encountered will be returned.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *RequestEvent) error {
	e.mu.RLock()
	handlers := make([]EventHandler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			e.logger.Error("handler failed to process event",
				"error", err,
				"handler_index", i,
				"event_id", event.ID,
				"request_id", event.RequestID)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// Emit implements EventEmitter by dispatching synchronously and logging
// handler failures.
func (e *InMemoryEventEmitter) Emit(ctx context.Context, event *RequestEvent) {
	_ = e.EmitEvent(ctx, event)
}

// AsyncEmitter queues events for a background goroutine. When the queue is
// full the event is dropped and counted; the caller never waits.
type AsyncEmitter struct {
	inner   *InMemoryEventEmitter
	queue   chan *RequestEvent
	logger  *slog.Logger
	dropped atomic.Int64

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewAsyncEmitter starts the dispatch goroutine. Call Close to drain and stop it.
func NewAsyncEmitter(inner *InMemoryEventEmitter, bufferSize int, logger *slog.Logger) *AsyncEmitter {
	if bufferSize < 1 {
		bufferSize = 1
	}
	a := &AsyncEmitter{
		inner:  inner,
		queue:  make(chan *RequestEvent, bufferSize),
		logger: logger.With("component", "async_event_emitter"),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *AsyncEmitter) run() {
	defer close(a.done)
	for event := range a.queue {
		// Handlers get a fresh context: the request that produced the event
		// is usually finished by now.
		_ = a.inner.EmitEvent(context.Background(), event)
	}
}

// Emit implements EventEmitter.
func (a *AsyncEmitter) Emit(_ context.Context, event *RequestEvent) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		a.dropped.Add(1)
		return
	}

	select {
	case a.queue <- event:
	default:
		if n := a.dropped.Add(1); n == 1 || n%1000 == 0 {
			a.logger.Warn("event queue full, dropping events", "dropped_total", n)
		}
	}
}

// Dropped returns the number of events discarded so far.
func (a *AsyncEmitter) Dropped() int64 {
	return a.dropped.Load()
}

// Close stops accepting events and waits until queued ones are dispatched
// or ctx is done.
func (a *AsyncEmitter) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
