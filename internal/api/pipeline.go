package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/skeleton-api/internal/api/shared"
	"github.com/phrazzld/skeleton-api/internal/events"
	"github.com/phrazzld/skeleton-api/internal/pagination"
	"github.com/phrazzld/skeleton-api/internal/platform/logger"
)

// Handler produces a result or a failure for one request. It never writes
// to the response itself.
type Handler func(r *http.Request) (any, error)

// created marks a result that should be answered with 201.
type created struct {
	value any
}

// Created wraps v so the pipeline answers 201 with v as data.
func Created(v any) any {
	return created{value: v}
}

type noContent struct{}

// NoContent is returned by handlers that answer 204 with an empty body.
var NoContent any = noContent{}

// RawResponse bypasses the success envelope. It is used by endpoints whose
// body shape is fixed independently of the API envelope, such as health checks.
type RawResponse struct {
	Status int
	Body   any
}

// Pipeline runs handlers and turns their results and failures into
// enveloped JSON responses.
type Pipeline struct {
	classifier *Classifier
	emitter    events.EventEmitter
}

// NewPipeline creates a Pipeline. emitter may be nil.
func NewPipeline(classifier *Classifier, emitter events.EventEmitter) *Pipeline {
	return &Pipeline{classifier: classifier, emitter: emitter}
}

// Wrap adapts a Handler to http.HandlerFunc. The handler is invoked exactly
// once; a panic is recovered and answered as an internal error.
func (p *Pipeline) Wrap(h Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		event := events.NewRequestEvent(r.Method, "", r.URL.Path, 0)

		defer func() {
			event.Duration = time.Since(start)
			event.Route = routePattern(r)
			event.TraceID = shared.GetTraceID(r.Context())
			event.RequestID = logger.RequestID(r.Context())
			if p.emitter != nil {
				p.emitter.Emit(r.Context(), event)
			}
		}()

		result, err := p.invoke(h, r)
		if err != nil {
			apiErr := p.classifier.Classify(r.Context(), err)
			event.Status = apiErr.Status
			event.Category = string(apiErr.Category)
			RespondWithAPIError(w, r, apiErr)
			return
		}

		event.Status = p.render(w, r, result)
	}
}

func (p *Pipeline) invoke(h Handler, r *http.Request) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			err = &panicError{value: rec, stack: callerFrames(3)}
		}
	}()
	return h(r)
}

func (p *Pipeline) render(w http.ResponseWriter, r *http.Request, result any) int {
	switch v := result.(type) {
	case pagination.Pager:
		shared.RespondWithPage(w, r, v)
		return http.StatusOK
	case created:
		shared.RespondWithData(w, r, http.StatusCreated, v.value)
		return http.StatusCreated
	case noContent:
		w.Header().Del("Content-Type")
		w.WriteHeader(http.StatusNoContent)
		return http.StatusNoContent
	case RawResponse:
		shared.RespondWithJSON(w, r, v.Status, v.Body)
		return v.Status
	case *RawResponse:
		shared.RespondWithJSON(w, r, v.Status, v.Body)
		return v.Status
	default:
		shared.RespondWithData(w, r, http.StatusOK, v)
		return http.StatusOK
	}
}

// NotFound answers requests that matched no route.
func (p *Pipeline) NotFound() http.HandlerFunc {
	return p.Wrap(func(r *http.Request) (any, error) {
		return nil, newAPIError(CategoryNotFound,
			fmt.Sprintf("no route matches [%s] %q", r.Method, r.URL.Path), nil)
	})
}

// MethodNotAllowed answers requests whose path exists under another method.
// The closed category set has no 405, so this is a bad request.
func (p *Pipeline) MethodNotAllowed() http.HandlerFunc {
	return p.Wrap(func(r *http.Request) (any, error) {
		return nil, newAPIError(CategoryBadRequest,
			fmt.Sprintf("method %s is not allowed for %q", r.Method, r.URL.Path), nil)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

// panicError carries a recovered panic and the stack where it happened.
type panicError struct {
	value any
	stack []string
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// StackTrace implements StackTracer.
func (e *panicError) StackTrace() []string {
	return e.stack
}
