package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/skeleton-api/internal/api/shared"
	"github.com/phrazzld/skeleton-api/internal/domain"
	"github.com/phrazzld/skeleton-api/internal/platform/logger"
	"github.com/phrazzld/skeleton-api/internal/redact"
	"github.com/phrazzld/skeleton-api/internal/store"
)

// Category is the closed set of machine-readable error codes clients see.
type Category string

const (
	CategoryBadRequest          Category = "bad_request"
	CategoryNotFound            Category = "not_found"
	CategoryUnprocessableEntity Category = "unprocessable_entity"
	CategoryInternalServerError Category = "internal_server_error"
)

// GenericErrorMessage replaces internal error details in production.
const GenericErrorMessage = "An unexpected error occurred"

// maxStackFrames bounds the stack excerpt attached to server error logs.
const maxStackFrames = 10

// Status returns the HTTP status fixed to the category.
func (c Category) Status() int {
	switch c {
	case CategoryBadRequest:
		return http.StatusBadRequest
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryUnprocessableEntity:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// APIError is a classified failure ready to be rendered.
type APIError struct {
	Category Category
	Status   int
	Message  string
	// Detail is logged, never rendered.
	Detail any
	Err    error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Unwrap returns the classified failure.
func (e *APIError) Unwrap() error {
	return e.Err
}

func newAPIError(c Category, message string, err error) *APIError {
	return &APIError{Category: c, Status: c.Status(), Message: message, Err: err}
}

// Rule maps one kind of failure to an APIError.
type Rule struct {
	Name     string
	Match    func(err error) bool
	Classify func(err error) *APIError
}

// StackTracer is implemented by failures that captured their own stack,
// such as recovered panics.
type StackTracer interface {
	StackTrace() []string
}

// Classifier turns arbitrary failures into APIErrors. Rules are evaluated in
// order and the first match wins; anything unmatched is an internal error.
type Classifier struct {
	rules      []Rule
	production bool
	logger     *slog.Logger
}

// NewClassifier builds a classifier with the default rules. Extra rules are
// evaluated before the defaults.
func NewClassifier(production bool, logger *slog.Logger, extra ...Rule) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	rules := make([]Rule, 0, len(extra)+4)
	rules = append(rules, extra...)
	rules = append(rules, DefaultRules()...)
	return &Classifier{rules: rules, production: production, logger: logger}
}

// DefaultRules returns the built-in rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:  "bad_request",
			Match: isBadRequest,
			Classify: func(err error) *APIError {
				return newAPIError(CategoryBadRequest, badRequestMessage(err), err)
			},
		},
		{
			Name:  "not_found",
			Match: func(err error) bool { return errors.Is(err, store.ErrNotFound) },
			Classify: func(err error) *APIError {
				return newAPIError(CategoryNotFound, notFoundMessage(err), err)
			},
		},
		{
			Name:  "unprocessable_entity",
			Match: isValidationFailure,
			Classify: func(err error) *APIError {
				msgs := validationMessages(err)
				apiErr := newAPIError(CategoryUnprocessableEntity, strings.Join(msgs, ", "), err)
				apiErr.Detail = msgs
				return apiErr
			},
		},
		{
			Name:  "rejected_write",
			Match: isRejectedWrite,
			Classify: func(err error) *APIError {
				return newAPIError(CategoryUnprocessableEntity, rejectedWriteMessage(err), err)
			},
		},
	}
}

// Classify maps err to an APIError and logs the outcome. A nil err is
// treated as an internal error.
func (c *Classifier) Classify(ctx context.Context, err error) *APIError {
	apiErr := c.classify(err)
	c.log(ctx, err, apiErr)
	return apiErr
}

func (c *Classifier) classify(err error) *APIError {
	if err == nil {
		return newAPIError(CategoryInternalServerError, GenericErrorMessage, nil)
	}

	var already *APIError
	if errors.As(err, &already) {
		return already
	}

	for _, rule := range c.rules {
		if rule.Match(err) {
			return rule.Classify(err)
		}
	}

	message := err.Error()
	if c.production {
		message = GenericErrorMessage
	}
	return newAPIError(CategoryInternalServerError, message, err)
}

func (c *Classifier) log(ctx context.Context, err error, apiErr *APIError) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	attrs := []slog.Attr{
		slog.String("category", string(apiErr.Category)),
		slog.Int("status", apiErr.Status),
		slog.String("trace_id", shared.GetTraceID(ctx)),
		slog.String("request_id", logger.RequestID(ctx)),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	if apiErr.Status >= http.StatusInternalServerError {
		attrs = append(attrs, slog.Any("stack", stackExcerpt(err)))
		log.LogAttrs(ctx, slog.LevelError, "request failed", attrs...)
		return
	}
	log.LogAttrs(ctx, slog.LevelDebug, "request rejected", attrs...)
}

// RespondWithAPIError renders a classified failure as an error envelope.
func RespondWithAPIError(w http.ResponseWriter, r *http.Request, apiErr *APIError) {
	shared.RespondWithError(w, r, apiErr.Status, string(apiErr.Category), apiErr.Message)
}

// isBadRequest matches request-level failures only. Body decode errors
// always arrive wrapped in *shared.ParamError, so a bare EOF or codec error
// from a store or cache connection stays an internal error.
func isBadRequest(err error) bool {
	var paramErr *shared.ParamError
	return errors.As(err, &paramErr) || errors.Is(err, domain.ErrInvalidID)
}

// badRequestMessage prefers the parameter-level message over the codec's.
func badRequestMessage(err error) string {
	var paramErr *shared.ParamError
	if errors.As(err, &paramErr) {
		return paramErr.Error()
	}
	return err.Error()
}

// isRejectedWrite matches writes the store refused on a constraint.
func isRejectedWrite(err error) bool {
	return errors.Is(err, store.ErrDuplicate) || errors.Is(err, store.ErrInvalidEntity)
}

// rejectedWriteMessage names the entity without echoing driver text, which
// carries constraint and column names.
func rejectedWriteMessage(err error) string {
	entity := "record"
	var se *store.StoreError
	if errors.As(err, &se) && se.Entity != "" {
		entity = se.Entity
	}
	if errors.Is(err, store.ErrDuplicate) {
		return domain.FieldError{Field: entity, Message: "already exists"}.FullMessage()
	}
	return domain.FieldError{Field: entity, Message: "violates a storage constraint"}.FullMessage()
}

// notFoundMessage strips wrapping added above the store layer.
func notFoundMessage(err error) string {
	var nf *store.NotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	return err.Error()
}

func isValidationFailure(err error) bool {
	var verr *domain.ValidationError
	var verrs validator.ValidationErrors
	return errors.As(err, &verr) || errors.As(err, &verrs)
}

func validationMessages(err error) []string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) && verr.HasErrors() {
		return verr.FullMessages()
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fieldErr := domain.FieldError{Field: fe.Field(), Message: tagMessage(fe)}
			msgs = append(msgs, fieldErr.FullMessage())
		}
		return msgs
	}

	return []string{err.Error()}
}

// tagMessage maps validation tags to user-friendly error messages.
func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "can't be blank"
	case "max":
		return fmt.Sprintf("is too long (maximum is %s characters)", fe.Param())
	case "min":
		return fmt.Sprintf("is too short (minimum is %s characters)", fe.Param())
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "is not included in the list"
	default:
		return "is invalid"
	}
}

// stackExcerpt returns at most maxStackFrames frames, preferring a stack the
// failure captured itself.
func stackExcerpt(err error) []string {
	var st StackTracer
	if errors.As(err, &st) {
		frames := st.StackTrace()
		if len(frames) > maxStackFrames {
			frames = frames[:maxStackFrames]
		}
		return frames
	}
	return callerFrames(4)
}

func callerFrames(skip int) []string {
	pcs := make([]uintptr, maxStackFrames)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	out := make([]string, 0, n)
	for {
		frame, more := frames.Next()
		out = append(out, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		if !more || len(out) == maxStackFrames {
			break
		}
	}
	return out
}
