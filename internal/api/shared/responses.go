package shared

import (
	"net/http"
	"reflect"

	"github.com/phrazzld/skeleton-api/internal/jsonutil"
	"github.com/phrazzld/skeleton-api/internal/pagination"
	"github.com/phrazzld/skeleton-api/internal/platform/logger"
)

// ContentTypeJSON is the only media type this API produces.
const ContentTypeJSON = "application/json"

// SuccessEnvelope wraps every successful payload. It never carries an error key.
type SuccessEnvelope struct {
	Data any              `json:"data"`
	Meta *pagination.Meta `json:"meta,omitempty"`
}

// ErrorEnvelope wraps every failure. It never carries a data key.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	if err := jsonutil.Encode(w, data); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithData writes data inside a success envelope.
func RespondWithData(w http.ResponseWriter, r *http.Request, status int, data any) {
	RespondWithJSON(w, r, status, SuccessEnvelope{Data: emptyIfNilSlice(data)})
}

// RespondWithPage writes a page of items with its metadata and merges any
// navigation headers the pagination strategy produced.
func RespondWithPage(w http.ResponseWriter, r *http.Request, page pagination.Pager) {
	for name, values := range page.PageHeaders() {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	meta := page.PageMeta()
	RespondWithJSON(w, r, http.StatusOK, SuccessEnvelope{
		Data: emptyIfNilSlice(page.PageItems()),
		Meta: &meta,
	})
}

// RespondWithError writes an error envelope. code is the machine-readable
// error category and message the human-readable explanation.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	logger.FromContext(r.Context()).Debug("sending error response",
		"status_code", status,
		"error", code,
		"trace_id", GetTraceID(r.Context()),
		"path", r.URL.Path,
		"method", r.Method)

	RespondWithJSON(w, r, status, ErrorEnvelope{Error: code, Message: message})
}

// emptyIfNilSlice turns a nil slice into an empty one of the same type so it
// encodes as [] rather than null.
func emptyIfNilSlice(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return reflect.MakeSlice(rv.Type(), 0, 0).Interface()
	}
	return v
}
