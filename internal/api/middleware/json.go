package middleware

import (
	"net/http"

	"github.com/phrazzld/skeleton-api/internal/api/shared"
)

// ForceJSON makes every route answer in JSON regardless of what the client
// asked for: the Accept header is rewritten and the response Content-Type is
// preset before the handler runs.
func ForceJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Set("Accept", shared.ContentTypeJSON)
		w.Header().Set("Content-Type", shared.ContentTypeJSON)
		next.ServeHTTP(w, r)
	})
}
