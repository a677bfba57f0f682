package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/skeleton-api/internal/api/shared"
	"github.com/phrazzld/skeleton-api/internal/domain"
)

// getPathUUID extracts a UUID from the URL path parameters.
// A missing parameter and a malformed one both surface as *shared.ParamError;
// the malformed case also matches domain.ErrInvalidID.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, shared.NewMissingParamError(paramName)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, shared.NewInvalidParamError(paramName, "must be a UUID",
			fmt.Errorf("%w: %w", domain.ErrInvalidID, err))
	}

	return id, nil
}

// decodeAndValidate reads the JSON body into v and validates it.
func decodeAndValidate(r *http.Request, v any) error {
	if err := shared.DecodeJSON(r, v); err != nil {
		return err
	}
	return shared.ValidateRequest(v)
}
