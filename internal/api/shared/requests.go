package shared

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/skeleton-api/internal/jsonutil"
)

// MaxBodyBytes caps the size of a decoded request body.
const MaxBodyBytes = 1 << 20

// Global validator instance for reuse. Field names in validation errors use
// the json tag so messages name what the client actually sent.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ParamError reports a missing or malformed request parameter or body.
type ParamError struct {
	Param  string
	Reason string
	Err    error
}

// NewMissingParamError reports that a required parameter was absent or empty.
func NewMissingParamError(param string) *ParamError {
	return &ParamError{Param: param}
}

// NewInvalidParamError reports that a parameter could not be parsed.
func NewInvalidParamError(param, reason string, err error) *ParamError {
	return &ParamError{Param: param, Reason: reason, Err: err}
}

// Error implements the error interface.
func (e *ParamError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("param is missing or the value is empty: %s", e.Param)
	}
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

// Unwrap returns the underlying parse failure, if any.
func (e *ParamError) Unwrap() error {
	return e.Err
}

// DecodeJSON decodes the request body into v. An empty body is a missing
// parameter and undecodable input is a malformed one; both surface as
// *ParamError.
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return NewMissingParamError("body")
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return NewInvalidParamError("body", "could not be read", err)
	}
	if len(data) > MaxBodyBytes {
		return NewInvalidParamError("body", "exceeds maximum size", nil)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return NewMissingParamError("body")
	}

	if err := jsonutil.Unmarshal(data, v); err != nil {
		return NewInvalidParamError("body", "malformed JSON", err)
	}
	return nil
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v interface{}) error {
	// Check if the object implements the Validate interface
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}

	// Otherwise, use the struct validator
	err := validate.Struct(v)
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("cannot validate %T: %w", v, err)
	}
	return err
}
