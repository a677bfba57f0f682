// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// ValidationError always unwraps to it.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")
)

// FieldError describes one failed rule on one attribute.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FullMessage renders the error the way clients read it, e.g. "Name can't be blank".
func (f FieldError) FullMessage() string {
	if f.Field == "" {
		return f.Message
	}
	return humanizeField(f.Field) + " " + f.Message
}

// ValidationError collects every field-level failure found while validating
// an entity. It is returned whole rather than stopping at the first failure.
type ValidationError struct {
	Entity string
	Fields []FieldError
}

// NewValidationError creates a ValidationError with a single field failure.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// Add appends a field failure.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any field failure was recorded.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// FullMessages returns the human-readable message of every field failure in order.
func (e *ValidationError) FullMessages() []string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.FullMessage())
	}
	return msgs
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	joined := strings.Join(e.FullMessages(), ", ")
	if e.Entity == "" {
		return fmt.Sprintf("%s: %s", ErrValidation.Error(), joined)
	}
	return fmt.Sprintf("%s %s: %s", e.Entity, ErrValidation.Error(), joined)
}

// Unwrap returns ErrValidation so callers can use errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// OrNil returns nil when no failures were recorded, so callers can write
// `return verr.OrNil()` without tripping over typed-nil interfaces.
func (e *ValidationError) OrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func humanizeField(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
