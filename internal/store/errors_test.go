package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "sentinel", err: ErrNotFound, expected: true},
		{name: "wrapped sentinel", err: fmt.Errorf("lookup: %w", ErrNotFound), expected: true},
		{name: "not found error", err: NewNotFoundError("widget", "42"), expected: true},
		{
			name:     "store error wrapping not found",
			err:      NewStoreError("widget", "get", "lookup failed", NewNotFoundError("widget", "42")),
			expected: true,
		},
		{name: "duplicate", err: ErrDuplicate, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestNotFoundErrorMessage(t *testing.T) {
	assert.Equal(t, "couldn't find widget with id=42", NewNotFoundError("widget", "42").Error())
	assert.Equal(t, "widget not found", NewNotFoundError("widget", "").Error())

	var nf *NotFoundError
	wrapped := fmt.Errorf("service: %w", NewNotFoundError("widget", "7"))
	assert.True(t, errors.As(wrapped, &nf))
	assert.Equal(t, "7", nf.ID)
}

func TestStoreError(t *testing.T) {
	t.Run("with wrapped error", func(t *testing.T) {
		err := NewStoreError("widget", "create", "insert failed", ErrDuplicate)
		assert.Equal(t, "create operation on widget failed: insert failed: entity already exists", err.Error())
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("without wrapped error", func(t *testing.T) {
		err := NewStoreError("widget", "list", "bad limit", nil)
		assert.Equal(t, "list operation on widget failed: bad limit", err.Error())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("errors.As", func(t *testing.T) {
		var se *StoreError
		err := fmt.Errorf("outer: %w", NewStoreError("widget", "count", "query failed", errors.New("boom")))
		assert.True(t, errors.As(err, &se))
		assert.Equal(t, "count", se.Operation)
	})
}
