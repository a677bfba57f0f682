package shared

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widgetPayload struct {
	Name     string `json:"name" validate:"required,max=120"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantErr   bool
		wantParam string
		wantMsg   string
		expected  widgetPayload
	}{
		{
			name:     "valid JSON",
			body:     `{"name":"bolt","quantity":4}`,
			expected: widgetPayload{Name: "bolt", Quantity: 4},
		},
		{
			name:      "empty body",
			body:      "",
			wantErr:   true,
			wantParam: "body",
			wantMsg:   "param is missing or the value is empty: body",
		},
		{
			name:      "whitespace body",
			body:      "  \n ",
			wantErr:   true,
			wantParam: "body",
			wantMsg:   "param is missing or the value is empty: body",
		},
		{
			name:      "malformed JSON",
			body:      `{"name":`,
			wantErr:   true,
			wantParam: "body",
			wantMsg:   "invalid body: malformed JSON",
		},
		{
			name:      "wrong type",
			body:      `{"name":"bolt","quantity":"four"}`,
			wantErr:   true,
			wantParam: "body",
			wantMsg:   "invalid body: malformed JSON",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/widgets", strings.NewReader(tc.body))

			var got widgetPayload
			err := DecodeJSON(req, &got)

			if !tc.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, got)
				return
			}

			var perr *ParamError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tc.wantParam, perr.Param)
			assert.Equal(t, tc.wantMsg, err.Error())
		})
	}
}

func TestDecodeJSONTooLarge(t *testing.T) {
	body := `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/widgets", strings.NewReader(body))

	var got widgetPayload
	err := DecodeJSON(req, &got)

	var perr *ParamError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "exceeds maximum size", perr.Reason)
}

type errorReader struct{}

func (errorReader) Read(p []byte) (n int, err error) {
	return 0, errors.New("read error")
}

func TestDecodeJSONWithReadError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/widgets", io.NopCloser(errorReader{}))

	var got widgetPayload
	err := DecodeJSON(req, &got)

	var perr *ParamError
	require.ErrorAs(t, err, &perr)
	assert.EqualError(t, errors.Unwrap(err), "read error")
}

type selfValidating struct {
	ok bool
}

func (v *selfValidating) Validate() error {
	if !v.ok {
		return errors.New("custom validation failed")
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	t.Run("struct tags pass", func(t *testing.T) {
		assert.NoError(t, ValidateRequest(&widgetPayload{Name: "bolt"}))
	})

	t.Run("struct tags fail with json field names", func(t *testing.T) {
		err := ValidateRequest(&widgetPayload{Quantity: -1})

		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		require.Len(t, verrs, 2)
		assert.Equal(t, "name", verrs[0].Field())
		assert.Equal(t, "quantity", verrs[1].Field())
	})

	t.Run("Validate method takes precedence", func(t *testing.T) {
		assert.EqualError(t, ValidateRequest(&selfValidating{}), "custom validation failed")
		assert.NoError(t, ValidateRequest(&selfValidating{ok: true}))
	})

	t.Run("non struct", func(t *testing.T) {
		assert.Error(t, ValidateRequest(42))
	})
}

func TestParamErrorMessages(t *testing.T) {
	assert.Equal(t, "param is missing or the value is empty: id", NewMissingParamError("id").Error())
	cause := errors.New("bad uuid")
	err := NewInvalidParamError("id", "must be a UUID", cause)
	assert.Equal(t, "invalid id: must be a UUID", err.Error())
	assert.ErrorIs(t, err, cause)
}
