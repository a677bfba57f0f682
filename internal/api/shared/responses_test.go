package shared

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/skeleton-api/internal/pagination"
	"github.com/phrazzld/skeleton-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		data         interface{}
		expectedBody string
	}{
		{
			name:         "object",
			status:       http.StatusOK,
			data:         map[string]interface{}{"status": "ok"},
			expectedBody: `{"status":"ok"}`,
		},
		{
			name:         "nil response",
			status:       http.StatusOK,
			data:         nil,
			expectedBody: `null`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			RespondWithJSON(w, req, tc.status, tc.data)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.expectedBody, w.Body.String())
		})
	}
}

func TestRespondWithData(t *testing.T) {
	tests := []struct {
		name         string
		data         any
		expectedBody string
	}{
		{"object", map[string]int{"id": 1}, `{"data":{"id":1}}`},
		{"list", []string{"a", "b"}, `{"data":["a","b"]}`},
		{"nil slice", []string(nil), `{"data":[]}`},
		{"nil", nil, `{"data":null}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			RespondWithData(w, req, http.StatusOK, tc.data)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tc.expectedBody, w.Body.String())

			var raw map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
			assert.NotContains(t, raw, "error")
			assert.NotContains(t, raw, "meta")
		})
	}
}

func TestRespondWithPage(t *testing.T) {
	page := pagination.Page[string]{
		Items: nil,
		Meta:  pagination.Meta{CurrentPage: 3, TotalPages: 3, TotalCount: 25, PerPage: 10},
		Headers: http.Header{
			pagination.HeaderTotalCount: []string{"25"},
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/widgets?page=9", nil)
	w := httptest.NewRecorder()

	RespondWithPage(w, req, page)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "25", w.Header().Get(pagination.HeaderTotalCount))
	assert.JSONEq(t,
		`{"data":[],"meta":{"current_page":3,"total_pages":3,"total_count":25,"per_page":10}}`,
		w.Body.String())
}

func TestRespondWithError(t *testing.T) {
	log, buf := logger.GetTestLogger(t)
	ctx := logger.WithLogger(SetTraceID(context.Background()), log)
	req := httptest.NewRequest(http.MethodGet, "/widgets/x", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusNotFound, "not_found", "widget not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"not_found","message":"widget not found"}`, w.Body.String())

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.NotContains(t, raw, "data")

	logger.AssertLogField(t, buf, "trace_id", GetTraceID(ctx))
	logger.AssertLogField(t, buf, "level", "DEBUG")
}
