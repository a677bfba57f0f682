package pagination

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	d := DefaultSettings()

	tests := []struct {
		name        string
		query       string
		wantPage    int
		wantPerPage int
	}{
		{"defaults", "", 1, 20},
		{"explicit", "page=3&per_page=10", 3, 10},
		{"camel case size", "page=2&perPage=5", 2, 5},
		{"snake case wins", "per_page=7&perPage=9", 1, 7},
		{"non numeric page", "page=abc", 1, 20},
		{"zero page", "page=0", 1, 20},
		{"negative page", "page=-4", 1, 20},
		{"non numeric size", "per_page=lots", 1, 20},
		{"size above max", "per_page=500", 1, 100},
		{"size below one", "per_page=0", 1, 1},
		{"whitespace tolerated", "page=%202%20", 2, 20},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := url.ParseQuery(tc.query)
			require.NoError(t, err)

			req := ParseRequest(q, d)
			assert.Equal(t, tc.wantPage, req.Page)
			assert.Equal(t, tc.wantPerPage, req.PerPage)
		})
	}
}

func TestParseRequestNormalizesDefaults(t *testing.T) {
	req := ParseRequest(url.Values{}, Defaults{PerPage: 50, MaxPerPage: 10})
	assert.Equal(t, 10, req.PerPage, "default size is capped by the maximum")

	req = ParseRequest(url.Values{}, Defaults{})
	assert.Equal(t, 20, req.PerPage)
}

func TestFromHTTPKeepsURL(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/widgets?page=2&per_page=5", nil)
	req := FromHTTP(r, DefaultSettings())

	require.NotNil(t, req.URL)
	assert.Equal(t, "/api/v1/widgets", req.URL.Path)
	assert.Equal(t, 2, req.Page)
	assert.Equal(t, 5, req.PerPage)
}
