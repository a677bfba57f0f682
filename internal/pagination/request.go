package pagination

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Defaults bound the page size a client may ask for.
type Defaults struct {
	PerPage    int
	MaxPerPage int
}

// DefaultSettings returns the stock limits: 20 items per page, at most 100.
func DefaultSettings() Defaults {
	return Defaults{PerPage: 20, MaxPerPage: 100}
}

func (d Defaults) normalized() Defaults {
	if d.MaxPerPage < 1 {
		d.MaxPerPage = DefaultSettings().MaxPerPage
	}
	if d.PerPage < 1 {
		d.PerPage = DefaultSettings().PerPage
	}
	if d.PerPage > d.MaxPerPage {
		d.PerPage = d.MaxPerPage
	}
	return d
}

// Request is a normalized page request. Page is 1-based.
type Request struct {
	Page    int
	PerPage int

	// URL, when set, is used to build navigation links.
	URL *url.URL
}

// ParseRequest reads page and per_page (or perPage) from query values.
// Missing, non-numeric or non-positive pages become 1; missing or
// non-numeric sizes fall back to the default; sizes are clamped to
// [1, MaxPerPage].
func ParseRequest(q url.Values, d Defaults) Request {
	d = d.normalized()

	page, ok := atoi(q.Get("page"))
	if !ok || page < 1 {
		page = 1
	}

	raw := q.Get("per_page")
	if raw == "" {
		raw = q.Get("perPage")
	}
	perPage, ok := atoi(raw)
	switch {
	case !ok:
		perPage = d.PerPage
	case perPage < 1:
		perPage = 1
	case perPage > d.MaxPerPage:
		perPage = d.MaxPerPage
	}

	return Request{Page: page, PerPage: perPage}
}

// FromHTTP parses the request's query string and remembers its URL.
func FromHTTP(r *http.Request, d Defaults) Request {
	req := ParseRequest(r.URL.Query(), d)
	u := *r.URL
	req.URL = &u
	return req
}

func atoi(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
