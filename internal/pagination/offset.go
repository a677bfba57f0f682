package pagination

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Navigation header names emitted by OffsetStrategy.
const (
	HeaderCurrentPage = "Current-Page"
	HeaderPageItems   = "Page-Items"
	HeaderTotalPages  = "Total-Pages"
	HeaderTotalCount  = "Total-Count"
	HeaderLink        = "Link"
)

// OffsetStrategy delegates the arithmetic to a pager object, reads Meta off
// it and merges its navigation headers into the response.
type OffsetStrategy struct{}

// Name implements Strategy.
func (OffsetStrategy) Name() string { return StrategyOffset }

// Plan implements Strategy.
func (OffsetStrategy) Plan(req Request, totalCount int) Plan {
	p := newPager(totalCount, req.Page, req.PerPage)
	return Plan{
		Meta:     p.meta(),
		Offset:   p.offset,
		Limit:    p.limit(),
		Overflow: p.overflow,
		Headers:  p.headers(req.URL),
	}
}

// pager holds the computed window for one request.
type pager struct {
	count  int
	page   int
	items  int
	pages  int
	last   int
	offset int
	prev   int
	next   int

	overflow bool
}

func newPager(count, page, items int) *pager {
	if items < 1 {
		items = DefaultSettings().PerPage
	}
	if page < 1 {
		page = 1
	}
	if count < 0 {
		count = 0
	}

	p := &pager{count: count, items: items}
	p.pages = pageCount(count, items)
	p.last = lastPage(p.pages)

	if page > p.last {
		p.overflow = true
		page = p.last
	}
	p.page = page
	p.offset = (page - 1) * items

	if page > 1 {
		p.prev = page - 1
	}
	if page < p.last {
		p.next = page + 1
	}
	return p
}

func (p *pager) limit() int {
	if p.overflow {
		return 0
	}
	return p.items
}

func (p *pager) meta() Meta {
	return Meta{
		CurrentPage: p.page,
		TotalPages:  p.pages,
		TotalCount:  p.count,
		PerPage:     p.items,
	}
}

func (p *pager) headers(base *url.URL) http.Header {
	h := http.Header{}
	h.Set(HeaderCurrentPage, strconv.Itoa(p.page))
	h.Set(HeaderPageItems, strconv.Itoa(p.items))
	h.Set(HeaderTotalPages, strconv.Itoa(p.pages))
	h.Set(HeaderTotalCount, strconv.Itoa(p.count))
	if base != nil {
		h.Set(HeaderLink, p.link(base))
	}
	return h
}

// link renders an RFC 8288 Link header with first, prev, next and last.
func (p *pager) link(base *url.URL) string {
	rels := []struct {
		rel  string
		page int
	}{
		{"first", 1},
		{"prev", p.prev},
		{"next", p.next},
		{"last", p.last},
	}

	parts := make([]string, 0, len(rels))
	for _, r := range rels {
		if r.page == 0 {
			continue
		}
		u := *base
		q := u.Query()
		q.Set("page", strconv.Itoa(r.page))
		q.Set("per_page", strconv.Itoa(p.items))
		q.Del("perPage")
		u.RawQuery = q.Encode()
		parts = append(parts, fmt.Sprintf(`<%s>; rel="%s"`, u.String(), r.rel))
	}
	return strings.Join(parts, ", ")
}
