package pagination

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Strategy names accepted by ForName.
const (
	StrategyOffset = "offset"
	StrategyManual = "manual"
)

// ErrUnknownStrategy is returned by ForName for an unrecognized name.
var ErrUnknownStrategy = errors.New("unknown pagination strategy")

// Plan is the window a strategy computed for one request.
type Plan struct {
	Meta Meta
	// Offset and Limit address the slice to fetch.
	Offset int
	Limit  int
	// Overflow is set when the requested page lies past the last page.
	// No items are fetched for an overflowing plan.
	Overflow bool
	// Headers carries navigation headers, if the strategy emits any.
	Headers http.Header
}

// Strategy computes a page window from a request and the collection size.
type Strategy interface {
	Name() string
	Plan(req Request, totalCount int) Plan
}

// ForName resolves a configured strategy name. The choice is made once at
// startup and never per request.
func ForName(name string) (Strategy, error) {
	switch name {
	case StrategyOffset:
		return OffsetStrategy{}, nil
	case StrategyManual:
		return ManualStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Collection is anything that can be counted and sliced in a stable order.
type Collection[T any] interface {
	Count(ctx context.Context) (int, error)
	Slice(ctx context.Context, offset, limit int) ([]T, error)
}

// Pager is the type-erased view of a Page used by response writers.
type Pager interface {
	PageItems() any
	PageMeta() Meta
	PageHeaders() http.Header
}

// Page is one page of a collection.
type Page[T any] struct {
	Items   []T
	Meta    Meta
	Headers http.Header
}

// PageItems returns the items, never a nil slice.
func (p Page[T]) PageItems() any {
	if p.Items == nil {
		return []T{}
	}
	return p.Items
}

// PageMeta returns the page metadata.
func (p Page[T]) PageMeta() Meta { return p.Meta }

// PageHeaders returns navigation headers, possibly nil.
func (p Page[T]) PageHeaders() http.Header { return p.Headers }

// Paginate counts the collection, plans the window and fetches it.
// A page past the end is not an error: it yields no items, the last valid
// page number and the true totals.
func Paginate[T any](ctx context.Context, s Strategy, req Request, c Collection[T]) (Page[T], error) {
	total, err := c.Count(ctx)
	if err != nil {
		return Page[T]{}, fmt.Errorf("failed to count collection: %w", err)
	}

	plan := s.Plan(req, total)
	page := Page[T]{Items: []T{}, Meta: plan.Meta, Headers: plan.Headers}
	if plan.Overflow || plan.Limit == 0 || total == 0 {
		return page, nil
	}

	items, err := c.Slice(ctx, plan.Offset, plan.Limit)
	if err != nil {
		return Page[T]{}, fmt.Errorf("failed to fetch page %d: %w", plan.Meta.CurrentPage, err)
	}
	if items != nil {
		page.Items = items
	}
	return page, nil
}
