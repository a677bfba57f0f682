// Package memory provides in-process store implementations used when no
// database is configured and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/skeleton-api/internal/domain"
	"github.com/phrazzld/skeleton-api/internal/store"
)

// WidgetStore keeps widgets in a map guarded by a mutex. Returned widgets are
// copies, so callers cannot mutate stored state.
type WidgetStore struct {
	mu      sync.RWMutex
	widgets map[uuid.UUID]domain.Widget
	order   []uuid.UUID
}

// NewWidgetStore creates an empty WidgetStore.
func NewWidgetStore() *WidgetStore {
	return &WidgetStore{widgets: make(map[uuid.UUID]domain.Widget)}
}

var _ store.WidgetStore = (*WidgetStore)(nil)

// Create implements store.WidgetStore.Create.
func (s *WidgetStore) Create(_ context.Context, widget *domain.Widget) error {
	if err := widget.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.widgets[widget.ID]; exists {
		return store.NewStoreError("widget", "create", "duplicate id", store.ErrDuplicate)
	}

	s.widgets[widget.ID] = *widget
	s.order = append(s.order, widget.ID)
	sort.SliceStable(s.order, func(i, j int) bool {
		a, b := s.widgets[s.order[i]], s.widgets[s.order[j]]
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID.String() < b.ID.String()
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return nil
}

// GetByID implements store.WidgetStore.GetByID.
func (s *WidgetStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Widget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.widgets[id]
	if !ok {
		return nil, store.NewNotFoundError("widget", id.String())
	}
	return &w, nil
}

// Count implements store.WidgetStore.Count.
func (s *WidgetStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order), nil
}

// List implements store.WidgetStore.List.
func (s *WidgetStore) List(_ context.Context, offset, limit int) ([]*domain.Widget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	if offset >= len(s.order) || limit <= 0 {
		return []*domain.Widget{}, nil
	}
	end := offset + limit
	if end > len(s.order) {
		end = len(s.order)
	}

	out := make([]*domain.Widget, 0, end-offset)
	for _, id := range s.order[offset:end] {
		w := s.widgets[id]
		out = append(out, &w)
	}
	return out, nil
}
