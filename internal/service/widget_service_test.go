package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/skeleton-api/internal/cache"
	"github.com/phrazzld/skeleton-api/internal/domain"
	"github.com/phrazzld/skeleton-api/internal/pagination"
	"github.com/phrazzld/skeleton-api/internal/platform/memory"
	"github.com/phrazzld/skeleton-api/internal/store"
	"github.com/phrazzld/skeleton-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingStore records how often GetByID reaches the store.
type countingStore struct {
	store.WidgetStore
	gets     int
	countErr error
}

func (s *countingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Widget, error) {
	s.gets++
	return s.WidgetStore.GetByID(ctx, id)
}

func (s *countingStore) Count(ctx context.Context) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.WidgetStore.Count(ctx)
}

type failingEnqueuer struct{}

func (failingEnqueuer) Enqueue(context.Context, *task.Job) error {
	return task.ErrQueueFull
}

type fixture struct {
	svc   WidgetService
	store *countingStore
	cache *cache.Memory
	queue *task.MemoryQueue
}

func newFixture(t *testing.T, strategy pagination.Strategy) fixture {
	t.Helper()
	f := fixture{
		store: &countingStore{WidgetStore: memory.NewWidgetStore()},
		cache: cache.NewMemory(),
		queue: task.NewMemoryQueue(100, testLogger()),
	}
	svc, err := NewWidgetService(WidgetServiceConfig{
		Store:    f.store,
		Strategy: strategy,
		Cache:    f.cache,
		CacheTTL: time.Hour,
		Jobs:     f.queue,
	}, testLogger())
	require.NoError(t, err)
	f.svc = svc
	return f
}

func seedWidgets(t *testing.T, s store.WidgetStore, n int) []*domain.Widget {
	t.Helper()
	base := time.Now().UTC()
	out := make([]*domain.Widget, 0, n)
	for i := 0; i < n; i++ {
		w, err := domain.NewWidget("widget", "", i)
		require.NoError(t, err)
		w.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, s.Create(context.Background(), w))
		out = append(out, w)
	}
	return out
}

func TestNewWidgetServiceRequiresCollaborators(t *testing.T) {
	_, err := NewWidgetService(WidgetServiceConfig{Strategy: pagination.OffsetStrategy{}}, nil)
	assert.Error(t, err)

	_, err = NewWidgetService(WidgetServiceConfig{Store: memory.NewWidgetStore()}, nil)
	assert.Error(t, err)
}

func TestListWidgets(t *testing.T) {
	f := newFixture(t, pagination.OffsetStrategy{})
	seeded := seedWidgets(t, f.store, 25)
	ctx := context.Background()

	tests := []struct {
		name        string
		req         pagination.Request
		wantLen     int
		wantFirst   int
		wantCurrent int
	}{
		{"first page", pagination.Request{Page: 1, PerPage: 10}, 10, 0, 1},
		{"last partial page", pagination.Request{Page: 3, PerPage: 10}, 5, 20, 3},
		{"overflow", pagination.Request{Page: 9, PerPage: 10}, 0, -1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.svc.ListWidgets(ctx, tt.req)
			require.NoError(t, err)

			assert.Len(t, page.Items, tt.wantLen)
			assert.Equal(t, tt.wantCurrent, page.Meta.CurrentPage)
			assert.Equal(t, 3, page.Meta.TotalPages)
			assert.Equal(t, 25, page.Meta.TotalCount)
			assert.Equal(t, 10, page.Meta.PerPage)
			if tt.wantFirst >= 0 {
				assert.Equal(t, seeded[tt.wantFirst].ID, page.Items[0].ID)
			}
		})
	}
}

func TestListWidgetsStoreFailure(t *testing.T) {
	f := newFixture(t, pagination.ManualStrategy{})
	f.store.countErr = errors.New("connection refused")

	_, err := f.svc.ListWidgets(context.Background(), pagination.Request{Page: 1, PerPage: 10})
	require.Error(t, err)

	var svcErr *ServiceError
	assert.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "list_widgets", svcErr.Operation)
}

func TestGetWidgetReadsThroughCache(t *testing.T) {
	f := newFixture(t, pagination.OffsetStrategy{})
	w := seedWidgets(t, f.store, 1)[0]
	ctx := context.Background()

	first, err := f.svc.GetWidget(ctx, w.ID)
	require.NoError(t, err)
	second, err := f.svc.GetWidget(ctx, w.ID)
	require.NoError(t, err)

	assert.Equal(t, w.ID, first.ID)
	assert.Equal(t, w.ID, second.ID)
	assert.Equal(t, 1, f.store.gets, "second lookup should be served from cache")

	_, err = f.cache.Get(ctx, widgetCacheKey(w.ID))
	assert.NoError(t, err)
}

func TestGetWidgetNotFound(t *testing.T) {
	f := newFixture(t, pagination.OffsetStrategy{})
	id := uuid.New()

	_, err := f.svc.GetWidget(context.Background(), id)
	require.Error(t, err)

	var nf *store.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "couldn't find widget with id="+id.String(), err.Error())
}

func TestCreateWidget(t *testing.T) {
	f := newFixture(t, pagination.OffsetStrategy{})
	ctx := context.Background()

	w, err := f.svc.CreateWidget(ctx, "  sprocket ", "small", 3)
	require.NoError(t, err)
	assert.Equal(t, "sprocket", w.Name)

	stored, err := f.store.WidgetStore.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, stored.ID)

	require.Equal(t, 1, f.queue.Len())
	job, err := f.queue.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, JobWidgetCreated, job.Name)

	var payload WidgetCreatedPayload
	require.NoError(t, job.Decode(&payload))
	assert.Equal(t, w.ID, payload.WidgetID)
}

func TestCreateWidgetValidation(t *testing.T) {
	f := newFixture(t, pagination.OffsetStrategy{})

	_, err := f.svc.CreateWidget(context.Background(), "", "", -1)
	require.Error(t, err)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
	assert.Zero(t, f.queue.Len())
}

func TestCreateWidgetSurvivesEnqueueFailure(t *testing.T) {
	svc, err := NewWidgetService(WidgetServiceConfig{
		Store:    memory.NewWidgetStore(),
		Strategy: pagination.OffsetStrategy{},
		Jobs:     failingEnqueuer{},
	}, testLogger())
	require.NoError(t, err)

	w, err := svc.CreateWidget(context.Background(), "gear", "", 1)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, w.ID)
}
