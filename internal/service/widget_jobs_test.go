package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/skeleton-api/internal/cache"
	"github.com/phrazzld/skeleton-api/internal/jsonutil"
	"github.com/phrazzld/skeleton-api/internal/platform/memory"
	"github.com/phrazzld/skeleton-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenCache struct{ cache.Noop }

func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("cache down")
}

func TestWidgetCreatedWarmsCache(t *testing.T) {
	s := memory.NewWidgetStore()
	c := cache.NewMemory()
	w := seedWidgets(t, s, 1)[0]

	jobs := NewWidgetJobs(s, c, time.Hour, testLogger())
	registry := task.NewRegistry()
	jobs.Register(registry)

	h, ok := registry.Lookup(JobWidgetCreated)
	require.True(t, ok)

	job, err := task.NewJob(JobWidgetCreated, "", WidgetCreatedPayload{WidgetID: w.ID})
	require.NoError(t, err)
	require.NoError(t, h(context.Background(), job))

	data, err := c.Get(context.Background(), widgetCacheKey(w.ID))
	require.NoError(t, err)
	var cached struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, jsonutil.Unmarshal(data, &cached))
	assert.Equal(t, w.ID, cached.ID)
}

func TestWidgetCreatedFailures(t *testing.T) {
	s := memory.NewWidgetStore()
	w := seedWidgets(t, s, 1)[0]

	tests := []struct {
		name        string
		cache       cache.Cache
		payload     []byte
		wantDiscard bool
	}{
		{"malformed payload", cache.NewMemory(), []byte(`{"widget_id":42}`), true},
		{"widget gone", cache.NewMemory(), []byte(`{"widget_id":"` + uuid.NewString() + `"}`), true},
		{"cache unavailable", brokenCache{}, []byte(`{"widget_id":"` + w.ID.String() + `"}`), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := NewWidgetJobs(s, tt.cache, time.Hour, testLogger())
			job := &task.Job{ID: "01", Name: JobWidgetCreated, Payload: tt.payload}

			err := jobs.WidgetCreated(context.Background(), job)
			require.Error(t, err)
			assert.Equal(t, tt.wantDiscard, errors.Is(err, task.ErrDiscard))
		})
	}
}
