//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/skeleton-api/internal/cache"
	"github.com/phrazzld/skeleton-api/internal/platform/redis"
	"github.com/phrazzld/skeleton-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache(t *testing.T) {
	url := testdb.StartRedis(t)
	ctx := context.Background()

	client, closeClient, err := redis.New(ctx, url, redis.Options{})
	require.NoError(t, err)
	t.Cleanup(closeClient)

	c := cache.NewRedis(client, "test:")
	require.NoError(t, c.Ping(ctx))

	_, err = c.Get(ctx, "absent")
	assert.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	raw, err := client.Get(ctx, "test:k").Result()
	require.NoError(t, err)
	assert.Equal(t, "v", raw)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrMiss)
}
