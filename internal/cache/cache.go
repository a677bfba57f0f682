// Package cache provides the read-through cache used for single-entity
// lookups. Backends are chosen once at startup: none, memory or redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/skeleton-api/internal/jsonutil"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache stores opaque byte values under string keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// Fetch returns the cached value for key, or calls load, stores its result
// and returns it. Cache failures other than a miss are reported through
// onError and never fail the lookup.
func Fetch[T any](
	ctx context.Context,
	c Cache,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (T, error),
	onError func(op string, err error),
) (T, error) {
	if onError == nil {
		onError = func(string, error) {}
	}

	data, err := c.Get(ctx, key)
	switch {
	case err == nil:
		var cached T
		decErr := jsonutil.Unmarshal(data, &cached)
		if decErr == nil {
			return cached, nil
		}
		onError("decode", decErr)
	case !errors.Is(err, ErrMiss):
		onError("get", err)
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	data, err = jsonutil.Marshal(v)
	if err != nil {
		onError("encode", fmt.Errorf("encode %s: %w", key, err))
		return v, nil
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		onError("set", err)
	}
	return v, nil
}

// Noop never stores anything.
type Noop struct{}

// Get implements Cache.
func (Noop) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

// Set implements Cache.
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete implements Cache.
func (Noop) Delete(context.Context, string) error { return nil }

// Ping implements Cache.
func (Noop) Ping(context.Context) error { return nil }
