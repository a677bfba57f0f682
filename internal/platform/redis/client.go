// Package redis builds go-redis clients shared by the cache and the job broker.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Options tunes the client beyond what the URL expresses. Zero values fall
// back to defaults.
type Options struct {
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
}

// New parses a redis:// or rediss:// URL, returns a configured client and
// verifies connectivity with PING. Call the returned closer during shutdown.
func New(ctx context.Context, url string, o Options) (*goredis.Client, func(), error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid redis url: %w", err)
	}

	opts.DialTimeout = defaultDuration(o.DialTimeout, 3*time.Second)
	opts.ReadTimeout = defaultDuration(o.ReadTimeout, 2*time.Second)
	opts.WriteTimeout = defaultDuration(o.WriteTimeout, 2*time.Second)
	opts.PoolSize = defaultInt(o.PoolSize, 10)
	opts.MinIdleConns = defaultInt(o.MinIdleConns, 2)
	opts.MaxRetries = defaultInt(o.MaxRetries, 3)
	opts.MinRetryBackoff = 50 * time.Millisecond
	opts.MaxRetryBackoff = 500 * time.Millisecond

	client := goredis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping failed: %w", err)
	}

	closer := func() {
		_ = client.Close()
	}

	return client, closer, nil
}

func defaultDuration(v, d time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return d
}

func defaultInt(v, d int) int {
	if v > 0 {
		return v
	}
	return d
}
