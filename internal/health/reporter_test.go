package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/skeleton-api/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okProbe(context.Context) error { return nil }

func countingProbe(n *atomic.Int32) Probe {
	return func(context.Context) error {
		n.Add(1)
		return nil
	}
}

func TestShallow(t *testing.T) {
	r := NewReporter(Config{}, testLogger(), Check{Name: "database", Probe: func(context.Context) error {
		t.Fatal("shallow report must not run probes")
		return nil
	}})
	assert.Equal(t, ShallowReport{Status: "ok"}, r.Shallow())
}

func TestDeepAllHealthy(t *testing.T) {
	r := NewReporter(Config{Version: "1.2.3"}, testLogger(),
		Check{Name: "database", Probe: okProbe},
		Check{Name: "cache", Probe: okProbe})

	report := r.Deep(context.Background(), ModeStandard)

	assert.Equal(t, StatusOK, report.Status)
	assert.Equal(t, http.StatusOK, report.HTTPStatus())
	assert.Equal(t, "1.2.3", report.Version)
	_, err := time.Parse(time.RFC3339, report.Timestamp)
	assert.NoError(t, err)
	require.Len(t, report.Checks, 2)
	for name, res := range report.Checks {
		assert.True(t, res.OK, name)
		assert.Empty(t, res.Error, name)
	}
}

func TestDeepOneFailingCheck(t *testing.T) {
	r := NewReporter(Config{}, testLogger(),
		Check{Name: "database", Probe: okProbe},
		Check{Name: "cache", Probe: func(context.Context) error { return errors.New("connection refused") }},
		Check{Name: "queue", Probe: okProbe})

	report := r.Deep(context.Background(), ModeStandard)

	assert.Equal(t, StatusError, report.Status)
	assert.Equal(t, http.StatusServiceUnavailable, report.HTTPStatus())
	require.Len(t, report.Checks, 3, "every check is reported even when one fails")
	assert.True(t, report.Checks["database"].OK)
	assert.True(t, report.Checks["queue"].OK)
	assert.False(t, report.Checks["cache"].OK)
	assert.Equal(t, "connection refused", report.Checks["cache"].Error)

	assert.Equal(t, 0.0, testutil.ToFloat64(telemetry.HealthCheckUp.WithLabelValues("cache")))
	assert.Equal(t, 1.0, testutil.ToFloat64(telemetry.HealthCheckUp.WithLabelValues("database")))
}

func TestDeepProbeTimeout(t *testing.T) {
	r := NewReporter(Config{ProbeTimeout: 20 * time.Millisecond}, testLogger(),
		Check{Name: "database", Probe: okProbe},
		Check{Name: "stuck", Probe: func(context.Context) error {
			// ignores its context on purpose
			time.Sleep(time.Second)
			return nil
		}})

	start := time.Now()
	report := r.Deep(context.Background(), ModeStandard)

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, StatusError, report.Status)
	assert.True(t, report.Checks["database"].OK)
	assert.False(t, report.Checks["stuck"].OK)
	assert.Contains(t, report.Checks["stuck"].Error, "timed out")
}

func TestDeepModes(t *testing.T) {
	r := NewReporter(Config{}, testLogger(),
		Check{Name: "database", Probe: okProbe},
		Check{Name: "migrations", Probe: okProbe, FullOnly: true})

	standard := r.Deep(context.Background(), ModeStandard)
	assert.NotContains(t, standard.Checks, "migrations")

	full := r.Deep(context.Background(), ModeFull)
	assert.Contains(t, full.Checks, "migrations")
	assert.Contains(t, full.Checks, "database")
}

func TestDeepCaching(t *testing.T) {
	var runs atomic.Int32
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	r := NewReporter(Config{CacheTTL: time.Second}, testLogger(),
		Check{Name: "database", Probe: countingProbe(&runs)})
	r.now = func() time.Time { return now }

	first := r.Deep(context.Background(), ModeStandard)
	second := r.Deep(context.Background(), ModeStandard)
	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, first, second)

	// modes are cached separately
	r.Deep(context.Background(), ModeFull)
	assert.Equal(t, int32(2), runs.Load())

	now = now.Add(time.Second)
	third := r.Deep(context.Background(), ModeStandard)
	assert.Equal(t, int32(3), runs.Load())
	assert.NotEqual(t, first.Timestamp, third.Timestamp)
}

func TestDeepCachingDisabled(t *testing.T) {
	var runs atomic.Int32
	r := NewReporter(Config{CacheTTL: 0}, testLogger(),
		Check{Name: "database", Probe: countingProbe(&runs)})

	r.Deep(context.Background(), ModeStandard)
	r.Deep(context.Background(), ModeStandard)
	assert.Equal(t, int32(2), runs.Load())
}

func TestDeepCancelledContext(t *testing.T) {
	r := NewReporter(Config{ProbeTimeout: time.Minute}, testLogger(),
		Check{Name: "database", Probe: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := r.Deep(ctx, ModeStandard)
	assert.Equal(t, StatusError, report.Status)
	assert.Equal(t, context.Canceled.Error(), report.Checks["database"].Error)
}

func TestDeepCancelledCallerDoesNotPoisonCache(t *testing.T) {
	var runs atomic.Int32
	r := NewReporter(Config{CacheTTL: time.Minute, ProbeTimeout: time.Minute}, testLogger(),
		Check{Name: "cancel_cache_db", Probe: func(ctx context.Context) error {
			runs.Add(1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return nil
			}
		}})
	telemetry.HealthCheckUp.WithLabelValues("cancel_cache_db").Set(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	aborted := r.Deep(ctx, ModeStandard)
	assert.Equal(t, StatusError, aborted.Status)
	assert.Equal(t, float64(1), testutil.ToFloat64(telemetry.HealthCheckUp.WithLabelValues("cancel_cache_db")))

	next := r.Deep(context.Background(), ModeStandard)
	assert.Equal(t, StatusOK, next.Status)
	assert.Equal(t, http.StatusOK, next.HTTPStatus())
	assert.True(t, next.Checks["cancel_cache_db"].OK)
	assert.Equal(t, int32(2), runs.Load())

	r.Deep(context.Background(), ModeStandard)
	assert.Equal(t, int32(2), runs.Load(), "healthy report is cached")
}

func TestDeepRecoversPanickingProbe(t *testing.T) {
	r := NewReporter(Config{}, testLogger(),
		Check{Name: "database", Probe: func(context.Context) error { panic("boom") }})

	report := r.Deep(context.Background(), ModeStandard)
	assert.False(t, report.Checks["database"].OK)
	assert.Contains(t, report.Checks["database"].Error, "probe panicked")
}
