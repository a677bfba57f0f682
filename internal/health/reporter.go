package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phrazzld/skeleton-api/internal/redact"
	"github.com/phrazzld/skeleton-api/internal/telemetry"
)

// Mode selects which checks a deep report runs.
type Mode string

// Report modes.
const (
	ModeStandard Mode = "standard"
	ModeFull     Mode = "full"
)

// Report statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// DefaultProbeTimeout bounds a single probe when none is configured.
const DefaultProbeTimeout = 2 * time.Second

// ShallowReport is the body of a liveness check.
type ShallowReport struct {
	Status string `json:"status"`
}

// CheckResult is the outcome of one probe.
type CheckResult struct {
	OK        bool   `json:"ok"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// Report is the body of a deep health check.
type Report struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version"`
	Checks    map[string]CheckResult `json:"checks"`
}

// Healthy reports whether every check passed.
func (r Report) Healthy() bool {
	return r.Status == StatusOK
}

// HTTPStatus is 200 when healthy and 503 otherwise.
func (r Report) HTTPStatus() int {
	if r.Healthy() {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

// Config tunes a Reporter.
type Config struct {
	Version string
	// CacheTTL is how long a deep report is reused. Zero disables caching.
	CacheTTL time.Duration
	// ProbeTimeout bounds each probe separately.
	ProbeTimeout time.Duration
}

type cachedReport struct {
	report     Report
	computedAt time.Time
}

// Reporter builds health reports from a fixed set of checks.
type Reporter struct {
	checks  []Check
	version string
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger

	standard atomic.Pointer[cachedReport]
	full     atomic.Pointer[cachedReport]
}

// NewReporter creates a Reporter running checks.
func NewReporter(cfg Config, logger *slog.Logger, checks ...Check) *Reporter {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{
		checks:  checks,
		version: cfg.Version,
		ttl:     cfg.CacheTTL,
		timeout: cfg.ProbeTimeout,
		now:     time.Now,
		logger:  logger.With(slog.String("component", "health")),
	}
}

// Shallow reports liveness without touching any collaborator.
func (r *Reporter) Shallow() ShallowReport {
	return ShallowReport{Status: StatusOK}
}

// Deep runs the checks for mode, or returns a cached report younger than
// the TTL. Concurrent refreshes may race; the last one written wins. A
// report computed for a caller that went away is returned but never cached.
func (r *Reporter) Deep(ctx context.Context, mode Mode) Report {
	slot := r.slot(mode)

	if r.ttl > 0 {
		if cached := slot.Load(); cached != nil && r.now().Sub(cached.computedAt) < r.ttl {
			return cached.report
		}
	}

	computedAt := r.now()
	report := r.run(ctx, mode, computedAt)
	if r.ttl > 0 && ctx.Err() == nil {
		slot.Store(&cachedReport{report: report, computedAt: computedAt})
	}
	return report
}

func (r *Reporter) slot(mode Mode) *atomic.Pointer[cachedReport] {
	if mode == ModeFull {
		return &r.full
	}
	return &r.standard
}

func (r *Reporter) run(ctx context.Context, mode Mode, at time.Time) Report {
	report := Report{
		Status:    StatusOK,
		Timestamp: at.UTC().Format(time.RFC3339),
		Version:   r.version,
		Checks:    make(map[string]CheckResult),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, c := range r.checks {
		if c.FullOnly && mode != ModeFull {
			continue
		}
		wg.Add(1)
		go func(c Check) {
			defer wg.Done()
			res := r.probe(ctx, c)

			mu.Lock()
			report.Checks[c.Name] = res
			if !res.OK {
				report.Status = StatusError
			}
			mu.Unlock()
		}(c)
	}
	wg.Wait()

	if !report.Healthy() {
		r.logger.WarnContext(ctx, "health check failed", slog.String("mode", string(mode)), slog.Any("checks", report.Checks))
	}
	return report
}

// probe runs one check under its own timeout. A probe that ignores its
// context is abandoned when the timeout fires.
func (r *Reporter) probe(ctx context.Context, c Check) CheckResult {
	pctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- safeProbe(pctx, c.Probe)
	}()

	var err error
	select {
	case err = <-done:
	case <-pctx.Done():
		err = pctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("timed out after %s", r.timeout)
	}

	res := CheckResult{OK: err == nil, LatencyMS: time.Since(start).Milliseconds()}
	up := 1.0
	if err != nil {
		res.Error = redact.Error(err)
		up = 0
	}
	// The caller's cancellation says nothing about the dependency.
	if ctx.Err() == nil {
		telemetry.HealthCheckUp.WithLabelValues(c.Name).Set(up)
	}
	return res
}

func safeProbe(ctx context.Context, p Probe) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("probe panicked: %v", rec)
		}
	}()
	return p(ctx)
}
