package health

import (
	"context"
	"errors"
	"fmt"
)

// Probe checks one collaborator and returns an error when it is unusable.
type Probe func(ctx context.Context) error

// Check names a probe. FullOnly checks run in ModeFull only.
type Check struct {
	Name     string
	Probe    Probe
	FullOnly bool
}

// DBPinger captures the subset of *sql.DB used for health checks.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// Pinger is implemented by caches and job queues.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MigrationChecker reports whether every known migration has been applied.
type MigrationChecker interface {
	Current(ctx context.Context) (bool, error)
}

// ErrPendingMigrations is reported when the schema is behind the binary.
var ErrPendingMigrations = errors.New("pending migrations")

// DatabaseCheck pings the database.
func DatabaseCheck(db DBPinger) Check {
	return Check{Name: "database", Probe: func(ctx context.Context) error {
		if db == nil {
			return errors.New("database is not configured")
		}
		return db.PingContext(ctx)
	}}
}

// PingCheck pings a cache, queue or any other Pinger under name.
func PingCheck(name string, p Pinger) Check {
	return Check{Name: name, Probe: func(ctx context.Context) error {
		if p == nil {
			return fmt.Errorf("%s is not configured", name)
		}
		return p.Ping(ctx)
	}}
}

// MigrationsCheck fails while migrations are pending. It runs in full mode only.
func MigrationsCheck(m MigrationChecker) Check {
	return Check{Name: "migrations", FullOnly: true, Probe: func(ctx context.Context) error {
		if m == nil {
			return errors.New("migrator is not configured")
		}
		current, err := m.Current(ctx)
		if err != nil {
			return err
		}
		if !current {
			return ErrPendingMigrations
		}
		return nil
	}}
}
