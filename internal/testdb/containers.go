//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/phrazzld/skeleton-api/internal/config"
	"github.com/phrazzld/skeleton-api/internal/platform/logger"
	"github.com/phrazzld/skeleton-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// StartupTimeout bounds how long a container may take to accept connections.
const StartupTimeout = 2 * time.Minute

const (
	postgresImage    = "postgres:16-alpine"
	postgresUser     = "skeleton"
	postgresPassword = "skeleton"
	postgresDB       = "skeleton_test"

	redisImage = "redis:7-alpine"
)

// StartPostgres starts a Postgres container, applies the embedded
// migrations and returns an open connection. The container and the
// connection are released when the test finishes.
func StartPostgres(t *testing.T) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), StartupTimeout)
	defer cancel()

	container := startContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     postgresUser,
			"POSTGRES_PASSWORD": postgresPassword,
			"POSTGRES_DB":       postgresDB,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(StartupTimeout),
	})

	host, port := endpoint(ctx, t, container, "5432/tcp")
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser, postgresPassword, host, port, postgresDB)

	db, err := postgres.Open(ctx, config.DatabaseConfig{URL: dsn, MaxOpenConns: 10, MaxIdleConns: 5})
	require.NoError(t, err, "Failed to open database connection")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close database connection: %v", err)
		}
	})

	log, _ := logger.GetTestLogger(t)
	migrator, err := postgres.NewMigrator(db, log)
	require.NoError(t, err, "Failed to create migrator")
	_, err = migrator.Up(ctx)
	require.NoError(t, err, "Failed to run migrations")

	return db
}

// StartRedis starts a Redis container and returns its redis:// URL.
func StartRedis(t *testing.T) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), StartupTimeout)
	defer cancel()

	container := startContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        redisImage,
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(StartupTimeout),
	})

	host, port := endpoint(ctx, t, container, "6379/tcp")
	return fmt.Sprintf("redis://%s:%s/0", host, port)
}

func startContainer(ctx context.Context, t *testing.T, req testcontainers.ContainerRequest) testcontainers.Container {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "Failed to start %s container", req.Image)

	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate %s container: %v", req.Image, err)
		}
	})
	return container
}

func endpoint(ctx context.Context, t *testing.T, c testcontainers.Container, port string) (string, string) {
	t.Helper()

	host, err := c.Host(ctx)
	require.NoError(t, err, "Failed to get container host")
	mapped, err := c.MappedPort(ctx, port)
	require.NoError(t, err, "Failed to get mapped port %s", port)
	return host, mapped.Port()
}
