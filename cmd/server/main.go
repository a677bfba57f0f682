// Package main implements the skeleton API server: the HTTP API, the
// background job worker and the schema migration commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/phrazzld/skeleton-api/internal/config"
	"github.com/phrazzld/skeleton-api/internal/platform/logger"
	"github.com/phrazzld/skeleton-api/internal/telemetry"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "skeleton-api",
	Short: "Skeleton API server",
	Long: `skeleton-api serves the widget API and runs its background jobs.

Commands:
  serve    Run the HTTP server (default)
  worker   Run job workers against the Redis queue
  migrate  Apply or inspect database migrations
  version  Print the build version`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run job workers",
	RunE:  runWorker,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE:  runMigrateUp,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List migrations and whether they are applied",
	RunE:  runMigrateStatus,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config file (default ./config.yaml)")
	serveCmd.Flags().Bool("skip-migrations", false, "do not apply migrations on startup")
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	rootCmd.AddCommand(serveCmd, workerCmd, migrateCmd, versionCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads configuration, installs the logger and tracer, and wires
// the application. The returned shutdown func releases everything.
func bootstrap(ctx context.Context) (*application, func(), error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if version != "dev" {
		cfg.App.Version = version
	}

	log, err := logger.Setup(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up tracing: %w", err)
	}

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		_ = shutdownTracing(context.Background())
		return nil, nil, fmt.Errorf("failed to initialize application: %w", err)
	}

	return app, func() {
		app.cleanup()
		tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(tctx); err != nil {
			log.Warn("failed to flush traces", slog.Any("error", err))
		}
	}, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	app, shutdown, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer shutdown()

	if skip, _ := cmd.Flags().GetBool("skip-migrations"); !skip {
		if err := app.migrate(ctx); err != nil {
			return err
		}
	}

	// Redis jobs are consumed by the worker command.
	if app.config.Jobs.Processor == config.JobsAsync {
		app.startRunner()
	}

	return app.startHTTPServer(ctx, app.setupRouter())
}

func runWorker(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	app, shutdown, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer shutdown()

	if app.config.Jobs.Processor != config.JobsRedis {
		return fmt.Errorf("worker requires jobs.processor=%s, got %q", config.JobsRedis, app.config.Jobs.Processor)
	}

	app.startRunner()
	app.logger.Info("worker running", slog.String("queue", app.config.Jobs.Queue))
	waitForSignal(ctx)
	app.logger.Info("worker shutting down")
	return nil
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	app, shutdown, err := bootstrapDatabase(cmd.Context())
	if err != nil {
		return err
	}
	defer shutdown()

	return app.migrate(cmd.Context())
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	app, shutdown, err := bootstrapDatabase(cmd.Context())
	if err != nil {
		return err
	}
	defer shutdown()

	statuses, err := app.migrator.Status(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		fmt.Fprintf(out, "%-8s %05d %s\n", state, s.Version, s.Source)
	}
	return nil
}

func bootstrapDatabase(ctx context.Context) (*application, func(), error) {
	app, shutdown, err := bootstrap(ctx)
	if err != nil {
		return nil, nil, err
	}
	if app.migrator == nil {
		shutdown()
		return nil, nil, fmt.Errorf("no database configured, set DATABASE_URL")
	}
	return app, shutdown, nil
}
