package config

import "time"

// Environment names accepted by ServerConfig.Environment.
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// Pagination strategies accepted by PaginationConfig.Strategy.
const (
	PaginationOffset = "offset"
	PaginationManual = "manual"
)

// Cache backends accepted by CacheConfig.Backend.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Job processors accepted by JobsConfig.Processor.
const (
	JobsNone  = "none"
	JobsAsync = "async"
	JobsRedis = "redis"
)

// Config holds all application configuration.
// It is loaded once at process start and treated as immutable afterwards.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	App        AppConfig        `mapstructure:"app"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Jobs       JobsConfig       `mapstructure:"jobs"`
	Health     HealthConfig     `mapstructure:"health"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	Environment     string        `mapstructure:"environment" validate:"required,oneof=development test production"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// AppConfig identifies the running service.
type AppConfig struct {
	Name    string `mapstructure:"name" validate:"required"`
	Version string `mapstructure:"version" validate:"required"`
}

// PaginationConfig selects the paging strategy and its limits.
type PaginationConfig struct {
	Strategy       string `mapstructure:"strategy" validate:"required,oneof=offset manual"`
	DefaultPerPage int    `mapstructure:"default_per_page" validate:"gte=1,ltefield=MaxPerPage"`
	MaxPerPage     int    `mapstructure:"max_per_page" validate:"gte=1"`
}

// DatabaseConfig contains all database-related configuration settings.
// An empty URL runs the service on the in-memory store.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"omitempty,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend  string        `mapstructure:"backend" validate:"required,oneof=none memory redis"`
	RedisURL string        `mapstructure:"redis_url" validate:"required_if=Backend redis"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

// JobsConfig selects the background job processor.
type JobsConfig struct {
	Processor   string `mapstructure:"processor" validate:"required,oneof=none async redis"`
	RedisURL    string `mapstructure:"redis_url" validate:"required_if=Processor redis"`
	Queue       string `mapstructure:"queue" validate:"required"`
	WorkerCount int    `mapstructure:"worker_count" validate:"gte=1"`
	QueueSize   int    `mapstructure:"queue_size" validate:"gte=1"`
	MaxAttempts int    `mapstructure:"max_attempts" validate:"gte=1"`
}

// HealthConfig tunes the deep health check.
type HealthConfig struct {
	CacheTTL     time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout" validate:"gt=0"`
}

// TelemetryConfig contains tracing and metrics settings.
type TelemetryConfig struct {
	ServiceName    string `mapstructure:"service_name" validate:"required"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint" validate:"omitempty,url"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
}

// IsProduction reports whether the service runs in production mode, where
// internal error details are hidden from clients.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}
