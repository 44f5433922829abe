package config

import "time"

// Config is the root configuration structure for Ontoguard. It contains
// all configuration sections for the HTTP server, the schema document,
// the generator backend, validation, sampling, the gateway posture,
// the dataset sink and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen
	// address, timeouts and header limits.
	Server ServerConfig `yaml:"server"`

	// Schema contains the schema document location and hot-reload
	// settings.
	Schema SchemaConfig `yaml:"schema"`

	// Generator contains configuration for the external generator
	// backend.
	Generator GeneratorConfig `yaml:"generator"`

	// Validation contains shared validation settings.
	Validation ValidationConfig `yaml:"validation"`

	// Sampling contains rejection sampling loop settings.
	Sampling SamplingConfig `yaml:"sampling"`

	// Gateway contains the runtime enforcement posture and health probe
	// schedule.
	Gateway GatewayConfig `yaml:"gateway"`

	// Dataset contains the accepted-sample sink configuration.
	Dataset DatasetConfig `yaml:"dataset"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire
	// request. Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response
	// writes. Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout. Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown. Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RequestTimeout is the wall-clock budget for one request,
	// spanning the whole sampling attempt loop. Default: 60s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxHeaderBytes limits request header size. Default: 1MB
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// SchemaConfig contains the schema document location and reload settings.
type SchemaConfig struct {
	// Path is the schema document path (.json, .yaml or .yml).
	Path string `yaml:"path"`

	// Watch enables hot-reload when the document changes on disk.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval coalesces rapid file events into one reload.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// GeneratorConfig contains configuration for the generator backend.
type GeneratorConfig struct {
	// Name identifies the generator in logs and errors.
	// Default: "generator"
	Name string `yaml:"name"`

	// BaseURL is the backend base URL. Required when serving with a
	// generator attached.
	BaseURL string `yaml:"base_url"`

	// CompletionPath is the completion endpoint path.
	// Default: "/v1/completions"
	CompletionPath string `yaml:"completion_path"`

	// HealthPath is the health endpoint path. Default: "/health"
	HealthPath string `yaml:"health_path"`

	// APIKey is sent as a bearer token when set. Typically loaded from
	// the environment.
	APIKey string `yaml:"api_key"`

	// Model is the model identifier passed to the backend.
	Model string `yaml:"model"`

	// MaxTokens caps completion length (0 leaves it to the backend).
	MaxTokens int `yaml:"max_tokens"`

	// Temperature is the sampling temperature passed to the backend.
	Temperature float64 `yaml:"temperature"`

	// Timeout bounds a single backend request. Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the retry count for transient faults. Default: 3
	MaxRetries int `yaml:"max_retries"`
}

// ValidationConfig contains shared validation settings.
type ValidationConfig struct {
	// MaxErrors caps accumulated violations per validation call.
	// Default: 10
	MaxErrors int `yaml:"max_errors"`
}

// SamplingConfig contains rejection sampling settings.
type SamplingConfig struct {
	// MaxAttempts bounds the generate-validate-retry loop. Default: 10
	MaxAttempts int `yaml:"max_attempts"`

	// RejectionThreshold is reserved for confidence gating and unused
	// by the core loop.
	RejectionThreshold float64 `yaml:"rejection_threshold"`

	// EnableSchemaValidation runs structural validation per attempt.
	// Default: true
	EnableSchemaValidation bool `yaml:"enable_schema_validation"`

	// EnableExpressionConstraints runs expression constraints per
	// attempt. Default: true
	EnableExpressionConstraints bool `yaml:"enable_expression_constraints"`

	// EnableCustomValidators runs registered predicates per attempt.
	// Default: true
	EnableCustomValidators bool `yaml:"enable_custom_validators"`
}

// GatewayConfig contains the runtime enforcement posture.
type GatewayConfig struct {
	// FailClosed selects enforcement: invalid ingress short-circuits
	// and invalid egress is flagged. When false both checks only log.
	// Default: true
	FailClosed bool `yaml:"fail_closed"`

	// ProbeSchedule is a cron expression for periodic health probes.
	// Empty disables the prober. Default: "" (disabled)
	ProbeSchedule string `yaml:"probe_schedule"`
}

// DatasetConfig contains the accepted-sample sink configuration.
type DatasetConfig struct {
	// Backend selects the sink: "jsonl" or "sqlite". Default: "jsonl"
	Backend string `yaml:"backend"`

	// Path is the sink location: a .jsonl file or a sqlite database
	// file. Default: "data/samples.jsonl"
	Path string `yaml:"path"`

	// SQLite tunes the sqlite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig tunes the sqlite dataset backend.
type SQLiteConfig struct {
	// MaxOpenConns limits open connections. Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns limits idle connections. Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// BusyTimeout is the sqlite busy timeout. Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging settings.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics settings.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error". Default: "info"
	Level string `yaml:"level"`

	// Format is "json" or "text". Default: "json"
	Format string `yaml:"format"`

	// AddSource includes source file/line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix. Default: "ontoguard"
	Namespace string `yaml:"namespace"`

	// Subsystem is the secondary prefix. Default: "engine"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets are histogram buckets for request durations in
	// seconds. Default: generation-oriented buckets from 100ms to 60s.
	DurationBuckets []float64 `yaml:"duration_buckets"`
}
