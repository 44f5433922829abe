package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 60 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Schema defaults
	DefaultSchemaDebounce = 100 * time.Millisecond

	// Generator defaults
	DefaultGeneratorName       = "generator"
	DefaultCompletionPath      = "/v1/completions"
	DefaultHealthPath          = "/health"
	DefaultGeneratorTimeout    = 30 * time.Second
	DefaultGeneratorMaxRetries = 3

	// Validation defaults
	DefaultMaxErrors = 10

	// Sampling defaults
	DefaultMaxAttempts = 10

	// Dataset defaults
	DefaultDatasetBackend      = "jsonl"
	DefaultDatasetPath         = "data/samples.jsonl"
	DefaultSQLiteMaxOpenConns  = 10
	DefaultSQLiteMaxIdleConns  = 5
	DefaultSQLiteBusyTimeout   = 5 * time.Second

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsNamespace = "ontoguard"
	DefaultMetricsSubsystem = "engine"
)

// NewDefault returns a configuration with every default applied. Loading
// unmarshals the document over this value, so keys absent from the file
// keep their defaults, including booleans that default to true.
func NewDefault() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress:   DefaultListenAddress,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			RequestTimeout:  DefaultRequestTimeout,
			MaxHeaderBytes:  DefaultMaxHeaderBytes,
		},
		Schema: SchemaConfig{
			DebounceInterval: DefaultSchemaDebounce,
		},
		Generator: GeneratorConfig{
			Name:           DefaultGeneratorName,
			CompletionPath: DefaultCompletionPath,
			HealthPath:     DefaultHealthPath,
			Timeout:        DefaultGeneratorTimeout,
			MaxRetries:     DefaultGeneratorMaxRetries,
		},
		Validation: ValidationConfig{
			MaxErrors: DefaultMaxErrors,
		},
		Sampling: SamplingConfig{
			MaxAttempts:                 DefaultMaxAttempts,
			EnableSchemaValidation:      true,
			EnableExpressionConstraints: true,
			EnableCustomValidators:      true,
		},
		Gateway: GatewayConfig{
			FailClosed: true,
		},
		Dataset: DatasetConfig{
			Backend: DefaultDatasetBackend,
			Path:    DefaultDatasetPath,
			SQLite: SQLiteConfig{
				MaxOpenConns: DefaultSQLiteMaxOpenConns,
				MaxIdleConns: DefaultSQLiteMaxIdleConns,
				BusyTimeout:  DefaultSQLiteBusyTimeout,
			},
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:  DefaultLogLevel,
				Format: DefaultLogFormat,
			},
			Metrics: MetricsConfig{
				Enabled:         true,
				Namespace:       DefaultMetricsNamespace,
				Subsystem:       DefaultMetricsSubsystem,
				DurationBuckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
			},
		},
	}
}

// ApplyDefaults fills zero values that must never stay zero, for
// configurations built in code rather than loaded from a file.
func ApplyDefaults(cfg *Config) {
	def := NewDefault()

	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = def.Server.ListenAddress
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = def.Server.ReadTimeout
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = def.Server.WriteTimeout
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = def.Server.IdleTimeout
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = def.Server.RequestTimeout
	}
	if cfg.Server.MaxHeaderBytes <= 0 {
		cfg.Server.MaxHeaderBytes = def.Server.MaxHeaderBytes
	}

	if cfg.Schema.DebounceInterval <= 0 {
		cfg.Schema.DebounceInterval = def.Schema.DebounceInterval
	}

	if cfg.Generator.Name == "" {
		cfg.Generator.Name = def.Generator.Name
	}
	if cfg.Generator.CompletionPath == "" {
		cfg.Generator.CompletionPath = def.Generator.CompletionPath
	}
	if cfg.Generator.HealthPath == "" {
		cfg.Generator.HealthPath = def.Generator.HealthPath
	}
	if cfg.Generator.Timeout <= 0 {
		cfg.Generator.Timeout = def.Generator.Timeout
	}
	if cfg.Generator.MaxRetries < 0 {
		cfg.Generator.MaxRetries = def.Generator.MaxRetries
	}

	if cfg.Validation.MaxErrors <= 0 {
		cfg.Validation.MaxErrors = def.Validation.MaxErrors
	}
	if cfg.Sampling.MaxAttempts <= 0 {
		cfg.Sampling.MaxAttempts = def.Sampling.MaxAttempts
	}

	if cfg.Dataset.Backend == "" {
		cfg.Dataset.Backend = def.Dataset.Backend
	}
	if cfg.Dataset.Path == "" {
		cfg.Dataset.Path = def.Dataset.Path
	}
	if cfg.Dataset.SQLite.MaxOpenConns <= 0 {
		cfg.Dataset.SQLite.MaxOpenConns = def.Dataset.SQLite.MaxOpenConns
	}
	if cfg.Dataset.SQLite.MaxIdleConns <= 0 {
		cfg.Dataset.SQLite.MaxIdleConns = def.Dataset.SQLite.MaxIdleConns
	}
	if cfg.Dataset.SQLite.BusyTimeout <= 0 {
		cfg.Dataset.SQLite.BusyTimeout = def.Dataset.SQLite.BusyTimeout
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = def.Telemetry.Logging.Level
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = def.Telemetry.Logging.Format
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = def.Telemetry.Metrics.Namespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = def.Telemetry.Metrics.Subsystem
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		cfg.Telemetry.Metrics.DurationBuckets = def.Telemetry.Metrics.DurationBuckets
	}
}
