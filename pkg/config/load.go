package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file. The document is
// unmarshalled over the defaults, so absent keys keep their default
// values. The result is validated before return.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := NewDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the naming
// convention ONTOGUARD_SECTION_FIELD (e.g. ONTOGUARD_SERVER_LISTEN_ADDRESS)
// and always take precedence over file-based configuration.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies ONTOGUARD_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	setString("ONTOGUARD_SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	setDuration("ONTOGUARD_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	setDuration("ONTOGUARD_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	setDuration("ONTOGUARD_SERVER_REQUEST_TIMEOUT", &cfg.Server.RequestTimeout)
	setDuration("ONTOGUARD_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	setString("ONTOGUARD_SCHEMA_PATH", &cfg.Schema.Path)
	setBool("ONTOGUARD_SCHEMA_WATCH", &cfg.Schema.Watch)

	setString("ONTOGUARD_GENERATOR_BASE_URL", &cfg.Generator.BaseURL)
	setString("ONTOGUARD_GENERATOR_API_KEY", &cfg.Generator.APIKey)
	setString("ONTOGUARD_GENERATOR_MODEL", &cfg.Generator.Model)
	setDuration("ONTOGUARD_GENERATOR_TIMEOUT", &cfg.Generator.Timeout)
	setInt("ONTOGUARD_GENERATOR_MAX_RETRIES", &cfg.Generator.MaxRetries)

	setInt("ONTOGUARD_VALIDATION_MAX_ERRORS", &cfg.Validation.MaxErrors)
	setInt("ONTOGUARD_SAMPLING_MAX_ATTEMPTS", &cfg.Sampling.MaxAttempts)
	setBool("ONTOGUARD_GATEWAY_FAIL_CLOSED", &cfg.Gateway.FailClosed)
	setString("ONTOGUARD_GATEWAY_PROBE_SCHEDULE", &cfg.Gateway.ProbeSchedule)

	setString("ONTOGUARD_DATASET_BACKEND", &cfg.Dataset.Backend)
	setString("ONTOGUARD_DATASET_PATH", &cfg.Dataset.Path)

	setString("ONTOGUARD_LOG_LEVEL", &cfg.Telemetry.Logging.Level)
	setString("ONTOGUARD_LOG_FORMAT", &cfg.Telemetry.Logging.Format)
	setBool("ONTOGUARD_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
}

func setString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func setBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func setDuration(key string, dst *time.Duration) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
