package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"
)

// Validate checks the configuration for inconsistencies that would only
// surface later as confusing runtime failures.
func Validate(cfg *Config) error {
	var errs []string

	if _, _, err := net.SplitHostPort(cfg.Server.ListenAddress); err != nil {
		errs = append(errs, fmt.Sprintf("server.listen_address %q is not host:port", cfg.Server.ListenAddress))
	}

	if cfg.Schema.Path != "" {
		switch ext := strings.ToLower(filepath.Ext(cfg.Schema.Path)); ext {
		case ".json", ".yaml", ".yml":
		default:
			errs = append(errs, fmt.Sprintf("schema.path %q must end in .json, .yaml or .yml", cfg.Schema.Path))
		}
	}

	if cfg.Schema.Watch && cfg.Schema.Path == "" {
		errs = append(errs, "schema.watch requires schema.path")
	}

	if cfg.Generator.Temperature < 0 || cfg.Generator.Temperature > 2 {
		errs = append(errs, fmt.Sprintf("generator.temperature %v out of range [0, 2]", cfg.Generator.Temperature))
	}
	if cfg.Generator.MaxRetries < 0 {
		errs = append(errs, "generator.max_retries must not be negative")
	}

	if cfg.Sampling.RejectionThreshold < 0 || cfg.Sampling.RejectionThreshold > 1 {
		errs = append(errs, fmt.Sprintf("sampling.rejection_threshold %v out of range [0, 1]", cfg.Sampling.RejectionThreshold))
	}

	switch cfg.Dataset.Backend {
	case "jsonl", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("dataset.backend %q must be jsonl or sqlite", cfg.Dataset.Backend))
	}

	switch strings.ToLower(cfg.Telemetry.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("telemetry.logging.level %q is not a known level", cfg.Telemetry.Logging.Level))
	}
	switch strings.ToLower(cfg.Telemetry.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("telemetry.logging.format %q must be json or text", cfg.Telemetry.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
