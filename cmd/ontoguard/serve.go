package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ontoguard-hq/ontoguard/pkg/config"
	"ontoguard-hq/ontoguard/pkg/gateway"
	"ontoguard-hq/ontoguard/pkg/generator"
	"ontoguard-hq/ontoguard/pkg/schema"
	"ontoguard-hq/ontoguard/pkg/server"
	"ontoguard-hq/ontoguard/pkg/telemetry/health"
	"ontoguard-hq/ontoguard/pkg/telemetry/logging"
	"ontoguard-hq/ontoguard/pkg/telemetry/metrics"
)

var serveFlags struct {
	listenAddress string
	schemaPath    string
	logLevel      string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the validation gateway server",
	Long: `Start the runtime validation gateway.

The server validates prediction requests against the schema, delegates
generation to the configured backend and validates responses on the way
out. Enforcement posture (fail-open or fail-closed) comes from the
configuration.

Examples:
  # Start with default config
  ontoguard serve

  # Start with custom config
  ontoguard serve --config /etc/ontoguard/config.yaml

  # Override listen address and schema
  ontoguard serve --listen 0.0.0.0:8080 --schema person.schema.json

  # Validate config without starting the server
  ontoguard serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVarP(&serveFlags.schemaPath, "schema", "s", "", "override schema document path")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.schemaPath != "" {
		cfg.Schema.Path = serveFlags.schemaPath
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}
	if cfg.Schema.Path == "" {
		return fmt.Errorf("no schema document configured (set schema.path or --schema)")
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	if serveFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Generator backend is optional; without one the gateway serves
	// health and rejects prediction requests.
	var gen generator.Generator
	if cfg.Generator.BaseURL != "" {
		httpGen, err := generator.NewHTTPGenerator(generator.Config{
			Name:           cfg.Generator.Name,
			BaseURL:        cfg.Generator.BaseURL,
			CompletionPath: cfg.Generator.CompletionPath,
			HealthPath:     cfg.Generator.HealthPath,
			APIKey:         cfg.Generator.APIKey,
			Model:          cfg.Generator.Model,
			MaxTokens:      cfg.Generator.MaxTokens,
			Temperature:    cfg.Generator.Temperature,
			Timeout:        cfg.Generator.Timeout,
			MaxRetries:     cfg.Generator.MaxRetries,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize generator: %w", err)
		}
		defer httpGen.Close()
		gen = httpGen
	} else {
		logger.Warn("no generator configured, prediction requests will be rejected")
	}

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	gw := gateway.New(gateway.Config{
		FailClosed:          cfg.Gateway.FailClosed,
		MaxValidationErrors: cfg.Validation.MaxErrors,
	}, gen, logger)
	if collector != nil {
		gw.SetMetrics(collector.Validation())
	}

	if err := gw.LoadSchema(cfg.Schema.Path); err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}
	if err := gw.Ready(); err != nil {
		return err
	}

	if cfg.Schema.Watch {
		watcher, err := schema.NewWatcher(&schema.WatcherConfig{
			Path:             cfg.Schema.Path,
			DebounceInterval: cfg.Schema.DebounceInterval,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize schema watcher: %w", err)
		}
		defer watcher.Stop()

		go func() {
			if err := watcher.Watch(ctx, func() error {
				return gw.ReloadSchema(cfg.Schema.Path)
			}); err != nil {
				logger.Error("schema watcher stopped", "error", err)
			}
		}()
	}

	prober := gateway.NewProber(gw, cfg.Gateway.ProbeSchedule, logger)
	if collector != nil {
		gm := collector.Gateway()
		prober.OnResult(func(agg *gateway.Aggregate) {
			gm.RecordHealth(agg.ValidatorOK, agg.SchemaOK, agg.GeneratorOK)
		})
	}
	if err := prober.Start(ctx); err != nil {
		return err
	}
	defer prober.Stop()

	checker := health.New(0)
	checker.RegisterCheck("gateway", func(ctx context.Context) error {
		if agg := gw.CheckHealth(ctx); !agg.Healthy() {
			return fmt.Errorf("gateway unhealthy: %v", agg.Errors)
		}
		return nil
	})
	if gen != nil {
		checker.RegisterCheck("generator", gen.HealthCheck)
	}

	srv := server.New(&cfg.Server, gw, checker, collector, logger)
	return srv.Start(ctx)
}
