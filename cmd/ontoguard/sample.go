package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ontoguard-hq/ontoguard/pkg/config"
	"ontoguard-hq/ontoguard/pkg/dataset"
	"ontoguard-hq/ontoguard/pkg/generator"
	"ontoguard-hq/ontoguard/pkg/sampling"
	"ontoguard-hq/ontoguard/pkg/schema"
	"ontoguard-hq/ontoguard/pkg/telemetry/logging"
	"ontoguard-hq/ontoguard/pkg/telemetry/metrics"
)

var sampleFlags struct {
	schemaPath string
	prompt     string
	count      int
	output     string
	backend    string
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Sample conforming records into a dataset",
	Long: `Run the rejection sampling loop against the configured generator and
write accepted records to a dataset sink.

Each run drives the generator with the prompt, extracts a record from
the raw output and validates it; only conforming records are persisted.
Exhausted runs are counted and reported but write nothing.

Examples:
  # Sample 100 records to the configured sink
  ontoguard sample --schema person.schema.json --prompt "Generate a person" --count 100

  # Write to an explicit JSONL file
  ontoguard sample --schema person.schema.json --prompt "Generate a person" \
    --count 10 --output people.jsonl

  # Write to SQLite
  ontoguard sample --schema person.schema.json --prompt "Generate a person" \
    --count 10 --backend sqlite --output people.db`,
	RunE: runSample,
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	sampleCmd.Flags().StringVarP(&sampleFlags.schemaPath, "schema", "s", "", "schema document path (required)")
	sampleCmd.Flags().StringVarP(&sampleFlags.prompt, "prompt", "p", "", "generation prompt (required)")
	sampleCmd.Flags().IntVarP(&sampleFlags.count, "count", "n", 1, "number of accepted records to collect")
	sampleCmd.Flags().StringVarP(&sampleFlags.output, "output", "o", "", "override dataset path")
	sampleCmd.Flags().StringVar(&sampleFlags.backend, "backend", "", "override dataset backend: jsonl, sqlite")
	_ = sampleCmd.MarkFlagRequired("schema")
	_ = sampleCmd.MarkFlagRequired("prompt")
}

func runSample(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if sampleFlags.output != "" {
		cfg.Dataset.Path = sampleFlags.output
	}
	if sampleFlags.backend != "" {
		cfg.Dataset.Backend = sampleFlags.backend
	}
	if cfg.Generator.BaseURL == "" {
		return fmt.Errorf("no generator configured (set generator.base_url)")
	}

	logLevel := cfg.Telemetry.Logging.Level
	if verbose {
		logLevel = "debug"
	}
	logger, err := logging.New(logging.Config{
		Level:  logLevel,
		Format: "text",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	sch, err := schema.Load(sampleFlags.schemaPath)
	if err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}

	gen, err := generator.NewHTTPGenerator(generator.Config{
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
	defer gen.Close()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	sampler := sampling.New(gen, sampling.Config{
		MaxAttempts:                 cfg.Sampling.MaxAttempts,
		RejectionThreshold:          cfg.Sampling.RejectionThreshold,
		EnableSchemaValidation:      cfg.Sampling.EnableSchemaValidation,
		EnableExpressionConstraints: cfg.Sampling.EnableExpressionConstraints,
		EnableCustomValidators:      cfg.Sampling.EnableCustomValidators,
		MaxValidationErrors:         cfg.Validation.MaxErrors,
	}, logger)
	if cfg.Telemetry.Metrics.Enabled {
		collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
		sampler.SetMetrics(collector.Sampling(), collector.Validation())
	}

	ctx := cmd.Context()
	accepted, exhausted := 0, 0

	for i := 0; i < sampleFlags.count; i++ {
		outcome, err := sampler.Sample(ctx, sampleFlags.prompt, sch)
		if err != nil {
			return fmt.Errorf("sampling aborted after %d accepted records: %w", accepted, err)
		}
		if outcome.Exhausted {
			exhausted++
			continue
		}

		sample := dataset.NewSample(sch.Name(), sampleFlags.prompt, outcome.Record, outcome.Attempts)
		if err := store.Write(ctx, sample); err != nil {
			return fmt.Errorf("failed to persist sample: %w", err)
		}
		accepted++
	}

	total, err := store.Count(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("accepted %d of %d runs (%d exhausted), dataset now holds %d samples\n",
		accepted, sampleFlags.count, exhausted, total)
	if exhausted == sampleFlags.count {
		return fmt.Errorf("every sampling run exhausted its attempts")
	}
	return nil
}

// openStore builds the dataset sink selected by configuration.
func openStore(cfg *config.Config) (dataset.Store, error) {
	switch cfg.Dataset.Backend {
	case "sqlite":
		return dataset.NewSQLiteStore(dataset.SQLiteStoreConfig{
			Path:         cfg.Dataset.Path,
			MaxOpenConns: cfg.Dataset.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Dataset.SQLite.MaxIdleConns,
			BusyTimeout:  cfg.Dataset.SQLite.BusyTimeout,
		})
	default:
		return dataset.NewJSONLStore(cfg.Dataset.Path)
	}
}
