package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ontoguard-hq/ontoguard/pkg/schema"
	"ontoguard-hq/ontoguard/pkg/validate"
)

var validateFlags struct {
	schemaPath string
	recordPath string
	maxErrors  int
	format     string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a record against a schema",
	Long: `Validate a structured record against a schema document.

The record is read from the file given with --record, or from stdin
when --record is "-". The command exits non-zero when the record is
invalid, making it suitable for CI pipelines.

Examples:
  # Validate a record file
  ontoguard validate --schema person.schema.json --record person.json

  # Validate from stdin
  echo '{"name":"Ada","age":36,"status":"active"}' | \
    ontoguard validate --schema person.schema.json --record -

  # JSON output
  ontoguard validate --schema person.schema.json --record person.json --format json`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.schemaPath, "schema", "s", "", "schema document path (required)")
	validateCmd.Flags().StringVarP(&validateFlags.recordPath, "record", "r", "-", "record file path, or - for stdin")
	validateCmd.Flags().IntVar(&validateFlags.maxErrors, "max-errors", 0, "cap on reported violations (default 10)")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
	_ = validateCmd.MarkFlagRequired("schema")
}

func runValidate(cmd *cobra.Command, args []string) error {
	s, err := schema.Load(validateFlags.schemaPath)
	if err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}

	var data []byte
	if validateFlags.recordPath == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(validateFlags.recordPath)
	}
	if err != nil {
		return fmt.Errorf("failed to read record: %w", err)
	}

	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("record is not a JSON object: %w", err)
	}

	evaluator := validate.NewEvaluator(validate.Options{MaxErrors: validateFlags.maxErrors})
	result := evaluator.Validate(record, s)

	switch validateFlags.format {
	case "json":
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		if result.Valid {
			fmt.Println("valid")
		} else {
			fmt.Println("invalid")
			for _, v := range result.Violations {
				fmt.Printf("  violation: %s\n", v)
			}
		}
		for _, w := range result.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
	}

	if !result.Valid {
		// Distinguish "invalid record" from operational failures.
		os.Exit(1)
	}
	return nil
}
