package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ontoguard-hq/ontoguard/pkg/schema"
)

var lintFlags struct {
	file   string
	strict bool
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Lint a schema document",
	Long: `Parse a schema document and report structural problems: empty
entities, duplicate enum values, defaults that violate their own field
spec and constraints referencing unknown fields or using unrecognized
expressions.

Examples:
  # Lint a schema
  ontoguard lint --file person.schema.json

  # Strict mode (warnings fail the lint)
  ontoguard lint --file person.schema.json --strict

  # JSON output for CI
  ontoguard lint --file person.schema.json --format json`,
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "schema document to lint (required)")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
	_ = lintCmd.MarkFlagRequired("file")
}

func runLint(cmd *cobra.Command, args []string) error {
	s, err := schema.Load(lintFlags.file)
	if err != nil {
		return fmt.Errorf("schema failed to parse: %w", err)
	}

	findings := schema.Lint(s)

	errorCount, warningCount := 0, 0
	for _, f := range findings {
		if f.Severity == schema.SeverityError {
			errorCount++
		} else {
			warningCount++
		}
	}

	switch lintFlags.format {
	case "json":
		out, err := json.MarshalIndent(map[string]any{
			"schema":   s.Name(),
			"findings": findings,
			"errors":   errorCount,
			"warnings": warningCount,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		if len(findings) == 0 {
			fmt.Printf("%s: clean\n", s.Name())
		}
		for _, f := range findings {
			fmt.Println(f.String())
		}
	}

	if errorCount > 0 || (lintFlags.strict && warningCount > 0) {
		os.Exit(1)
	}
	return nil
}
