package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ontoguard",
	Short: "Ontoguard - schema-constrained generation and validation engine",
	Long: `Ontoguard validates structured records against a declarative schema and
constrains external generators to produce only conforming output.

It provides:
  - Layered record validation: entity resolution, structural checks,
    expression constraints
  - Bounded rejection sampling around any HTTP completion backend
  - A runtime validation gateway with fail-open/fail-closed enforcement
  - Dataset sinks for accepted samples (JSONL, SQLite)`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
