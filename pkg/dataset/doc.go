// Package dataset persists accepted samples from batch sampling runs.
// Two sinks are provided: an append-only JSONL file for line-oriented
// training pipelines and a SQLite database for queryable datasets.
// Rejected attempts are never written; the stores only ever see records
// that passed validation.
package dataset
