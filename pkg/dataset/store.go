package dataset

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Sample is one accepted record produced by batch sampling. Only
// conforming records are written; rejected attempts never reach a
// store.
type Sample struct {
	// ID uniquely identifies the sample.
	ID string `json:"id"`

	// Schema is the schema name the record conformed to.
	Schema string `json:"schema"`

	// Prompt is the prompt that produced the record.
	Prompt string `json:"prompt"`

	// Record is the accepted record.
	Record map[string]any `json:"record"`

	// Attempts is how many sampling attempts the record cost.
	Attempts int `json:"attempts"`

	// CreatedAt is when the sample was accepted.
	CreatedAt time.Time `json:"created_at"`
}

// NewSample builds a sample with a fresh ID and timestamp.
func NewSample(schemaName, prompt string, record map[string]any, attempts int) *Sample {
	return &Sample{
		ID:        uuid.New().String(),
		Schema:    schemaName,
		Prompt:    prompt,
		Record:    record,
		Attempts:  attempts,
		CreatedAt: time.Now().UTC(),
	}
}

// Store persists accepted samples.
type Store interface {
	// Write persists one sample.
	Write(ctx context.Context, sample *Sample) error

	// Count returns how many samples the store holds.
	Count(ctx context.Context) (int64, error)

	// Close flushes and releases the store.
	Close() error
}
