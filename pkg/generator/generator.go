package generator

import (
	"context"
	"time"
)

// Generator is the external generative producer the engine drives. The
// engine requires exactly one capability: turn a prompt into raw text,
// or signal a fatal-unavailable condition. Whether the backend is a
// local model server, a hosted API or a test double is invisible here.
//
// Implementations must respect context cancellation on Generate and
// must be safe for concurrent calls.
type Generator interface {
	// Generate produces raw text for a prompt. The text is NOT assumed
	// to be structured; record extraction is the caller's concern.
	//
	// Transient faults should be retried internally or returned as
	// ordinary errors (the sampler counts them as failed attempts).
	// A non-retriable transport fault must be returned as
	// *UnavailableError so callers can stop immediately.
	Generate(ctx context.Context, prompt string) (string, error)

	// Name returns the generator's configured name.
	Name() string

	// HealthCheck verifies the backend is reachable. It returns nil
	// when healthy or an error describing the problem.
	HealthCheck(ctx context.Context) error

	// Close releases underlying resources. After Close the generator
	// must not be used.
	Close() error
}

// Health is a point-in-time snapshot of a generator's health tracking.
type Health struct {
	// IsHealthy is the current circuit state.
	IsHealthy bool

	// LastCheck is when health was last updated.
	LastCheck time.Time

	// ConsecutiveFailures counts failures since the last success.
	ConsecutiveFailures int

	// LastError is the most recent failure (nil when healthy).
	LastError error

	// TotalRequests and FailedRequests count lifetime requests.
	TotalRequests  int64
	FailedRequests int64
}

// Func adapts a plain function to the Generator interface. Useful for
// wiring ad hoc backends and tests.
type Func func(ctx context.Context, prompt string) (string, error)

// Generate implements Generator.
func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Name implements Generator.
func (f Func) Name() string { return "func" }

// HealthCheck implements Generator. A function backend is always
// considered reachable.
func (f Func) HealthCheck(ctx context.Context) error { return nil }

// Close implements Generator.
func (f Func) Close() error { return nil }
