// Package generatortest provides a scripted generator for tests.
package generatortest

import (
	"context"
	"sync"
)

// Mock is a scripted Generator. Each Generate call consumes the next
// step; when the script runs out the last step repeats.
type Mock struct {
	mu    sync.Mutex
	steps []Step
	calls int

	// Prompts records every prompt received, in order.
	Prompts []string

	// NameValue is returned by Name (default "mock").
	NameValue string

	// HealthErr is returned by HealthCheck.
	HealthErr error

	// Closed reports whether Close was called.
	Closed bool
}

// Step is one scripted response.
type Step struct {
	Text string
	Err  error
}

// New creates a mock that replays the given steps.
func New(steps ...Step) *Mock {
	return &Mock{steps: steps}
}

// Respond creates a mock that always returns the same text.
func Respond(text string) *Mock {
	return New(Step{Text: text})
}

// Fail creates a mock that always returns the same error.
func Fail(err error) *Mock {
	return New(Step{Err: err})
}

// Generate implements generator.Generator.
func (m *Mock) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)

	if len(m.steps) == 0 {
		m.calls++
		return "", nil
	}

	i := m.calls
	if i >= len(m.steps) {
		i = len(m.steps) - 1
	}
	m.calls++

	step := m.steps[i]
	return step.Text, step.Err
}

// Calls returns how many times Generate was invoked.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Name implements generator.Generator.
func (m *Mock) Name() string {
	if m.NameValue == "" {
		return "mock"
	}
	return m.NameValue
}

// HealthCheck implements generator.Generator.
func (m *Mock) HealthCheck(ctx context.Context) error {
	return m.HealthErr
}

// Close implements generator.Generator.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}
