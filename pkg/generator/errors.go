package generator

import (
	"fmt"
	"time"
)

// UnavailableError reports a non-retriable transport-level failure of
// the generator backend: authentication rejection, connection refused
// after retries, or an explicit unavailable signal. The sampler and
// gateway surface it immediately instead of burning remaining attempts.
type UnavailableError struct {
	// Generator is the name of the generator that is unavailable.
	Generator string

	// Message describes the failure.
	Message string

	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	return fmt.Sprintf("generator %q unavailable: %s", e.Generator, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// RequestError reports a failed generation request that is retriable at
// the attempt level: the sampler counts it as a failed attempt and
// moves on.
type RequestError struct {
	// Generator is the name of the generator that returned the error.
	Generator string

	// StatusCode is the HTTP status code (0 if not applicable).
	StatusCode int

	// Message is the error message.
	Message string

	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("generator %q error (status %d): %s", e.Generator, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("generator %q error: %s", e.Generator, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// TimeoutError reports a generation request that exceeded its timeout.
// Timeouts are treated as failed attempts, not as unavailability.
type TimeoutError struct {
	// Generator is the name of the generator where the timeout occurred.
	Generator string

	// Timeout is the configured timeout duration.
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("generator %q request timeout after %s", e.Generator, e.Timeout)
}
