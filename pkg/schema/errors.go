package schema

import "fmt"

// LoadError reports a schema document that is absent, malformed, or
// references types outside the fixed primitive set. It is fatal at
// initialization time and never recovered from at runtime.
type LoadError struct {
	// Path is the schema document path ("" for in-memory sources).
	Path string

	// Reason describes what is wrong with the document.
	Reason string

	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("schema load failed for %q: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("schema load failed: %s", e.Reason)
}

// Unwrap returns the underlying error for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// loadErrf builds a *LoadError with a formatted reason.
func loadErrf(path string, format string, args ...any) *LoadError {
	return &LoadError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
