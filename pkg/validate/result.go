package validate

// Result is the outcome of validating one record against a schema.
// It is created fresh per validation call and never mutated after
// return. A record that fails validation is represented as data here,
// never as an error.
type Result struct {
	// Valid is true when no structural violation and no error-severity
	// constraint failure was recorded.
	Valid bool

	// Violations lists rejection reasons in evaluation order:
	// structural violations first, then error-severity constraint
	// failures. Capped at Options.MaxErrors.
	Violations []string

	// Warnings lists non-rejecting findings in evaluation order:
	// warning/info-severity constraint failures and constraints whose
	// expression is outside the recognized grammar.
	Warnings []string
}

// Merge combines results in order into a fresh Result. The merged
// result is valid only when every input is valid.
func Merge(results ...*Result) *Result {
	merged := &Result{Valid: true}
	for _, r := range results {
		if r == nil {
			continue
		}
		merged.Violations = append(merged.Violations, r.Violations...)
		merged.Warnings = append(merged.Warnings, r.Warnings...)
		if !r.Valid {
			merged.Valid = false
		}
	}
	return merged
}

// collector accumulates violations up to a cap.
type collector struct {
	violations []string
	warnings   []string
	maxErrors  int
}

// full reports whether the violation cap has been reached.
func (c *collector) full() bool {
	return c.maxErrors > 0 && len(c.violations) >= c.maxErrors
}

// violation records a violation unless the cap has been reached.
func (c *collector) violation(msg string) {
	if c.full() {
		return
	}
	c.violations = append(c.violations, msg)
}

// warning records a non-rejecting finding. Warnings are not capped.
func (c *collector) warning(msg string) {
	c.warnings = append(c.warnings, msg)
}

// result freezes the collector into a Result.
func (c *collector) result() *Result {
	return &Result{
		Valid:      len(c.violations) == 0,
		Violations: c.violations,
		Warnings:   c.warnings,
	}
}
