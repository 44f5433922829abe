package sampling

// Predicate is a caller-supplied record check. Returning false rejects
// the record. A panic inside a predicate is caught by the sampler and
// converted into a single violation, never propagated.
type Predicate func(record map[string]any) bool

// Config configures the rejection sampling loop.
type Config struct {
	// MaxAttempts bounds the generate-validate-retry loop (default 10).
	MaxAttempts int

	// RejectionThreshold is reserved for confidence gating. It is part
	// of the configuration surface but unused by the core loop.
	RejectionThreshold float64

	// EnableSchemaValidation runs structural validation on each
	// extracted record.
	EnableSchemaValidation bool

	// EnableExpressionConstraints runs schema-level expression
	// constraints on each extracted record.
	EnableExpressionConstraints bool

	// EnableCustomValidators runs the registered predicates on each
	// extracted record, in registration order.
	EnableCustomValidators bool

	// CustomValidators are the registered predicates. Ignored unless
	// EnableCustomValidators is set.
	CustomValidators []Predicate

	// MaxValidationErrors caps accumulated violations per attempt
	// (default 10).
	MaxValidationErrors int
}

// DefaultConfig returns the configuration used when callers do not
// override anything: ten attempts with every validation layer enabled.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:                 10,
		EnableSchemaValidation:      true,
		EnableExpressionConstraints: true,
		EnableCustomValidators:      true,
	}
}

// applyDefaults fills zero values with defaults.
func (c *Config) applyDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 10
	}
}
