package gateway

import (
	"context"
	"fmt"

	"ontoguard-hq/ontoguard/pkg/schema"
)

// Aggregate is the gateway health report. Overall status is unhealthy
// only when the validator or the schema is broken; a failing generator
// is reported but does not flip the status, matching the fail-soft
// treatment of generation everywhere else.
type Aggregate struct {
	Status      string   `json:"status"`
	ValidatorOK bool     `json:"validator_ok"`
	SchemaOK    bool     `json:"schema_ok"`
	GeneratorOK bool     `json:"generator_ok"`
	Errors      []string `json:"errors,omitempty"`
}

// Healthy reports whether the aggregate status is healthy.
func (a *Aggregate) Healthy() bool {
	return a.Status == "healthy"
}

// CheckHealth combines a synthetic validation round-trip, a schema
// re-readability probe and, when a generator is attached, one live
// probe invocation.
func (g *Gateway) CheckHealth(ctx context.Context) *Aggregate {
	agg := &Aggregate{ValidatorOK: true, SchemaOK: true, GeneratorOK: true}

	sch := g.schema.Load()
	if sch == nil {
		agg.SchemaOK = false
		agg.ValidatorOK = false
		agg.Errors = append(agg.Errors, "no schema loaded")
	} else {
		if err := g.probeValidator(sch); err != nil {
			agg.ValidatorOK = false
			agg.Errors = append(agg.Errors, fmt.Sprintf("validator probe: %v", err))
		}
		if err := probeSchema(sch); err != nil {
			agg.SchemaOK = false
			agg.Errors = append(agg.Errors, fmt.Sprintf("schema probe: %v", err))
		}
	}

	if g.gen != nil {
		if err := g.gen.HealthCheck(ctx); err != nil {
			agg.GeneratorOK = false
			agg.Errors = append(agg.Errors, fmt.Sprintf("generator probe: %v", err))
		}
	}

	if agg.ValidatorOK && agg.SchemaOK {
		agg.Status = "healthy"
	} else {
		agg.Status = "unhealthy"
	}
	return agg
}

// probeValidator runs one synthetic validation round-trip and verifies
// the evaluator produces a well-formed result for a known-bad record.
func (g *Gateway) probeValidator(sch *schema.Schema) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("validator panicked: %v", r)
		}
	}()

	result := g.eval.Validate(map[string]any{}, sch)
	if result == nil {
		return fmt.Errorf("validator returned no result")
	}
	return nil
}

// probeSchema checks the schema is still usable and, when it was loaded
// from a file, that the file still parses.
func probeSchema(sch *schema.Schema) error {
	if len(sch.EntityNames()) == 0 {
		return fmt.Errorf("schema declares no entities")
	}
	if path := sch.SourcePath(); path != "" {
		if _, err := schema.Load(path); err != nil {
			return fmt.Errorf("schema document no longer readable: %w", err)
		}
	}
	return nil
}
