package sampling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ontoguard-hq/ontoguard/pkg/generator"
	"ontoguard-hq/ontoguard/pkg/schema"
	"ontoguard-hq/ontoguard/pkg/telemetry/logging"
	"ontoguard-hq/ontoguard/pkg/telemetry/metrics"
	"ontoguard-hq/ontoguard/pkg/validate"
)

// Outcome is the result of one sampling call. The caller distinguishes
// success from exhaustion via Result.Valid and Exhausted, never via an
// error: exhaustion hands back the last attempt as-is.
type Outcome struct {
	// Record is the last extracted record (nil when every attempt was
	// unparseable).
	Record map[string]any

	// Result is the validation outcome of the last attempt.
	Result *validate.Result

	// Attempts is how many attempts the loop consumed.
	Attempts int

	// Exhausted is true when no attempt produced a conforming record.
	Exhausted bool
}

// Sampler drives the generate-validate-retry loop: invoke the
// generator, extract a record from its raw output, validate, accept or
// retry up to the attempt ceiling. A sampler holds no per-call state
// and is safe for concurrent use.
type Sampler struct {
	gen        generator.Generator
	eval       *validate.Evaluator
	config     Config
	logger     *logging.Logger
	metrics    *metrics.SamplingMetrics
	validation *metrics.ValidationMetrics
}

// New creates a sampler around a generator.
func New(gen generator.Generator, config Config, logger *logging.Logger) *Sampler {
	config.applyDefaults()
	if logger == nil {
		logger = logging.Nop()
	}
	return &Sampler{
		gen:    gen,
		eval:   validate.NewEvaluator(validate.Options{MaxErrors: config.MaxValidationErrors}),
		config: config,
		logger: logger,
	}
}

// SetMetrics attaches the sampling and validation metric groups. Runs
// are counted by outcome, unparseable attempts individually, and each
// attempt's validation on the offline surface. Either group may be
// nil. Must be called before Sample.
func (s *Sampler) SetMetrics(sm *metrics.SamplingMetrics, vm *metrics.ValidationMetrics) {
	s.metrics = sm
	s.validation = vm
}

// Sample runs the rejection loop for one prompt against one schema.
//
// Attempts run sequentially. A generation fault or unparseable output
// counts as a failed attempt and the loop continues; only a
// *generator.UnavailableError aborts the call, surfaced as the returned
// error without consuming remaining attempts. Context expiry between
// attempts ends the loop in the exhaustion shape, returning the most
// recent completed attempt. The generator is invoked without any lock
// held.
func (s *Sampler) Sample(ctx context.Context, prompt string, sch *schema.Schema) (*Outcome, error) {
	last := &Outcome{
		Result:    &validate.Result{Valid: false, Violations: []string{"no attempts completed"}},
		Exhausted: true,
	}

	for attempt := 1; attempt <= s.config.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			s.logger.Warn("sampling cut short by context",
				"attempts_completed", last.Attempts,
				"error", ctx.Err(),
			)
			s.recordRun(metrics.OutcomeExhausted, last.Attempts)
			return last, nil
		}

		raw, err := s.gen.Generate(ctx, prompt)
		if err != nil {
			var unavailable *generator.UnavailableError
			if errors.As(err, &unavailable) {
				s.recordRun(metrics.OutcomeUnavailable, attempt)
				return nil, err
			}
			last = failedAttempt(attempt, nil, fmt.Sprintf("generation failed: %v", err))
			s.logger.Debug("attempt rejected", "attempt", attempt, "reason", "generation error", "error", err)
			continue
		}

		record, err := Extract(raw)
		if err != nil {
			if s.metrics != nil {
				s.metrics.RecordExtractionFailure()
			}
			last = failedAttempt(attempt, nil, err.Error())
			s.logger.Debug("attempt rejected", "attempt", attempt, "reason", "unparseable output")
			continue
		}

		result := s.validateAttempt(record, sch)
		if result.Valid {
			s.logger.Debug("record accepted", "attempt", attempt)
			s.recordRun(metrics.OutcomeAccepted, attempt)
			return &Outcome{Record: record, Result: result, Attempts: attempt}, nil
		}

		last = &Outcome{Record: record, Result: result, Attempts: attempt, Exhausted: true}
		s.logger.Debug("attempt rejected",
			"attempt", attempt,
			"violations", len(result.Violations),
		)
	}

	s.logger.Info("sampling exhausted",
		"max_attempts", s.config.MaxAttempts,
		"violations", len(last.Result.Violations),
	)
	s.recordRun(metrics.OutcomeExhausted, last.Attempts)
	return last, nil
}

// recordRun captures a completed run when metrics are attached.
func (s *Sampler) recordRun(outcome string, attempts int) {
	if s.metrics != nil {
		s.metrics.RecordRun(outcome, attempts)
	}
}

// validateAttempt merges every enabled validation layer into one result.
func (s *Sampler) validateAttempt(record map[string]any, sch *schema.Schema) *validate.Result {
	start := time.Now()
	var results []*validate.Result

	if s.config.EnableSchemaValidation {
		results = append(results, s.eval.ValidateStructural(record, sch))
	}
	if s.config.EnableExpressionConstraints {
		results = append(results, s.eval.ValidateExpressions(record, sch))
	}
	if s.config.EnableCustomValidators {
		for i, pred := range s.config.CustomValidators {
			results = append(results, runPredicate(i, pred, record))
		}
	}

	merged := validate.Merge(results...)
	if s.validation != nil {
		s.validation.Record(metrics.SurfaceOffline, merged.Valid, len(merged.Violations), time.Since(start))
	}
	return merged
}

// runPredicate executes one custom validator, converting a panic into a
// single violation.
func runPredicate(index int, pred Predicate, record map[string]any) (result *validate.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = &validate.Result{
				Violations: []string{fmt.Sprintf("custom validator %d fault: %v", index, r)},
			}
		}
	}()

	if pred == nil || pred(record) {
		return &validate.Result{Valid: true}
	}
	return &validate.Result{
		Violations: []string{fmt.Sprintf("custom validator %d rejected record", index)},
	}
}

// failedAttempt builds the exhaustion-shaped outcome for an attempt
// that produced no record.
func failedAttempt(attempt int, record map[string]any, reason string) *Outcome {
	return &Outcome{
		Record:    record,
		Result:    &validate.Result{Violations: []string{reason}},
		Attempts:  attempt,
		Exhausted: true,
	}
}
