package sampling

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"ontoguard-hq/ontoguard/internal/generatortest"
	"ontoguard-hq/ontoguard/pkg/config"
	"ontoguard-hq/ontoguard/pkg/generator"
	"ontoguard-hq/ontoguard/pkg/schema"
	"ontoguard-hq/ontoguard/pkg/telemetry/metrics"
)

const samplerSchemaDoc = `
name: person
entities:
  Person:
    fields:
      name: string
      age:
        type: int
        range: [0, 150]
`

func samplerSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Parse([]byte(samplerSchemaDoc), "person.yaml")
	if err != nil {
		t.Fatalf("schema.Parse() error = %v", err)
	}
	return s
}

func TestSampleAcceptsFirstAttempt(t *testing.T) {
	mock := generatortest.Respond(`{"name": "Ada", "age": 36}`)
	s := New(mock, DefaultConfig(), nil)

	outcome, err := s.Sample(context.Background(), "generate a person", samplerSchema(t))
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if !outcome.Result.Valid || outcome.Exhausted {
		t.Fatalf("outcome = %+v, want accepted", outcome)
	}
	if outcome.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", outcome.Attempts)
	}
	if mock.Calls() != 1 {
		t.Errorf("generator called %d times, want 1", mock.Calls())
	}
	if outcome.Record["name"] != "Ada" {
		t.Errorf("Record = %v", outcome.Record)
	}
}

func TestSampleRetriesUntilConforming(t *testing.T) {
	mock := generatortest.New(
		generatortest.Step{Text: "no json here"},
		generatortest.Step{Text: `{"name": "Ada", "age": 200}`},
		generatortest.Step{Text: `{"name": "Ada", "age": 36}`},
	)
	cfg := DefaultConfig()
	cfg.MaxAttempts = 5
	s := New(mock, cfg, nil)

	outcome, err := s.Sample(context.Background(), "p", samplerSchema(t))
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if !outcome.Result.Valid {
		t.Fatalf("violations = %v", outcome.Result.Violations)
	}
	if outcome.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", outcome.Attempts)
	}
	if mock.Calls() != 3 {
		t.Errorf("generator called %d times, acceptance must stop the loop", mock.Calls())
	}
}

func TestSampleExhaustionReturnsLastAttempt(t *testing.T) {
	mock := generatortest.Respond(`{"name": "Ada", "age": 200}`)
	cfg := DefaultConfig()
	cfg.MaxAttempts = 3
	s := New(mock, cfg, nil)

	outcome, err := s.Sample(context.Background(), "p", samplerSchema(t))
	if err != nil {
		t.Fatalf("exhaustion must not be an error, got %v", err)
	}
	if !outcome.Exhausted || outcome.Result.Valid {
		t.Fatalf("outcome = %+v, want exhausted", outcome)
	}
	if outcome.Attempts != 3 || mock.Calls() != 3 {
		t.Errorf("Attempts = %d, Calls = %d, want 3 and 3", outcome.Attempts, mock.Calls())
	}
	if outcome.Record == nil {
		t.Error("Record = nil, exhaustion keeps the last extracted record")
	}
	joined := strings.Join(outcome.Result.Violations, "\n")
	if !strings.Contains(joined, "outside range") {
		t.Errorf("violations = %v", outcome.Result.Violations)
	}
}

func TestSampleUnparseableOutputExhausts(t *testing.T) {
	mock := generatortest.Respond("not structured at all")
	cfg := DefaultConfig()
	cfg.MaxAttempts = 3
	s := New(mock, cfg, nil)

	outcome, err := s.Sample(context.Background(), "p", samplerSchema(t))
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if !outcome.Exhausted || outcome.Record != nil {
		t.Fatalf("outcome = %+v, want exhausted with nil record", outcome)
	}
	if mock.Calls() != 3 {
		t.Errorf("generator called %d times, want exactly 3", mock.Calls())
	}
	joined := strings.Join(outcome.Result.Violations, "\n")
	if !strings.Contains(joined, "record extraction failed") {
		t.Errorf("violations = %v", outcome.Result.Violations)
	}
}

func TestSampleUnavailableAborts(t *testing.T) {
	unavailable := &generator.UnavailableError{Generator: "mock", Message: "backend down"}
	mock := generatortest.Fail(unavailable)
	cfg := DefaultConfig()
	cfg.MaxAttempts = 5
	s := New(mock, cfg, nil)

	outcome, err := s.Sample(context.Background(), "p", samplerSchema(t))
	if outcome != nil {
		t.Errorf("outcome = %+v, want nil", outcome)
	}
	var got *generator.UnavailableError
	if !errors.As(err, &got) {
		t.Fatalf("error = %v, want *generator.UnavailableError", err)
	}
	if mock.Calls() != 1 {
		t.Errorf("generator called %d times, unavailability must short-circuit", mock.Calls())
	}
}

func TestSampleTransientErrorConsumesAttempt(t *testing.T) {
	mock := generatortest.New(
		generatortest.Step{Err: &generator.RequestError{Generator: "mock", StatusCode: 429, Message: "rate limited"}},
		generatortest.Step{Text: `{"name": "Ada", "age": 36}`},
	)
	s := New(mock, DefaultConfig(), nil)

	outcome, err := s.Sample(context.Background(), "p", samplerSchema(t))
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if !outcome.Result.Valid || outcome.Attempts != 2 {
		t.Errorf("outcome = %+v, want acceptance on attempt 2", outcome)
	}
}

func TestSampleCustomValidators(t *testing.T) {
	record := `{"name": "Ada", "age": 36}`

	t.Run("rejecting predicate", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxAttempts = 2
		cfg.CustomValidators = []Predicate{
			func(r map[string]any) bool { return false },
		}
		s := New(generatortest.Respond(record), cfg, nil)

		outcome, err := s.Sample(context.Background(), "p", samplerSchema(t))
		if err != nil {
			t.Fatalf("Sample() error = %v", err)
		}
		if !outcome.Exhausted {
			t.Fatal("predicate rejection must exhaust the loop")
		}
		joined := strings.Join(outcome.Result.Violations, "\n")
		if !strings.Contains(joined, "custom validator 0 rejected record") {
			t.Errorf("violations = %v", outcome.Result.Violations)
		}
	})

	t.Run("panicking predicate becomes violation", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxAttempts = 1
		cfg.CustomValidators = []Predicate{
			func(r map[string]any) bool { panic("boom") },
		}
		s := New(generatortest.Respond(record), cfg, nil)

		outcome, err := s.Sample(context.Background(), "p", samplerSchema(t))
		if err != nil {
			t.Fatalf("a predicate panic must not propagate, got %v", err)
		}
		joined := strings.Join(outcome.Result.Violations, "\n")
		if !strings.Contains(joined, "custom validator 0 fault: boom") {
			t.Errorf("violations = %v", outcome.Result.Violations)
		}
	})

	t.Run("disabled layer skips predicates", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.EnableCustomValidators = false
		cfg.CustomValidators = []Predicate{
			func(r map[string]any) bool { return false },
		}
		s := New(generatortest.Respond(record), cfg, nil)

		outcome, err := s.Sample(context.Background(), "p", samplerSchema(t))
		if err != nil {
			t.Fatalf("Sample() error = %v", err)
		}
		if !outcome.Result.Valid {
			t.Errorf("violations = %v, disabled predicates must not run", outcome.Result.Violations)
		}
	})
}

func TestSampleDisabledSchemaValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableSchemaValidation = false
	cfg.EnableExpressionConstraints = false
	s := New(generatortest.Respond(`{"anything": "goes"}`), cfg, nil)

	outcome, err := s.Sample(context.Background(), "p", samplerSchema(t))
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if !outcome.Result.Valid || outcome.Attempts != 1 {
		t.Errorf("outcome = %+v, want first-attempt acceptance", outcome)
	}
}

func TestSampleCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := generatortest.Respond(`{"name": "Ada", "age": 36}`)
	s := New(mock, DefaultConfig(), nil)

	outcome, err := s.Sample(ctx, "p", samplerSchema(t))
	if err != nil {
		t.Fatalf("context expiry must not be an error, got %v", err)
	}
	if !outcome.Exhausted || outcome.Attempts != 0 {
		t.Errorf("outcome = %+v, want zero completed attempts", outcome)
	}
	if mock.Calls() != 0 {
		t.Errorf("generator called %d times after cancellation", mock.Calls())
	}
}

func TestSampleRecordsMetrics(t *testing.T) {
	collector := metrics.NewCollector(&config.MetricsConfig{}, nil)
	attach := func(s *Sampler) *Sampler {
		s.SetMetrics(collector.Sampling(), collector.Validation())
		return s
	}

	// Accepted on the third attempt: one unparseable, one invalid.
	accepted := attach(New(generatortest.New(
		generatortest.Step{Text: "no json here"},
		generatortest.Step{Text: `{"name": "Ada", "age": 200}`},
		generatortest.Step{Text: `{"name": "Ada", "age": 36}`},
	), DefaultConfig(), nil))
	if _, err := accepted.Sample(context.Background(), "p", samplerSchema(t)); err != nil {
		t.Fatalf("Sample() error = %v", err)
	}

	cfg := DefaultConfig()
	cfg.MaxAttempts = 2
	exhausted := attach(New(generatortest.Respond(`{"name": "Ada", "age": 200}`), cfg, nil))
	if _, err := exhausted.Sample(context.Background(), "p", samplerSchema(t)); err != nil {
		t.Fatalf("Sample() error = %v", err)
	}

	down := attach(New(generatortest.Fail(
		&generator.UnavailableError{Generator: "mock", Message: "down"},
	), DefaultConfig(), nil))
	if _, err := down.Sample(context.Background(), "p", samplerSchema(t)); err == nil {
		t.Fatal("Sample() error = nil, want unavailable")
	}

	reg := collector.Registry()
	runs := []struct {
		outcome string
		want    float64
	}{
		{"accepted", 1},
		{"exhausted", 1},
		{"unavailable", 1},
	}
	for _, tc := range runs {
		got := samplingCounterValue(t, reg, "ontoguard_engine_sampling_runs_total", map[string]string{"outcome": tc.outcome})
		if got != tc.want {
			t.Errorf("sampling_runs_total{outcome=%q} = %v, want %v", tc.outcome, got, tc.want)
		}
	}
	if got := samplingCounterValue(t, reg, "ontoguard_engine_extraction_failures_total", nil); got != 1 {
		t.Errorf("extraction_failures_total = %v, want 1", got)
	}

	// Attempt validations land on the offline surface: one invalid and
	// one valid from the accepted run, two invalid from the exhausted run.
	if got := samplingCounterValue(t, reg, "ontoguard_engine_validations_total", map[string]string{"surface": "offline", "outcome": "invalid"}); got != 3 {
		t.Errorf("validations_total{surface=offline,outcome=invalid} = %v, want 3", got)
	}
	if got := samplingCounterValue(t, reg, "ontoguard_engine_validations_total", map[string]string{"surface": "offline", "outcome": "valid"}); got != 1 {
		t.Errorf("validations_total{surface=offline,outcome=valid} = %v, want 1", got)
	}
}

// samplingCounterValue reads one counter from the registry, matching
// the given label values. Missing series read as zero.
func samplingCounterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			got := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			matched := true
			for k, v := range labels {
				if got[k] != v {
					matched = false
					break
				}
			}
			if matched {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}
