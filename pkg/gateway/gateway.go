package gateway

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"ontoguard-hq/ontoguard/pkg/generator"
	"ontoguard-hq/ontoguard/pkg/sampling"
	"ontoguard-hq/ontoguard/pkg/schema"
	"ontoguard-hq/ontoguard/pkg/telemetry/logging"
	"ontoguard-hq/ontoguard/pkg/telemetry/metrics"
	"ontoguard-hq/ontoguard/pkg/validate"
)

// State is the gateway lifecycle state. Per-request processing never
// changes it; only initialization does.
type State int32

const (
	// StateUninitialized is the state before a schema is loaded.
	StateUninitialized State = iota

	// StateSchemaLoaded means a schema is loaded but serving has not
	// been enabled yet.
	StateSchemaLoaded

	// StateReady means the gateway accepts requests.
	StateReady

	// StateFailed means schema loading failed during initialization.
	// The state is terminal; the gateway never reaches Ready.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSchemaLoaded:
		return "schema_loaded"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// ErrNotReady is returned by Handle before the gateway reaches Ready.
var ErrNotReady = errors.New("gateway is not ready")

// Config configures the runtime validation gateway.
type Config struct {
	// FailClosed selects the enforcement posture. When true, invalid
	// ingress short-circuits without calling the generator and invalid
	// egress is flagged on the response. When false, both checks are
	// observational: violations are logged and the request proceeds.
	FailClosed bool

	// MaxValidationErrors caps accumulated violations per check
	// (default 10).
	MaxValidationErrors int
}

// Response is the outcome of one gateway request. Egress validation
// failures are always returned as data on the response, never as a
// server error; only ingress failures under FailClosed short-circuit.
type Response struct {
	// Record is the structured generator response. Raw text that could
	// not be parsed is wrapped as {"text": raw}.
	Record map[string]any `json:"response"`

	// Valid reports the egress validation outcome (false for an
	// ingress rejection).
	Valid bool `json:"valid"`

	// Violations and Warnings carry the validation findings.
	Violations []string `json:"violations,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`

	// IngressRejected is true when the request itself failed validation
	// under FailClosed and the generator was never called.
	IngressRejected bool `json:"ingress_rejected,omitempty"`

	// FlaggedInvalid marks an egress validation failure under
	// FailClosed. The generated response is still returned.
	FlaggedInvalid bool `json:"flagged_invalid,omitempty"`
}

// Gateway validates requests on the way in and generated responses on
// the way out. It supports concurrent in-flight requests; the schema is
// swapped atomically on reload and each request works against the
// snapshot it loaded.
type Gateway struct {
	config     Config
	gen        generator.Generator
	eval       *validate.Evaluator
	logger     *logging.Logger
	validation *metrics.ValidationMetrics

	schema atomic.Pointer[schema.Schema]
	state  atomic.Int32
}

// New creates an uninitialized gateway. The generator may be nil for
// validate-only deployments; Handle then rejects requests that reach
// the generation step.
func New(config Config, gen generator.Generator, logger *logging.Logger) *Gateway {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Gateway{
		config: config,
		gen:    gen,
		eval:   validate.NewEvaluator(validate.Options{MaxErrors: config.MaxValidationErrors}),
		logger: logger,
	}
}

// SetMetrics attaches the validation metric group, recording every
// ingress and egress check. Must be called before serving starts; a
// nil group leaves the gateway uninstrumented.
func (g *Gateway) SetMetrics(vm *metrics.ValidationMetrics) {
	g.validation = vm
}

// LoadSchema loads the schema document and moves the gateway from
// Uninitialized to SchemaLoaded. A load failure is terminal: the
// gateway enters Failed and never reaches Ready.
func (g *Gateway) LoadSchema(path string) error {
	s, err := schema.Load(path)
	if err != nil {
		g.state.Store(int32(StateFailed))
		g.logger.Error("schema load failed", "path", path, "error", err)
		return err
	}

	g.schema.Store(s)
	g.state.Store(int32(StateSchemaLoaded))
	g.logger.Info("schema loaded",
		"path", path,
		"schema", s.Name(),
		"entities", len(s.EntityNames()),
	)
	return nil
}

// SetSchema injects an already-built schema, for embedders that do not
// load from a file.
func (g *Gateway) SetSchema(s *schema.Schema) {
	g.schema.Store(s)
	g.state.Store(int32(StateSchemaLoaded))
}

// Ready enables serving. It fails unless a schema has been loaded.
func (g *Gateway) Ready() error {
	if State(g.state.Load()) != StateSchemaLoaded {
		return fmt.Errorf("cannot enable serving from state %q", g.State())
	}
	g.state.Store(int32(StateReady))
	g.logger.Info("gateway ready", "fail_closed", g.config.FailClosed)
	return nil
}

// State returns the current lifecycle state.
func (g *Gateway) State() State {
	return State(g.state.Load())
}

// Schema returns the current schema snapshot (nil before load).
func (g *Gateway) Schema() *schema.Schema {
	return g.schema.Load()
}

// ReloadSchema swaps in a freshly loaded schema document. In-flight
// requests keep the snapshot they started with. Unlike LoadSchema, a
// reload failure is not terminal: the previous schema stays active.
func (g *Gateway) ReloadSchema(path string) error {
	s, err := schema.Load(path)
	if err != nil {
		g.logger.Error("schema reload failed, keeping previous schema",
			"path", path,
			"error", err,
		)
		return err
	}

	g.schema.Store(s)
	g.logger.Info("schema reloaded",
		"path", path,
		"schema", s.Name(),
		"entities", len(s.EntityNames()),
	)
	return nil
}

// Handle processes one request: ingress validation, generation, egress
// validation. The returned error is reserved for the gateway not being
// ready and for generator transport failures; every validation outcome
// is data on the Response.
func (g *Gateway) Handle(ctx context.Context, record map[string]any) (*Response, error) {
	if g.State() != StateReady {
		return nil, ErrNotReady
	}
	sch := g.schema.Load()

	ingressStart := time.Now()
	ingress := g.eval.Validate(record, sch)
	g.observeValidation(metrics.SurfaceIngress, ingress, time.Since(ingressStart))
	if !ingress.Valid {
		if g.config.FailClosed {
			g.logger.Info("request rejected at ingress",
				"violations", len(ingress.Violations),
			)
			return &Response{
				Violations:      ingress.Violations,
				Warnings:        ingress.Warnings,
				IngressRejected: true,
			}, nil
		}
		g.logger.Warn("invalid request admitted (fail-open)",
			"violations", ingress.Violations,
		)
	}

	if g.gen == nil {
		return nil, &generator.UnavailableError{
			Generator: "none",
			Message:   "no generator attached",
		}
	}

	raw, err := g.gen.Generate(ctx, formatPrompt(record))
	if err != nil {
		return nil, err
	}

	out, extractErr := sampling.Extract(raw)
	if extractErr != nil {
		// Unstructured output is still a response; wrap it so egress
		// validation has a record to judge.
		out = map[string]any{"text": raw}
	}

	egressStart := time.Now()
	egress := g.eval.Validate(out, sch)
	g.observeValidation(metrics.SurfaceEgress, egress, time.Since(egressStart))
	resp := &Response{
		Record:     out,
		Valid:      egress.Valid,
		Violations: egress.Violations,
		Warnings:   egress.Warnings,
	}

	if !egress.Valid {
		if g.config.FailClosed {
			resp.FlaggedInvalid = true
			g.logger.Info("response flagged invalid at egress",
				"violations", len(egress.Violations),
			)
		} else {
			g.logger.Warn("invalid response observed (fail-open)",
				"violations", egress.Violations,
			)
		}
	}

	return resp, nil
}

// observeValidation records one validation outcome when metrics are
// attached.
func (g *Gateway) observeValidation(surface string, result *validate.Result, elapsed time.Duration) {
	if g.validation != nil {
		g.validation.Record(surface, result.Valid, len(result.Violations), elapsed)
	}
}

// formatPrompt renders a request record as "key: value" lines in sorted
// key order, so identical records produce identical prompts.
func formatPrompt(record map[string]any) string {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %v\n", k, record[k])
	}
	return b.String()
}
