package validate

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"ontoguard-hq/ontoguard/pkg/constraint"
	"ontoguard-hq/ontoguard/pkg/schema"
)

// DiscriminantField is the record field that, when present and naming a
// declared entity, resolves the record's entity directly instead of
// trying each entity in schema order.
const DiscriminantField = "type"

// DefaultMaxErrors caps how many violations are accumulated per call.
const DefaultMaxErrors = 10

// Options configures a validation call.
type Options struct {
	// MaxErrors caps accumulated violations (default 10). Zero or
	// negative selects the default; warnings are never capped.
	MaxErrors int
}

// Evaluator checks candidate records against a schema. It holds no
// mutable state across calls and is safe for concurrent use; the same
// evaluator serves the rejection sampler and the runtime gateway.
type Evaluator struct {
	opts Options
}

// NewEvaluator creates an evaluator with the given options.
func NewEvaluator(opts Options) *Evaluator {
	if opts.MaxErrors <= 0 {
		opts.MaxErrors = DefaultMaxErrors
	}
	return &Evaluator{opts: opts}
}

// Validate runs the full validation pipeline in fixed order: entity
// resolution, structural checks against the resolved (or best
// candidate) entity, then schema-level expression constraints.
// Violations accumulate; evaluation never short-circuits before the
// MaxErrors cap. Validation failure is data, never an error.
func (e *Evaluator) Validate(record map[string]any, s *schema.Schema) *Result {
	c := &collector{maxErrors: e.opts.MaxErrors}
	e.validateStructuralInto(c, record, s)
	e.validateExpressionsInto(c, record, s)
	return c.result()
}

// ValidateStructural runs only entity resolution and structural checks.
func (e *Evaluator) ValidateStructural(record map[string]any, s *schema.Schema) *Result {
	c := &collector{maxErrors: e.opts.MaxErrors}
	e.validateStructuralInto(c, record, s)
	return c.result()
}

// ValidateExpressions runs only the schema-level expression constraints.
func (e *Evaluator) ValidateExpressions(record map[string]any, s *schema.Schema) *Result {
	c := &collector{maxErrors: e.opts.MaxErrors}
	e.validateExpressionsInto(c, record, s)
	return c.result()
}

func (e *Evaluator) validateStructuralInto(c *collector, record map[string]any, s *schema.Schema) {
	ent, viaDiscriminant, matched := resolveEntity(record, s)
	if ent == nil {
		c.violation("no entity matched")
		return
	}
	if !matched && !viaDiscriminant {
		c.violation(fmt.Sprintf("no entity matched; closest candidate is %q", ent.Name()))
	}

	// The discriminant field resolved the entity; it is not an unknown
	// field even when the entity does not declare it.
	var ignore map[string]bool
	if viaDiscriminant {
		ignore = map[string]bool{DiscriminantField: true}
	}

	checkEntity(c, record, ent, ignore)
}

func (e *Evaluator) validateExpressionsInto(c *collector, record map[string]any, s *schema.Schema) {
	for _, con := range s.Constraints() {
		rule, err := constraint.Parse(con.Expression)
		if err != nil {
			if errors.Is(err, constraint.ErrUnrecognized) {
				c.warning(fmt.Sprintf("unparseable constraint expression: %s", con.Expression))
				continue
			}
			c.warning(fmt.Sprintf("constraint expression %q: %v", con.Expression, err))
			continue
		}

		passed, applicable := rule.Eval(record)
		if !applicable || passed {
			continue
		}

		msg := con.Message
		if msg == "" {
			msg = con.Expression
		}
		if con.Severity == schema.SeverityError {
			c.violation(msg)
		} else {
			c.warning(msg)
		}
	}
}

// resolveEntity picks the entity a record is validated against.
// Returns (entity, viaDiscriminant, matched). When no entity accepts
// the record structurally, the candidate with the fewest violations is
// returned with matched = false; ties break in schema order.
func resolveEntity(record map[string]any, s *schema.Schema) (*schema.EntitySpec, bool, bool) {
	if name, ok := record[DiscriminantField].(string); ok {
		if ent, found := s.Entity(name); found {
			return ent, true, true
		}
	}

	var best *schema.EntitySpec
	bestCount := math.MaxInt

	for _, ent := range s.Entities() {
		probe := &collector{maxErrors: 0} // uncapped probe
		checkEntity(probe, record, ent, nil)
		n := len(probe.violations)
		if n == 0 {
			return ent, false, true
		}
		if n < bestCount {
			best, bestCount = ent, n
		}
	}

	return best, false, false
}

// checkEntity runs the structural checks of one entity in fixed order:
// required-field presence, unknown fields, then per-field type, enum,
// range and length checks.
func checkEntity(c *collector, record map[string]any, ent *schema.EntitySpec, ignore map[string]bool) {
	for _, name := range ent.FieldNames() {
		spec, _ := ent.Field(name)
		if !spec.Required {
			continue
		}
		if _, present := record[name]; !present {
			c.violation(fmt.Sprintf("missing required field: %s", name))
		}
	}

	// Record keys are sorted so repeated validations of the same record
	// report violations in identical order.
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if ignore[k] {
			continue
		}
		if _, declared := ent.Field(k); !declared {
			c.violation(fmt.Sprintf("unknown field: %s", k))
		}
	}

	for _, name := range ent.FieldNames() {
		value, present := record[name]
		if !present {
			continue
		}
		spec, _ := ent.Field(name)
		checkFieldValue(c, name, value, spec)
	}
}

// checkFieldValue checks one present field value against its spec.
func checkFieldValue(c *collector, name string, value any, spec schema.FieldSpec) {
	switch spec.Type {
	case schema.TypeString:
		str, ok := value.(string)
		if !ok {
			c.violation(fmt.Sprintf("field %q: expected string, got %s", name, typeName(value)))
			return
		}
		if len(spec.Enum) > 0 && !containsString(spec.Enum, str) {
			c.violation(fmt.Sprintf("field %q: value %q not in enum [%s]", name, str, strings.Join(spec.Enum, ", ")))
		}
		if spec.MinLength != nil && len(str) < *spec.MinLength {
			c.violation(fmt.Sprintf("field %q: length %d below minimum length %d", name, len(str), *spec.MinLength))
		}
		if spec.MaxLength != nil && len(str) > *spec.MaxLength {
			c.violation(fmt.Sprintf("field %q: length %d exceeds maximum length %d", name, len(str), *spec.MaxLength))
		}

	case schema.TypeInt:
		num, ok := intValue(value)
		if !ok {
			c.violation(fmt.Sprintf("field %q: expected int, got %s", name, typeName(value)))
			return
		}
		checkRange(c, name, num, spec.Range)

	case schema.TypeFloat:
		num, ok := floatValue(value)
		if !ok {
			c.violation(fmt.Sprintf("field %q: expected number, got %s", name, typeName(value)))
			return
		}
		checkRange(c, name, num, spec.Range)

	case schema.TypeBool:
		if _, ok := value.(bool); !ok {
			c.violation(fmt.Sprintf("field %q: expected bool, got %s", name, typeName(value)))
		}

	case schema.TypeList:
		items, ok := value.([]any)
		if !ok {
			c.violation(fmt.Sprintf("field %q: expected list, got %s", name, typeName(value)))
			return
		}
		for i, item := range items {
			if !matchesPrimitive(item, spec.Elem) {
				c.violation(fmt.Sprintf("field %q: element %d: expected %s, got %s", name, i, spec.Elem, typeName(item)))
			}
			if c.full() {
				return
			}
		}
	}
}

// checkRange enforces the inclusive [min, max] interval.
func checkRange(c *collector, name string, num float64, r *schema.Range) {
	if r == nil {
		return
	}
	if (r.Min != nil && num < *r.Min) || (r.Max != nil && num > *r.Max) {
		c.violation(fmt.Sprintf("field %q: value %s outside range %s", name, formatNumber(num), formatRange(r)))
	}
}

// matchesPrimitive checks a single value against a primitive type.
func matchesPrimitive(value any, t schema.PrimitiveType) bool {
	switch t {
	case schema.TypeString:
		_, ok := value.(string)
		return ok
	case schema.TypeInt:
		_, ok := intValue(value)
		return ok
	case schema.TypeFloat:
		_, ok := floatValue(value)
		return ok
	case schema.TypeBool:
		_, ok := value.(bool)
		return ok
	}
	return false
}

// intValue accepts Go ints and JSON numbers with integral values.
// Records usually arrive through encoding/json, which decodes every
// number as float64.
func intValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return n, true
		}
	}
	return 0, false
}

// floatValue accepts any numeric value. Bools are not numbers.
func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// typeName names a record value's type for violation messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case float64, float32, int, int64:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// formatNumber renders a number without a trailing ".0" for integral
// values, matching how schema authors write bounds.
func formatNumber(n float64) string {
	if n == math.Trunc(n) {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}

func formatRange(r *schema.Range) string {
	lo, hi := "-inf", "+inf"
	if r.Min != nil {
		lo = formatNumber(*r.Min)
	}
	if r.Max != nil {
		hi = formatNumber(*r.Max)
	}
	return fmt.Sprintf("[%s, %s]", lo, hi)
}
