package schema

import (
	"fmt"

	"ontoguard-hq/ontoguard/pkg/constraint"
)

// Finding is a single lint finding. Lint findings are advisory: the
// schema loaded successfully, but something about it is suspicious or
// will degrade at validation time.
type Finding struct {
	// Severity is "error" for findings that make the schema unusable in
	// practice and "warning" for degraded-but-functional ones.
	Severity Severity

	// Message describes the finding.
	Message string
}

// String renders the finding for CLI output.
func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s", f.Severity, f.Message)
}

// Lint inspects a loaded schema for problems the loader does not treat
// as fatal: empty entity sets, duplicate enum values, defaults that
// violate their own field spec, constraints that reference unknown
// fields, and constraint expressions outside the recognized grammar.
func Lint(s *Schema) []Finding {
	var findings []Finding

	if len(s.EntityNames()) == 0 {
		findings = append(findings, Finding{
			Severity: SeverityError,
			Message:  "schema declares no entities",
		})
	}

	allFields := make(map[string]bool)
	for _, ent := range s.Entities() {
		names := ent.FieldNames()
		if len(names) == 0 {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("entity %q declares no fields", ent.Name()),
			})
		}
		for _, fname := range names {
			allFields[fname] = true
			spec, _ := ent.Field(fname)
			findings = append(findings, lintField(ent.Name(), fname, spec)...)
		}
	}

	for i, c := range s.Constraints() {
		rule, err := constraint.Parse(c.Expression)
		if err != nil {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("constraint %d: expression %q is outside the recognized grammar and will be reported as a warning at validation time", i, c.Expression),
			})
			continue
		}
		if !allFields[rule.Field()] {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("constraint %d: field %q is not declared by any entity", i, rule.Field()),
			})
		}
	}

	return findings
}

// lintField checks a single field spec for advisory problems.
func lintField(entity, field string, spec FieldSpec) []Finding {
	var findings []Finding

	seen := make(map[string]bool, len(spec.Enum))
	for _, v := range spec.Enum {
		if seen[v] {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("entity %q field %q: duplicate enum value %q", entity, field, v),
			})
		}
		seen[v] = true
	}

	if spec.Default == nil {
		return findings
	}

	// A default that cannot satisfy its own field spec is almost
	// certainly a schema authoring mistake.
	switch spec.Type {
	case TypeString:
		str, ok := spec.Default.(string)
		if !ok {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("entity %q field %q: default is not a string", entity, field),
			})
			break
		}
		if len(spec.Enum) > 0 && !seen[str] {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("entity %q field %q: default %q is not an enum member", entity, field, str),
			})
		}
	case TypeInt, TypeFloat:
		num, ok := asFloat(spec.Default)
		if !ok {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("entity %q field %q: default is not numeric", entity, field),
			})
			break
		}
		if r := spec.Range; r != nil {
			if (r.Min != nil && num < *r.Min) || (r.Max != nil && num > *r.Max) {
				findings = append(findings, Finding{
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("entity %q field %q: default %v is outside the declared range", entity, field, num),
				})
			}
		}
	}

	return findings
}

// asFloat widens any numeric value to float64.
func asFloat(v any) (float64, bool) {
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
