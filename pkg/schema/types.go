package schema

import (
	"fmt"
)

// PrimitiveType is one of the fixed primitive types a field may declare.
// The set is closed: loading a document that references any other type
// fails with *LoadError.
type PrimitiveType string

const (
	// TypeString is a UTF-8 string value.
	TypeString PrimitiveType = "string"
	// TypeInt is an integer value.
	TypeInt PrimitiveType = "int"
	// TypeFloat is a floating point value. Integers are accepted where a
	// float is declared.
	TypeFloat PrimitiveType = "float"
	// TypeBool is a boolean value.
	TypeBool PrimitiveType = "bool"
	// TypeList is a homogeneous list. The element type is carried in
	// FieldSpec.Elem.
	TypeList PrimitiveType = "list"
)

// Severity classifies how a constraint failure affects validity.
// Only SeverityError flips a validation result to invalid; warning and
// info failures are recorded but do not reject the record.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Range is an inclusive numeric interval attached to an int or float
// field. Either bound may be absent.
type Range struct {
	Min *float64
	Max *float64
}

// FieldSpec describes a single typed field of an entity.
type FieldSpec struct {
	// Type is the declared primitive type.
	Type PrimitiveType

	// Elem is the element type when Type is TypeList.
	Elem PrimitiveType

	// Enum restricts a string field to a fixed set of values.
	Enum []string

	// Range restricts an int or float field to an inclusive interval.
	Range *Range

	// MinLength and MaxLength restrict the length of a string field.
	MinLength *int
	MaxLength *int

	// Required marks the field as mandatory on its entity.
	Required bool

	// Default is an optional default value. It is informational for
	// downstream consumers; the validator never injects defaults.
	Default any
}

// EntitySpec is a named record shape: an ordered set of typed fields.
// Field iteration order is the insertion order of the source document.
type EntitySpec struct {
	name       string
	fieldOrder []string
	fields     map[string]FieldSpec
}

// NewEntitySpec builds an entity from ordered field definitions.
// It fails if a field name is duplicated or a field spec violates the
// per-field invariants (enum implies string, range implies numeric,
// min < max).
func NewEntitySpec(name string, names []string, fields map[string]FieldSpec) (*EntitySpec, error) {
	if name == "" {
		return nil, fmt.Errorf("entity name must not be empty")
	}
	if len(names) != len(fields) {
		return nil, fmt.Errorf("entity %q: field order and field map disagree", name)
	}
	seen := make(map[string]bool, len(names))
	for _, fname := range names {
		if seen[fname] {
			return nil, fmt.Errorf("entity %q: duplicate field %q", name, fname)
		}
		seen[fname] = true
		spec, ok := fields[fname]
		if !ok {
			return nil, fmt.Errorf("entity %q: field %q missing from field map", name, fname)
		}
		if err := checkFieldSpec(fname, spec); err != nil {
			return nil, fmt.Errorf("entity %q: %w", name, err)
		}
	}

	copied := make(map[string]FieldSpec, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	order := make([]string, len(names))
	copy(order, names)

	return &EntitySpec{name: name, fieldOrder: order, fields: copied}, nil
}

// checkFieldSpec enforces the per-field invariants.
func checkFieldSpec(name string, spec FieldSpec) error {
	switch spec.Type {
	case TypeString, TypeInt, TypeFloat, TypeBool:
	case TypeList:
		switch spec.Elem {
		case TypeString, TypeInt, TypeFloat, TypeBool:
		default:
			return fmt.Errorf("field %q: unsupported list element type %q", name, spec.Elem)
		}
	default:
		return fmt.Errorf("field %q: unsupported type %q", name, spec.Type)
	}

	if len(spec.Enum) > 0 && spec.Type != TypeString {
		return fmt.Errorf("field %q: enum requires string type, got %q", name, spec.Type)
	}
	if spec.Range != nil {
		if spec.Type != TypeInt && spec.Type != TypeFloat {
			return fmt.Errorf("field %q: range requires int or float type, got %q", name, spec.Type)
		}
		if spec.Range.Min != nil && spec.Range.Max != nil && *spec.Range.Min >= *spec.Range.Max {
			return fmt.Errorf("field %q: range min %v must be less than max %v", name, *spec.Range.Min, *spec.Range.Max)
		}
	}
	if spec.MinLength != nil && spec.MaxLength != nil && *spec.MinLength > *spec.MaxLength {
		return fmt.Errorf("field %q: minLength %d exceeds maxLength %d", name, *spec.MinLength, *spec.MaxLength)
	}
	return nil
}

// Name returns the entity name.
func (e *EntitySpec) Name() string {
	return e.name
}

// FieldNames returns the field names in document order.
func (e *EntitySpec) FieldNames() []string {
	out := make([]string, len(e.fieldOrder))
	copy(out, e.fieldOrder)
	return out
}

// Field returns the spec for a named field.
func (e *EntitySpec) Field(name string) (FieldSpec, bool) {
	spec, ok := e.fields[name]
	return spec, ok
}

// RequiredFields returns the required field names in document order.
func (e *EntitySpec) RequiredFields() []string {
	var out []string
	for _, name := range e.fieldOrder {
		if e.fields[name].Required {
			out = append(out, name)
		}
	}
	return out
}

// Constraint is a schema-level expression rule supplementing per-field
// structural checks. Expressions follow the bounded grammar recognized
// by the constraint package: "len(<field>) <op> <int>" or
// "<field> <op> <literal>".
type Constraint struct {
	// Expression is the raw constraint expression.
	Expression string

	// Message is the violation message reported when the constraint
	// fails. Falls back to the raw expression when empty.
	Message string

	// Severity controls whether a failure rejects the record.
	Severity Severity
}

// Schema is the immutable root of a loaded schema document: named
// entities plus an ordered list of expression constraints.
//
// A Schema is never mutated after construction. Entity iteration order
// is the insertion order of the source document, which downstream
// codegen consumers rely on. Safe for unrestricted concurrent reads.
type Schema struct {
	name        string
	sourcePath  string
	entityOrder []string
	entities    map[string]*EntitySpec
	constraints []Constraint
}

// New builds a Schema from ordered entities and constraints.
// Entity names must be unique. Constraint order is preserved.
func New(name string, entities []*EntitySpec, constraints []Constraint) (*Schema, error) {
	if name == "" {
		return nil, fmt.Errorf("schema name must not be empty")
	}

	order := make([]string, 0, len(entities))
	byName := make(map[string]*EntitySpec, len(entities))
	for _, ent := range entities {
		if _, dup := byName[ent.name]; dup {
			return nil, fmt.Errorf("duplicate entity %q", ent.name)
		}
		order = append(order, ent.name)
		byName[ent.name] = ent
	}

	copied := make([]Constraint, len(constraints))
	copy(copied, constraints)
	for i := range copied {
		if copied[i].Severity == "" {
			copied[i].Severity = SeverityError
		}
	}

	return &Schema{
		name:        name,
		entityOrder: order,
		entities:    byName,
		constraints: copied,
	}, nil
}

// Name returns the schema name.
func (s *Schema) Name() string {
	return s.name
}

// SourcePath returns the path the schema was loaded from, or "" when
// the schema was constructed in memory.
func (s *Schema) SourcePath() string {
	return s.sourcePath
}

// EntityNames returns the entity names in document order.
func (s *Schema) EntityNames() []string {
	out := make([]string, len(s.entityOrder))
	copy(out, s.entityOrder)
	return out
}

// Entity returns the named entity.
func (s *Schema) Entity(name string) (*EntitySpec, bool) {
	ent, ok := s.entities[name]
	return ent, ok
}

// Entities returns the entities in document order.
func (s *Schema) Entities() []*EntitySpec {
	out := make([]*EntitySpec, 0, len(s.entityOrder))
	for _, name := range s.entityOrder {
		out = append(out, s.entities[name])
	}
	return out
}

// Constraints returns the expression constraints in document order.
func (s *Schema) Constraints() []Constraint {
	out := make([]Constraint, len(s.constraints))
	copy(out, s.constraints)
	return out
}
