package constraint

import (
	"fmt"
	"strconv"
)

// Op is a comparison operator of the constraint grammar.
type Op string

const (
	OpLE Op = "<="
	OpGE Op = ">="
	OpLT Op = "<"
	OpGT Op = ">"
	OpEQ Op = "=="
	OpNE Op = "!="
)

// Rule is a parsed constraint expression. The grammar is a closed,
// tagged set of rule forms; there is deliberately no general expression
// language here.
//
// Eval returns (passed, applicable). A rule whose field is absent from
// the record, or whose operand types cannot be compared, is vacuously
// inapplicable and never produces a violation.
type Rule interface {
	// Field returns the record field the rule inspects.
	Field() string

	// Eval evaluates the rule against a structured record.
	Eval(record map[string]any) (passed bool, applicable bool)

	// String renders the rule in its source grammar.
	String() string
}

// LengthRule is the "len(<field>) <op> <int>" rule form. It applies to
// string and list values.
type LengthRule struct {
	FieldName string
	Op        Op
	Bound     int
}

// Field implements Rule.
func (r *LengthRule) Field() string { return r.FieldName }

// Eval implements Rule.
func (r *LengthRule) Eval(record map[string]any) (bool, bool) {
	value, ok := record[r.FieldName]
	if !ok {
		return true, false
	}

	var length int
	switch v := value.(type) {
	case string:
		length = len(v)
	case []any:
		length = len(v)
	case []string:
		length = len(v)
	default:
		return true, false
	}

	return compareInts(length, r.Op, r.Bound), true
}

// String implements Rule.
func (r *LengthRule) String() string {
	return fmt.Sprintf("len(%s) %s %d", r.FieldName, r.Op, r.Bound)
}

// CompareRule is the "<field> <op> <literal>" rule form. Numeric
// literals compare numerically against numeric values, string literals
// lexicographically against string values, and boolean literals support
// equality against boolean values.
type CompareRule struct {
	FieldName string
	Op        Op
	Literal   Literal
}

// Field implements Rule.
func (r *CompareRule) Field() string { return r.FieldName }

// Eval implements Rule.
func (r *CompareRule) Eval(record map[string]any) (bool, bool) {
	value, ok := record[r.FieldName]
	if !ok {
		return true, false
	}

	switch r.Literal.Kind {
	case LiteralNumber:
		num, ok := numericValue(value)
		if !ok {
			return true, false
		}
		return compareFloats(num, r.Op, r.Literal.Number), true

	case LiteralString:
		str, ok := value.(string)
		if !ok {
			return true, false
		}
		return compareStrings(str, r.Op, r.Literal.Text), true

	case LiteralBool:
		b, ok := value.(bool)
		if !ok {
			return true, false
		}
		switch r.Op {
		case OpEQ:
			return b == r.Literal.Bool, true
		case OpNE:
			return b != r.Literal.Bool, true
		}
		return true, false
	}

	return true, false
}

// String implements Rule.
func (r *CompareRule) String() string {
	return fmt.Sprintf("%s %s %s", r.FieldName, r.Op, r.Literal)
}

// LiteralKind tags the type of a comparison literal.
type LiteralKind int

const (
	LiteralNumber LiteralKind = iota
	LiteralString
	LiteralBool
)

// Literal is the right-hand operand of a CompareRule.
type Literal struct {
	Kind   LiteralKind
	Number float64
	Text   string
	Bool   bool
}

// String renders the literal in its source grammar.
func (l Literal) String() string {
	switch l.Kind {
	case LiteralNumber:
		return strconv.FormatFloat(l.Number, 'g', -1, 64)
	case LiteralBool:
		return strconv.FormatBool(l.Bool)
	default:
		return strconv.Quote(l.Text)
	}
}

// numericValue widens JSON and Go numeric representations to float64.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func compareInts(a int, op Op, b int) bool {
	return compareFloats(float64(a), op, float64(b))
}

func compareFloats(a float64, op Op, b float64) bool {
	switch op {
	case OpLE:
		return a <= b
	case OpGE:
		return a >= b
	case OpLT:
		return a < b
	case OpGT:
		return a > b
	case OpEQ:
		return a == b
	case OpNE:
		return a != b
	}
	return false
}

func compareStrings(a string, op Op, b string) bool {
	switch op {
	case OpLE:
		return a <= b
	case OpGE:
		return a >= b
	case OpLT:
		return a < b
	case OpGT:
		return a > b
	case OpEQ:
		return a == b
	case OpNE:
		return a != b
	}
	return false
}
