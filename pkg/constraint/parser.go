package constraint

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnrecognized reports an expression outside the recognized grammar.
// Callers surface it explicitly (the validator records a warning) so
// unparseable constraints are never silently vacuous.
var ErrUnrecognized = errors.New("constraint expression outside recognized grammar")

var (
	lengthExpr  = regexp.MustCompile(`^len\(\s*(\w+)\s*\)\s*(<=|>=|==|!=|<|>)\s*(-?\d+)$`)
	compareExpr = regexp.MustCompile(`^(\w+)\s*(<=|>=|==|!=|<|>)\s*(.+)$`)
)

// Parse parses a constraint expression against the recognized grammar:
//
//	len(<field>) <op> <int>
//	<field> <op> <literal>
//
// where <op> is one of <=, >=, <, >, ==, != and <literal> is a number,
// a quoted or bare string, or true/false.
func Parse(expr string) (Rule, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrUnrecognized)
	}

	if m := lengthExpr.FindStringSubmatch(trimmed); m != nil {
		bound, err := strconv.Atoi(m[3])
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnrecognized, expr)
		}
		return &LengthRule{FieldName: m[1], Op: Op(m[2]), Bound: bound}, nil
	}

	if m := compareExpr.FindStringSubmatch(trimmed); m != nil {
		lit, err := parseLiteral(m[3])
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnrecognized, expr)
		}
		return &CompareRule{FieldName: m[1], Op: Op(m[2]), Literal: lit}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnrecognized, expr)
}

// parseLiteral parses the right-hand operand of a comparison.
func parseLiteral(raw string) (Literal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Literal{}, fmt.Errorf("empty literal")
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return Literal{Kind: LiteralNumber, Number: n}, nil
	}

	switch s {
	case "true":
		return Literal{Kind: LiteralBool, Bool: true}, nil
	case "false":
		return Literal{Kind: LiteralBool, Bool: false}, nil
	}

	// Quoted string literal.
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return Literal{Kind: LiteralString, Text: s[1 : len(s)-1]}, nil
		}
	}

	// Bare word string literal. Comparison operators inside the word
	// would have been consumed by the operator match already.
	return Literal{Kind: LiteralString, Text: s}, nil
}
