package constraint

import (
	"errors"
	"testing"
)

func TestParseLengthRules(t *testing.T) {
	tests := []struct {
		expr  string
		field string
		op    Op
		bound int
	}{
		{"len(id) >= 4", "id", OpGE, 4},
		{"len(tags)<=10", "tags", OpLE, 10},
		{"len( name ) == 0", "name", OpEQ, 0},
		{"len(notes) != 3", "notes", OpNE, 3},
		{"len(id) < 64", "id", OpLT, 64},
		{"len(id) > -1", "id", OpGT, -1},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			rule, err := Parse(tt.expr)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.expr, err)
			}
			lr, ok := rule.(*LengthRule)
			if !ok {
				t.Fatalf("Parse(%q) = %T, want *LengthRule", tt.expr, rule)
			}
			if lr.FieldName != tt.field || lr.Op != tt.op || lr.Bound != tt.bound {
				t.Errorf("rule = %+v, want {%s %s %d}", lr, tt.field, tt.op, tt.bound)
			}
		})
	}
}

func TestParseCompareRules(t *testing.T) {
	tests := []struct {
		expr  string
		field string
		op    Op
		lit   Literal
	}{
		{"quantity <= 500", "quantity", OpLE, Literal{Kind: LiteralNumber, Number: 500}},
		{"age>=0", "age", OpGE, Literal{Kind: LiteralNumber, Number: 0}},
		{"unit_price < 99.5", "unit_price", OpLT, Literal{Kind: LiteralNumber, Number: 99.5}},
		{"temperature > -2.5", "temperature", OpGT, Literal{Kind: LiteralNumber, Number: -2.5}},
		{`status == "active"`, "status", OpEQ, Literal{Kind: LiteralString, Text: "active"}},
		{"status != 'cancelled'", "status", OpNE, Literal{Kind: LiteralString, Text: "cancelled"}},
		{"tier == gold", "tier", OpEQ, Literal{Kind: LiteralString, Text: "gold"}},
		{"archived == false", "archived", OpEQ, Literal{Kind: LiteralBool, Bool: false}},
		{"active != true", "active", OpNE, Literal{Kind: LiteralBool, Bool: true}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			rule, err := Parse(tt.expr)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.expr, err)
			}
			cr, ok := rule.(*CompareRule)
			if !ok {
				t.Fatalf("Parse(%q) = %T, want *CompareRule", tt.expr, rule)
			}
			if cr.FieldName != tt.field || cr.Op != tt.op || cr.Literal != tt.lit {
				t.Errorf("rule = %+v, want {%s %s %v}", cr, tt.field, tt.op, tt.lit)
			}
		})
	}
}

func TestParseUnrecognized(t *testing.T) {
	exprs := []string{
		"",
		"   ",
		"a + 1 in range(10)",
		"len(id)",
		"quantity",
		"x ~ 5",
		"if a then b",
	}

	for _, expr := range exprs {
		t.Run(expr, func(t *testing.T) {
			if _, err := Parse(expr); !errors.Is(err, ErrUnrecognized) {
				t.Errorf("Parse(%q) error = %v, want ErrUnrecognized", expr, err)
			}
		})
	}
}

func TestParseTrimsWhitespace(t *testing.T) {
	rule, err := Parse("  quantity <= 500  ")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if rule.Field() != "quantity" {
		t.Errorf("Field() = %q, want quantity", rule.Field())
	}
}
