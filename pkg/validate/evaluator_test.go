package validate

import (
	"reflect"
	"strings"
	"testing"

	"ontoguard-hq/ontoguard/pkg/schema"
)

const personDoc = `{
  "title": "person",
  "definitions": {
    "Person": {
      "type": "object",
      "properties": {
        "name": {"type": "string", "minLength": 1, "maxLength": 120},
        "age": {"type": "integer", "minimum": 0, "maximum": 150},
        "status": {"enum": ["active", "inactive", "pending"]}
      },
      "required": ["name", "age", "status"],
      "additionalProperties": false
    }
  }
}`

const shopDoc = `
name: shop
entities:
  Order:
    fields:
      id: string
      quantity:
        type: int
        range: [1, 1000]
  Customer:
    fields:
      id: string
      name: string
`

func parseSchema(t *testing.T, doc, name string) *schema.Schema {
	t.Helper()
	s, err := schema.Parse([]byte(doc), name)
	if err != nil {
		t.Fatalf("schema.Parse() error = %v", err)
	}
	return s
}

func validPerson() map[string]any {
	return map[string]any{"name": "Ada", "age": 36.0, "status": "active"}
}

func TestValidateConforming(t *testing.T) {
	s := parseSchema(t, personDoc, "person.schema.json")
	e := NewEvaluator(Options{})

	result := e.Validate(validPerson(), s)
	if !result.Valid {
		t.Fatalf("Validate() invalid, violations = %v", result.Violations)
	}
	if len(result.Violations) != 0 || len(result.Warnings) != 0 {
		t.Errorf("conforming record produced findings: %+v", result)
	}
}

func TestStructuralViolations(t *testing.T) {
	s := parseSchema(t, personDoc, "person.schema.json")
	e := NewEvaluator(Options{})

	tests := []struct {
		name   string
		mutate func(map[string]any)
		valid  bool
		want   string
	}{
		{
			name:   "missing required field",
			mutate: func(r map[string]any) { delete(r, "age") },
			want:   "missing required field: age",
		},
		{
			name:   "unknown field",
			mutate: func(r map[string]any) { r["nickname"] = "ada" },
			want:   "unknown field: nickname",
		},
		{
			name:   "enum member accepted",
			mutate: func(r map[string]any) { r["status"] = "pending" },
			valid:  true,
		},
		{
			name:   "enum rejects unknown value",
			mutate: func(r map[string]any) { r["status"] = "unknown" },
			want:   `value "unknown" not in enum [active, inactive, pending]`,
		},
		{
			name:   "lower range boundary accepted",
			mutate: func(r map[string]any) { r["age"] = 0.0 },
			valid:  true,
		},
		{
			name:   "upper range boundary accepted",
			mutate: func(r map[string]any) { r["age"] = 150.0 },
			valid:  true,
		},
		{
			name:   "below range rejected",
			mutate: func(r map[string]any) { r["age"] = -1.0 },
			want:   `value -1 outside range [0, 150]`,
		},
		{
			name:   "above range rejected",
			mutate: func(r map[string]any) { r["age"] = 151.0 },
			want:   `value 151 outside range [0, 150]`,
		},
		{
			name:   "integral float accepted for int",
			mutate: func(r map[string]any) { r["age"] = 36.0 },
			valid:  true,
		},
		{
			name:   "fractional float rejected for int",
			mutate: func(r map[string]any) { r["age"] = 36.5 },
			want:   "expected int, got number",
		},
		{
			name:   "wrong type for string field",
			mutate: func(r map[string]any) { r["name"] = 7.0 },
			want:   "expected string, got number",
		},
		{
			name:   "string below minimum length",
			mutate: func(r map[string]any) { r["name"] = "" },
			want:   "length 0 below minimum length 1",
		},
		{
			name:   "string above maximum length",
			mutate: func(r map[string]any) { r["name"] = strings.Repeat("a", 121) },
			want:   "length 121 exceeds maximum length 120",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := validPerson()
			tt.mutate(record)
			result := e.Validate(record, s)

			if result.Valid != tt.valid {
				t.Fatalf("Valid = %v, want %v (violations = %v)",
					result.Valid, tt.valid, result.Violations)
			}
			if tt.want == "" {
				return
			}
			joined := strings.Join(result.Violations, "\n")
			if !strings.Contains(joined, tt.want) {
				t.Errorf("violations:\n%s\nwant message containing %q", joined, tt.want)
			}
		})
	}
}

func TestMaxErrorsCap(t *testing.T) {
	s := parseSchema(t, personDoc, "person.schema.json")
	e := NewEvaluator(Options{MaxErrors: 3})

	record := validPerson()
	for _, k := range []string{"f1", "f2", "f3", "f4", "f5", "f6"} {
		record[k] = true
	}

	result := e.Validate(record, s)
	if result.Valid {
		t.Fatal("Valid = true for record with unknown fields")
	}
	if len(result.Violations) != 3 {
		t.Errorf("len(Violations) = %d, want cap of 3", len(result.Violations))
	}
}

func TestEntityResolution(t *testing.T) {
	s := parseSchema(t, shopDoc, "shop.yaml")
	e := NewEvaluator(Options{})

	t.Run("discriminant resolves entity", func(t *testing.T) {
		record := map[string]any{"type": "Customer", "id": "c1", "name": "Ada"}
		result := e.Validate(record, s)
		if !result.Valid {
			t.Errorf("violations = %v, discriminant field must not count as unknown", result.Violations)
		}
	})

	t.Run("discriminant entity still checked", func(t *testing.T) {
		record := map[string]any{"type": "Customer", "id": "c1"}
		result := e.Validate(record, s)
		if result.Valid {
			t.Fatal("Valid = true for customer without name")
		}
		joined := strings.Join(result.Violations, "\n")
		if !strings.Contains(joined, "missing required field: name") {
			t.Errorf("violations = %v", result.Violations)
		}
		if strings.Contains(joined, "unknown field: type") {
			t.Errorf("discriminant flagged as unknown: %v", result.Violations)
		}
	})

	t.Run("structural match without discriminant", func(t *testing.T) {
		record := map[string]any{"id": "c1", "name": "Ada"}
		if result := e.Validate(record, s); !result.Valid {
			t.Errorf("violations = %v", result.Violations)
		}
	})

	t.Run("no match names closest candidate", func(t *testing.T) {
		record := map[string]any{"id": "x", "quantity": "many", "extra": true}
		result := e.Validate(record, s)
		if result.Valid {
			t.Fatal("Valid = true for record matching no entity")
		}
		joined := strings.Join(result.Violations, "\n")
		if !strings.Contains(joined, `no entity matched; closest candidate is "Order"`) {
			t.Errorf("violations = %v", result.Violations)
		}
	})
}

func TestExpressionConstraints(t *testing.T) {
	doc := `
name: orders
entities:
  Order:
    fields:
      id: string
      quantity:
        type: int
        range: [1, 1000]
constraints:
  - expr: "quantity <= 500"
    message: "large order"
    severity: warning
  - expr: "len(id) >= 4"
    severity: error
  - expr: "quantity in range(10)"
    severity: error
`
	s := parseSchema(t, doc, "orders.yaml")
	e := NewEvaluator(Options{})

	t.Run("warning severity does not invalidate", func(t *testing.T) {
		record := map[string]any{"id": "ab-1234", "quantity": 600.0}
		result := e.Validate(record, s)
		if !result.Valid {
			t.Fatalf("violations = %v", result.Violations)
		}
		found := false
		for _, w := range result.Warnings {
			if w == "large order" {
				found = true
			}
		}
		if !found {
			t.Errorf("Warnings = %v, want %q", result.Warnings, "large order")
		}
	})

	t.Run("error severity invalidates", func(t *testing.T) {
		record := map[string]any{"id": "ab", "quantity": 10.0}
		result := e.Validate(record, s)
		if result.Valid {
			t.Fatal("Valid = true despite error-severity constraint failure")
		}
		joined := strings.Join(result.Violations, "\n")
		if !strings.Contains(joined, "len(id) >= 4") {
			t.Errorf("violations = %v", result.Violations)
		}
	})

	t.Run("unparseable expression becomes warning", func(t *testing.T) {
		record := map[string]any{"id": "ab-1234", "quantity": 10.0}
		result := e.Validate(record, s)
		if !result.Valid {
			t.Fatalf("violations = %v", result.Violations)
		}
		joined := strings.Join(result.Warnings, "\n")
		if !strings.Contains(joined, "unparseable constraint expression: quantity in range(10)") {
			t.Errorf("Warnings = %v", result.Warnings)
		}
	})

	t.Run("absent constraint field is vacuous", func(t *testing.T) {
		result := e.ValidateExpressions(map[string]any{}, s)
		if !result.Valid || len(result.Violations) != 0 {
			t.Errorf("result = %+v", result)
		}
	})
}

func TestValidateIdempotent(t *testing.T) {
	s := parseSchema(t, personDoc, "person.schema.json")
	e := NewEvaluator(Options{})

	record := map[string]any{"name": "", "age": 200.0, "status": "gone", "extra": 1.0}
	first := e.Validate(record, s)
	second := e.Validate(record, s)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated validation differs:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

func TestMerge(t *testing.T) {
	a := &Result{Valid: true, Warnings: []string{"w1"}}
	b := &Result{Valid: false, Violations: []string{"v1"}}

	merged := Merge(a, nil, b)
	if merged.Valid {
		t.Error("merged Valid = true, want false")
	}
	if !reflect.DeepEqual(merged.Violations, []string{"v1"}) {
		t.Errorf("Violations = %v", merged.Violations)
	}
	if !reflect.DeepEqual(merged.Warnings, []string{"w1"}) {
		t.Errorf("Warnings = %v", merged.Warnings)
	}

	empty := Merge()
	if !empty.Valid || empty.Violations != nil || empty.Warnings != nil {
		t.Errorf("Merge() = %+v, want valid empty result", empty)
	}
}
