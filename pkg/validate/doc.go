// Package validate checks candidate records against a loaded schema.
//
// Validation runs in a fixed order: entity resolution (via the "type"
// discriminant field when present, otherwise first structurally
// accepting entity in schema order), structural checks (required
// fields, unknown fields, type, enum, inclusive range, string length),
// then schema-level expression constraints. All violations accumulate
// up to the configured cap; nothing short-circuits on the first
// failure.
//
// A failed validation is a value, not an error: Validate always returns
// a Result whose Valid flag and ordered violation list describe the
// outcome. Only error-severity constraint failures and structural
// violations reject a record; warning and info severities, and
// constraints outside the recognized expression grammar, are recorded
// as warnings.
//
// The evaluator is pure over its inputs and holds no mutable state; a
// single Evaluator is safe for any number of concurrent validations.
// It only ever receives already-structured records; text-to-record
// extraction is the rejection sampler's responsibility, and no
// field-guessing heuristics belong here.
package validate
