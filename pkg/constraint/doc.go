// Package constraint implements the bounded constraint expression
// grammar: a closed, tagged set of rule forms covering field length
// checks and simple comparisons.
//
// The grammar is deliberately small. Two rule forms exist:
//
//	len(<field>) <op> <int>     length of a string or list field
//	<field> <op> <literal>      comparison against a number, string or bool
//
// with <op> one of <=, >=, <, >, ==, !=. Anything else fails Parse with
// ErrUnrecognized; callers decide how to surface that (the validator
// records it as a warning rather than silently treating the constraint
// as satisfied).
//
// Rules evaluate against already-structured records. A rule whose field
// is absent, or whose operand types cannot be compared, is vacuously
// inapplicable.
package constraint
