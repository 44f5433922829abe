// Package sampling implements bounded rejection sampling: generate,
// extract a record from the raw text, validate, accept or retry up to
// the attempt ceiling.
//
// The loop fails soft. Exhaustion returns the last attempt's record and
// validation result tagged Exhausted rather than an error, and context
// expiry mid-loop does the same with whatever attempt completed last.
// The single hard failure is generator unavailability, which aborts the
// call immediately without consuming remaining attempts.
package sampling
