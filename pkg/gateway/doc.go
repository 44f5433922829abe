// Package gateway is the runtime validation surface: requests are
// validated on the way in, generated responses on the way out.
//
// Enforcement posture is configurable. Under fail-closed, an invalid
// request short-circuits before the generator is ever called, while an
// invalid generated response is returned with a flagged-invalid marker
// rather than an error status. Under fail-open both checks only log.
//
// The gateway lifecycle moves Uninitialized to SchemaLoaded to Ready; a
// schema load failure during initialization is terminal. Request
// processing never changes lifecycle state, and the schema snapshot can
// be swapped atomically while requests are in flight.
package gateway
