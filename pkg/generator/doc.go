// Package generator defines the external text producer the sampling
// loop and gateway drive, plus an HTTP implementation for generic
// completion backends.
//
// The engine needs exactly one capability from a backend: prompt in,
// raw text out. The HTTP implementation adds connection pooling, retry
// with exponential backoff for transient faults and health tracking
// with a consecutive-failure circuit. Authentication rejections and
// backends that stay unreachable through every retry surface as
// *UnavailableError, which callers treat as fatal instead of retrying.
package generator
