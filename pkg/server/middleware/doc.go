// Package middleware provides the HTTP middleware chain: panic
// recovery, request logging, request ID propagation and per-request
// timeouts.
package middleware
