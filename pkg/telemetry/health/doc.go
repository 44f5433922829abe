// Package health aggregates named component checks for the liveness
// and readiness endpoints.
package health
