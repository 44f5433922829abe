// Package server provides the HTTP server hosting the validation
// gateway: the predict endpoint, health and readiness probes and the
// metrics scrape endpoint, wrapped in the recovery, logging, request ID
// and timeout middleware chain.
package server
