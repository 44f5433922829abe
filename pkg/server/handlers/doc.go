// Package handlers implements the HTTP endpoints: validated prediction,
// the gateway health aggregate and component readiness.
package handlers
