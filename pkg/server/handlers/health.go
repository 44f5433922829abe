package handlers

import (
	"net/http"

	"ontoguard-hq/ontoguard/pkg/gateway"
	"ontoguard-hq/ontoguard/pkg/telemetry/health"
	"ontoguard-hq/ontoguard/pkg/telemetry/metrics"
)

// HealthHandler serves GET /health with the gateway health aggregate.
// The status code follows the aggregate rule: only a broken validator
// or schema makes the endpoint report unhealthy.
type HealthHandler struct {
	gateway *gateway.Gateway
	metrics *metrics.GatewayMetrics
}

// NewHealthHandler creates the health handler. Metrics may be nil.
func NewHealthHandler(gw *gateway.Gateway, gm *metrics.GatewayMetrics) *HealthHandler {
	return &HealthHandler{gateway: gw, metrics: gm}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	agg := h.gateway.CheckHealth(r.Context())
	if h.metrics != nil {
		h.metrics.RecordHealth(agg.ValidatorOK, agg.SchemaOK, agg.GeneratorOK)
	}

	status := http.StatusOK
	if !agg.Healthy() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, agg)
}

// ReadyHandler serves GET /ready with the aggregated readiness of every
// registered component check.
type ReadyHandler struct {
	checker *health.Checker
}

// NewReadyHandler creates the readiness handler.
func NewReadyHandler(checker *health.Checker) *ReadyHandler {
	return &ReadyHandler{checker: checker}
}

// ServeHTTP implements http.Handler.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	status := h.checker.CheckReadiness(r.Context())
	code := http.StatusOK
	if status.Status == "degraded" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}
