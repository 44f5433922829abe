package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ontoguard-hq/ontoguard/pkg/gateway"
	"ontoguard-hq/ontoguard/pkg/generator"
	"ontoguard-hq/ontoguard/pkg/server/middleware"
	"ontoguard-hq/ontoguard/pkg/telemetry/logging"
	"ontoguard-hq/ontoguard/pkg/telemetry/metrics"
)

// maxRequestBody caps predict request bodies at 1MB.
const maxRequestBody = 1 << 20

// PredictHandler serves POST /v1/predict: the request record is
// validated, passed to the generator and the response validated on the
// way out. Egress validation failures never produce an error status;
// the response carries the flagged-invalid marker instead.
type PredictHandler struct {
	gateway *gateway.Gateway
	metrics *metrics.GatewayMetrics
	logger  *logging.Logger
}

// NewPredictHandler creates the predict handler. Metrics may be nil.
func NewPredictHandler(gw *gateway.Gateway, gm *metrics.GatewayMetrics, logger *logging.Logger) *PredictHandler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &PredictHandler{gateway: gw, metrics: gm, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *PredictHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start := middleware.GetStartTime(r.Context())
	if start.IsZero() {
		start = time.Now()
	}

	var record map[string]any
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := decoder.Decode(&record); err != nil || record == nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return
	}

	resp, err := h.gateway.Handle(r.Context(), record)
	if err != nil {
		h.record(metrics.GatewayError, start)

		var unavailable *generator.UnavailableError
		var timeout *generator.TimeoutError
		switch {
		case errors.Is(err, gateway.ErrNotReady):
			writeError(w, http.StatusServiceUnavailable, "gateway is not ready")
		case errors.As(err, &unavailable):
			writeError(w, http.StatusServiceUnavailable, unavailable.Error())
		case errors.As(err, &timeout):
			writeError(w, http.StatusGatewayTimeout, timeout.Error())
		default:
			h.logger.Error("generation failed",
				"request_id", middleware.GetRequestID(r.Context()),
				"error", err,
			)
			writeError(w, http.StatusBadGateway, "generation failed")
		}
		return
	}

	switch {
	case resp.IngressRejected:
		h.record(metrics.GatewayIngressRejected, start)
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case resp.FlaggedInvalid:
		h.record(metrics.GatewayFlaggedInvalid, start)
		writeJSON(w, http.StatusOK, resp)
	default:
		h.record(metrics.GatewayOK, start)
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *PredictHandler) record(outcome string, start time.Time) {
	if h.metrics != nil {
		h.metrics.RecordRequest(outcome, time.Since(start))
	}
}

// writeJSON writes a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
