package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ontoguard-hq/ontoguard/pkg/config"
)

// Gateway request outcomes, used as the "outcome" label value.
const (
	GatewayOK              = "ok"
	GatewayIngressRejected = "ingress_rejected"
	GatewayFlaggedInvalid  = "flagged_invalid"
	GatewayError           = "error"
)

// GatewayMetrics tracks the runtime validation gateway.
//
// Metrics:
//   - ontoguard_engine_gateway_requests_total by outcome
//   - ontoguard_engine_gateway_request_duration_seconds
//   - ontoguard_engine_gateway_healthy by component
type GatewayMetrics struct {
	requestsTotal *prometheus.CounterVec
	duration      prometheus.Histogram
	healthy       *prometheus.GaugeVec
}

// NewGatewayMetrics creates and registers gateway metrics.
func NewGatewayMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *GatewayMetrics {
	gm := &GatewayMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "gateway_requests_total",
				Help:      "Total number of gateway requests",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "gateway_request_duration_seconds",
				Help:      "End-to-end duration of gateway requests",
				Buckets:   cfg.DurationBuckets,
			},
		),
		healthy: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "gateway_healthy",
				Help:      "Health probe result per component (1 healthy, 0 unhealthy)",
			},
			[]string{"component"},
		),
	}

	registry.MustRegister(gm.requestsTotal, gm.duration, gm.healthy)
	return gm
}

// RecordRequest captures one gateway request.
func (gm *GatewayMetrics) RecordRequest(outcome string, elapsed time.Duration) {
	gm.requestsTotal.WithLabelValues(outcome).Inc()
	gm.duration.Observe(elapsed.Seconds())
}

// RecordHealth captures a health probe result.
func (gm *GatewayMetrics) RecordHealth(validatorOK, schemaOK, generatorOK bool) {
	gm.healthy.WithLabelValues("validator").Set(boolGauge(validatorOK))
	gm.healthy.WithLabelValues("schema").Set(boolGauge(schemaOK))
	gm.healthy.WithLabelValues("generator").Set(boolGauge(generatorOK))
}

func boolGauge(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}
