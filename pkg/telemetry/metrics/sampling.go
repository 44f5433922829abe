package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"ontoguard-hq/ontoguard/pkg/config"
)

// Sampling outcomes, used as the "outcome" label value.
const (
	OutcomeAccepted    = "accepted"
	OutcomeExhausted   = "exhausted"
	OutcomeUnavailable = "unavailable"
)

// SamplingMetrics tracks the rejection sampling loop.
//
// Metrics:
//   - ontoguard_engine_sampling_runs_total by outcome
//   - ontoguard_engine_sampling_attempts per run
//   - ontoguard_engine_extraction_failures_total
type SamplingMetrics struct {
	runsTotal          *prometheus.CounterVec
	attempts           prometheus.Histogram
	extractionFailures prometheus.Counter
}

// NewSamplingMetrics creates and registers sampling metrics.
func NewSamplingMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SamplingMetrics {
	sm := &SamplingMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "sampling_runs_total",
				Help:      "Total number of sampling runs",
			},
			[]string{"outcome"},
		),
		attempts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "sampling_attempts",
				Help:      "Attempts consumed per sampling run",
				Buckets:   []float64{1, 2, 3, 5, 8, 10, 15, 20},
			},
		),
		extractionFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "extraction_failures_total",
				Help:      "Attempts whose raw output could not be parsed into a record",
			},
		),
	}

	registry.MustRegister(sm.runsTotal, sm.attempts, sm.extractionFailures)
	return sm
}

// RecordRun captures one completed sampling run.
func (sm *SamplingMetrics) RecordRun(outcome string, attempts int) {
	sm.runsTotal.WithLabelValues(outcome).Inc()
	if attempts > 0 {
		sm.attempts.Observe(float64(attempts))
	}
}

// RecordExtractionFailure counts one unparseable attempt.
func (sm *SamplingMetrics) RecordExtractionFailure() {
	sm.extractionFailures.Inc()
}
