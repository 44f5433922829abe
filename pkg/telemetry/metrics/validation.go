package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ontoguard-hq/ontoguard/pkg/config"
)

// Validation surfaces, used as the "surface" label value.
const (
	SurfaceIngress = "ingress"
	SurfaceEgress  = "egress"
	SurfaceOffline = "offline"
)

// ValidationMetrics tracks record validation outcomes.
//
// Metrics:
//   - ontoguard_engine_validations_total by surface and outcome
//   - ontoguard_engine_violations_total by surface
//   - ontoguard_engine_validation_duration_seconds by surface
type ValidationMetrics struct {
	validationsTotal *prometheus.CounterVec
	violationsTotal  *prometheus.CounterVec
	duration         *prometheus.HistogramVec
}

// NewValidationMetrics creates and registers validation metrics.
func NewValidationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ValidationMetrics {
	vm := &ValidationMetrics{
		validationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validations_total",
				Help:      "Total number of record validations",
			},
			[]string{"surface", "outcome"},
		),
		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "violations_total",
				Help:      "Total number of violations recorded across validations",
			},
			[]string{"surface"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validation_duration_seconds",
				Help:      "Duration of a single record validation",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"surface"},
		),
	}

	registry.MustRegister(vm.validationsTotal, vm.violationsTotal, vm.duration)
	return vm
}

// Record captures one validation outcome.
func (vm *ValidationMetrics) Record(surface string, valid bool, violations int, elapsed time.Duration) {
	outcome := "valid"
	if !valid {
		outcome = "invalid"
	}
	vm.validationsTotal.WithLabelValues(surface, outcome).Inc()
	if violations > 0 {
		vm.violationsTotal.WithLabelValues(surface).Add(float64(violations))
	}
	vm.duration.WithLabelValues(surface).Observe(elapsed.Seconds())
}
