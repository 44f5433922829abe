package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"ontoguard-hq/ontoguard/pkg/config"
)

// Collector owns every Prometheus metric the engine exposes. It manages
// registration against a single registry and hands out the per-concern
// metric groups.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	validation *ValidationMetrics
	sampling   *SamplingMetrics
	gateway    *GatewayMetrics
}

// NewCollector creates a metrics collector registered against the given
// registry. A nil registry gets a fresh one.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "ontoguard"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "engine"
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0}
	}

	return &Collector{
		config:     cfg,
		registry:   registry,
		validation: NewValidationMetrics(cfg, registry),
		sampling:   NewSamplingMetrics(cfg, registry),
		gateway:    NewGatewayMetrics(cfg, registry),
	}
}

// Validation returns the validation metric group.
func (c *Collector) Validation() *ValidationMetrics { return c.validation }

// Sampling returns the sampling metric group.
func (c *Collector) Sampling() *SamplingMetrics { return c.sampling }

// Gateway returns the gateway metric group.
func (c *Collector) Gateway() *GatewayMetrics { return c.gateway }

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }
