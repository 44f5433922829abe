package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"ontoguard-hq/ontoguard/pkg/config"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	cfg := &config.MetricsConfig{Enabled: true}
	return NewCollector(cfg, prometheus.NewRegistry())
}

func TestCollectorDefaults(t *testing.T) {
	cfg := &config.MetricsConfig{}
	c := NewCollector(cfg, nil)

	if cfg.Namespace != "ontoguard" || cfg.Subsystem != "engine" {
		t.Errorf("namespace/subsystem = %q/%q", cfg.Namespace, cfg.Subsystem)
	}
	if len(cfg.DurationBuckets) == 0 {
		t.Error("duration buckets not defaulted")
	}
	if c.Registry() == nil {
		t.Error("Registry() = nil")
	}
}

func TestValidationMetrics(t *testing.T) {
	c := newTestCollector(t)
	vm := c.Validation()

	vm.Record(SurfaceIngress, true, 0, 5*time.Millisecond)
	vm.Record(SurfaceIngress, false, 3, 5*time.Millisecond)
	vm.Record(SurfaceEgress, false, 2, 5*time.Millisecond)

	if got := testutil.ToFloat64(vm.validationsTotal.WithLabelValues(SurfaceIngress, "valid")); got != 1 {
		t.Errorf("ingress valid = %v, want 1", got)
	}
	if got := testutil.ToFloat64(vm.validationsTotal.WithLabelValues(SurfaceIngress, "invalid")); got != 1 {
		t.Errorf("ingress invalid = %v, want 1", got)
	}
	if got := testutil.ToFloat64(vm.violationsTotal.WithLabelValues(SurfaceIngress)); got != 3 {
		t.Errorf("ingress violations = %v, want 3", got)
	}
	if got := testutil.ToFloat64(vm.violationsTotal.WithLabelValues(SurfaceEgress)); got != 2 {
		t.Errorf("egress violations = %v, want 2", got)
	}
}

func TestSamplingMetrics(t *testing.T) {
	c := newTestCollector(t)
	sm := c.Sampling()

	sm.RecordRun(OutcomeAccepted, 2)
	sm.RecordRun(OutcomeExhausted, 10)
	sm.RecordRun(OutcomeUnavailable, 0)
	sm.RecordExtractionFailure()

	if got := testutil.ToFloat64(sm.runsTotal.WithLabelValues(OutcomeAccepted)); got != 1 {
		t.Errorf("accepted runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(sm.runsTotal.WithLabelValues(OutcomeExhausted)); got != 1 {
		t.Errorf("exhausted runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(sm.extractionFailures); got != 1 {
		t.Errorf("extraction failures = %v, want 1", got)
	}
}

func TestGatewayMetrics(t *testing.T) {
	c := newTestCollector(t)
	gm := c.Gateway()

	gm.RecordRequest(GatewayOK, 10*time.Millisecond)
	gm.RecordRequest(GatewayIngressRejected, time.Millisecond)
	gm.RecordHealth(true, true, false)

	if got := testutil.ToFloat64(gm.requestsTotal.WithLabelValues(GatewayOK)); got != 1 {
		t.Errorf("ok requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(gm.healthy.WithLabelValues("validator")); got != 1 {
		t.Errorf("validator gauge = %v, want 1", got)
	}
	if got := testutil.ToFloat64(gm.healthy.WithLabelValues("generator")); got != 0 {
		t.Errorf("generator gauge = %v, want 0", got)
	}
}

func TestScrapeEndpoint(t *testing.T) {
	c := newTestCollector(t)
	c.Gateway().RecordRequest(GatewayOK, time.Millisecond)
	c.Sampling().RecordRun(OutcomeAccepted, 1)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{
		"ontoguard_engine_gateway_requests_total",
		"ontoguard_engine_sampling_runs_total",
		"ontoguard_engine_gateway_request_duration_seconds",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("scrape output missing %s", name)
		}
	}
}
