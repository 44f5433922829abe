// Package metrics exposes the engine's Prometheus metrics: validation
// outcomes per surface, sampling run results and attempt counts, and
// gateway request outcomes plus component health gauges. All metrics
// register against one Collector-owned registry served by Handler.
package metrics
