package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"ontoguard-hq/ontoguard/pkg/telemetry/logging"
)

// Prober runs the gateway health aggregate on a cron schedule and logs
// transitions, so operators see degradation between scrapes.
type Prober struct {
	gateway  *Gateway
	schedule string
	cron     *cron.Cron
	logger   *logging.Logger

	mu          sync.Mutex
	running     bool
	lastHealthy bool
	onResult    func(*Aggregate)
}

// NewProber creates a health prober. The schedule uses standard cron
// syntax (e.g. "*/5 * * * *" for every five minutes). An empty schedule
// disables the prober.
func NewProber(gw *Gateway, schedule string, logger *logging.Logger) *Prober {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Prober{
		gateway:     gw,
		schedule:    schedule,
		cron:        cron.New(),
		logger:      logger,
		lastHealthy: true,
	}
}

// OnResult registers a callback invoked with every probe result, used
// to feed metrics. Must be called before Start.
func (p *Prober) OnResult(fn func(*Aggregate)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onResult = fn
}

// Start begins scheduled probing. It validates the cron expression up
// front and stops automatically when the context is cancelled.
func (p *Prober) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.schedule == "" {
		p.logger.Info("health probe schedule not configured, skipping prober")
		return nil
	}

	if _, err := cron.ParseStandard(p.schedule); err != nil {
		return fmt.Errorf("invalid probe schedule %q: %w", p.schedule, err)
	}

	if _, err := p.cron.AddFunc(p.schedule, func() {
		p.runProbe(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule health probe: %w", err)
	}

	p.cron.Start()
	p.running = true
	p.logger.Info("health prober started", "schedule", p.schedule)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

// runProbe executes one probe cycle.
func (p *Prober) runProbe(ctx context.Context) {
	agg := p.gateway.CheckHealth(ctx)

	p.mu.Lock()
	changed := agg.Healthy() != p.lastHealthy
	p.lastHealthy = agg.Healthy()
	onResult := p.onResult
	p.mu.Unlock()

	if onResult != nil {
		onResult(agg)
	}

	switch {
	case changed && !agg.Healthy():
		p.logger.Error("gateway became unhealthy",
			"validator_ok", agg.ValidatorOK,
			"schema_ok", agg.SchemaOK,
			"generator_ok", agg.GeneratorOK,
			"errors", agg.Errors,
		)
	case changed:
		p.logger.Info("gateway recovered")
	case !agg.GeneratorOK:
		p.logger.Warn("generator probe failing", "errors", agg.Errors)
	default:
		p.logger.Debug("health probe completed", "status", agg.Status)
	}
}

// Stop stops the prober and waits for a running probe to finish. The
// wait happens outside the mutex: a probe that is mid-run still needs
// it to record its result.
func (p *Prober) Stop() {
	p.mu.Lock()
	if p.cron == nil || !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	c := p.cron
	p.mu.Unlock()

	<-c.Stop().Done()
	p.logger.Info("health prober stopped")
}
