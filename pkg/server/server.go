package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"ontoguard-hq/ontoguard/pkg/config"
	"ontoguard-hq/ontoguard/pkg/gateway"
	"ontoguard-hq/ontoguard/pkg/server/handlers"
	"ontoguard-hq/ontoguard/pkg/server/middleware"
	"ontoguard-hq/ontoguard/pkg/telemetry/health"
	"ontoguard-hq/ontoguard/pkg/telemetry/logging"
	"ontoguard-hq/ontoguard/pkg/telemetry/metrics"
)

// Server is the HTTP serving surface for the validation gateway.
type Server struct {
	config     *config.ServerConfig
	gateway    *gateway.Gateway
	checker    *health.Checker
	collector  *metrics.Collector
	logger     *logging.Logger
	httpServer *http.Server

	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server. The metrics collector may be nil when metrics
// are disabled.
func New(cfg *config.ServerConfig, gw *gateway.Gateway, checker *health.Checker, collector *metrics.Collector, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Default()
	}
	return &Server{
		config:       cfg,
		gateway:      gw,
		checker:      checker,
		collector:    collector,
		logger:       logger,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown, triggered by
// context cancellation, SIGINT/SIGTERM or Shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.setupRoutes(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// setupRoutes configures routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	var gatewayMetrics *metrics.GatewayMetrics
	if s.collector != nil {
		gatewayMetrics = s.collector.Gateway()
	}

	mux.Handle("/v1/predict", handlers.NewPredictHandler(s.gateway, gatewayMetrics, s.logger))
	mux.Handle("/health", handlers.NewHealthHandler(s.gateway, gatewayMetrics))
	mux.Handle("/ready", handlers.NewReadyHandler(s.checker))
	if s.collector != nil {
		mux.Handle("/metrics", s.collector.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.TimeoutMiddleware(s.config.RequestTimeout)(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.LoggingMiddleware(s.logger)(handler)
	handler = middleware.RecoveryMiddleware(s.logger)(handler)

	return handler
}
