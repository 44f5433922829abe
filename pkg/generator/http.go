package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"

	"ontoguard-hq/ontoguard/pkg/telemetry/logging"
)

// Config contains configuration for the HTTP generator backend.
type Config struct {
	// Name identifies the generator in logs and errors.
	Name string

	// BaseURL is the backend base URL (e.g. "http://localhost:8081").
	BaseURL string

	// CompletionPath is the completion endpoint path
	// (default "/v1/completions").
	CompletionPath string

	// HealthPath is the health endpoint path (default "/health").
	HealthPath string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Model is the model identifier passed to the backend.
	Model string

	// MaxTokens caps the completion length (0 leaves it to the backend).
	MaxTokens int

	// Temperature is the sampling temperature passed to the backend.
	Temperature float64

	// Timeout bounds a single request (default 30s).
	Timeout time.Duration

	// MaxRetries is the number of retries for transient faults
	// (5xx, network errors) with exponential backoff.
	MaxRetries int

	// Connection pool tuning.
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
}

// applyDefaults fills zero values with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "generator"
	}
	if c.CompletionPath == "" {
		c.CompletionPath = "/v1/completions"
	}
	if c.HealthPath == "" {
		c.HealthPath = "/health"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 32
	}
	if c.MaxIdleConnsPerHost <= 0 {
		c.MaxIdleConnsPerHost = 8
	}
	if c.IdleConnTimeout <= 0 {
		c.IdleConnTimeout = 90 * time.Second
	}
}

// HTTPGenerator talks to a generic HTTP completion backend. It provides
// connection pooling, retry with exponential backoff for transient
// faults, timeout handling and health tracking with a consecutive
// failure circuit.
type HTTPGenerator struct {
	config Config
	client *http.Client
	logger *logging.Logger

	healthMu sync.RWMutex
	health   Health
}

// completionRequest is the wire request of the generic backend.
type completionRequest struct {
	Model       string  `json:"model,omitempty"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// completionResponse is the wire response. Both the flat {"text": ...}
// shape and the choices shape are accepted.
type completionResponse struct {
	Text    string `json:"text"`
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// NewHTTPGenerator creates an HTTP generator backend.
func NewHTTPGenerator(cfg Config, logger *logging.Logger) (*HTTPGenerator, error) {
	cfg.applyDefaults()
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("generator %q: base URL is required", cfg.Name)
	}
	if logger == nil {
		logger = logging.Default()
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPGenerator{
		config: cfg,
		client: &http.Client{Transport: transport, Timeout: cfg.Timeout},
		logger: logger.With("generator", cfg.Name),
		health: Health{
			IsHealthy: true, // start optimistic
			LastCheck: time.Now(),
		},
	}, nil
}

// Name implements Generator.
func (g *HTTPGenerator) Name() string { return g.config.Name }

// IsHealthy returns the current circuit state.
func (g *HTTPGenerator) IsHealthy() bool {
	g.healthMu.RLock()
	defer g.healthMu.RUnlock()
	return g.health.IsHealthy
}

// GetHealth returns a snapshot of the health tracking.
func (g *HTTPGenerator) GetHealth() Health {
	g.healthMu.RLock()
	defer g.healthMu.RUnlock()
	return g.health
}

// updateHealth records the outcome of a request or probe.
func (g *HTTPGenerator) updateHealth(success bool, err error) {
	g.healthMu.Lock()
	defer g.healthMu.Unlock()

	g.health.LastCheck = time.Now()
	g.health.TotalRequests++

	if success {
		g.health.IsHealthy = true
		g.health.ConsecutiveFailures = 0
		g.health.LastError = nil
		return
	}

	g.health.FailedRequests++
	g.health.ConsecutiveFailures++
	g.health.LastError = err

	// Trip the circuit after 3 consecutive failures.
	if g.health.ConsecutiveFailures >= 3 && g.health.IsHealthy {
		g.health.IsHealthy = false
		g.logger.Warn("generator marked unhealthy",
			"consecutive_failures", g.health.ConsecutiveFailures,
			"error", err,
		)
	}
}

// Generate implements Generator. Transient faults (network errors, 5xx)
// are retried with exponential backoff up to MaxRetries; authentication
// rejections surface as *UnavailableError.
func (g *HTTPGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(completionRequest{
		Model:       g.config.Model,
		Prompt:      prompt,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return "", &RequestError{Generator: g.config.Name, Message: "failed to marshal request", Cause: err}
	}

	url := g.config.BaseURL + g.config.CompletionPath

	var lastErr error
	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			g.logger.Debug("retrying generation request",
				"attempt", attempt,
				"max_retries", g.config.MaxRetries,
				"backoff", backoff,
			)
			select {
			case <-ctx.Done():
				g.updateHealth(false, ctx.Err())
				return "", &TimeoutError{Generator: g.config.Name, Timeout: g.config.Timeout}
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
		if err != nil {
			return "", &RequestError{Generator: g.config.Name, Message: "failed to create request", Cause: err}
		}
		req.Header.Set("Content-Type", "application/json")
		if g.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+g.config.APIKey)
		}

		resp, err := g.client.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				g.updateHealth(false, err)
				return "", &TimeoutError{Generator: g.config.Name, Timeout: g.config.Timeout}
			}
			g.logger.Warn("generation request failed, will retry",
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if readErr != nil {
				g.updateHealth(false, readErr)
				return "", &RequestError{Generator: g.config.Name, Message: "failed to read response", Cause: readErr}
			}
			text, err := decodeCompletion(g.config.Name, body)
			if err != nil {
				g.updateHealth(false, err)
				return "", err
			}
			g.updateHealth(true, nil)
			return text, nil

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			// Authentication failures never heal on retry.
			err := &UnavailableError{
				Generator: g.config.Name,
				Message:   fmt.Sprintf("authentication rejected (status %d)", resp.StatusCode),
			}
			g.updateHealth(false, err)
			return "", err

		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			err := &RequestError{
				Generator:  g.config.Name,
				StatusCode: resp.StatusCode,
				Message:    string(body),
			}
			g.updateHealth(false, err)
			return "", err

		default:
			lastErr = &RequestError{
				Generator:  g.config.Name,
				StatusCode: resp.StatusCode,
				Message:    string(body),
			}
			g.logger.Warn("generation request returned error status, will retry",
				"status", resp.StatusCode,
				"attempt", attempt+1,
			)
		}
	}

	g.updateHealth(false, lastErr)

	// Connection-level failure that survived every retry: the backend
	// is treated as unavailable rather than as a bad attempt.
	if _, ok := lastErr.(*RequestError); !ok {
		return "", &UnavailableError{
			Generator: g.config.Name,
			Message:   "backend unreachable after retries",
			Cause:     lastErr,
		}
	}
	return "", lastErr
}

// decodeCompletion extracts the completion text from a response body.
func decodeCompletion(name string, body []byte) (string, error) {
	var cr completionResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", &RequestError{Generator: name, Message: "malformed completion response", Cause: err}
	}
	if cr.Text != "" {
		return cr.Text, nil
	}
	if len(cr.Choices) > 0 {
		return cr.Choices[0].Text, nil
	}
	return "", &RequestError{Generator: name, Message: "completion response carried no text"}
}

// HealthCheck implements Generator. It performs a lightweight GET
// against the health endpoint.
func (g *HTTPGenerator) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.config.BaseURL+g.config.HealthPath, nil)
	if err != nil {
		return err
	}
	if g.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.config.APIKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.updateHealth(false, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("health endpoint returned status %d", resp.StatusCode)
		g.updateHealth(false, err)
		return err
	}

	g.updateHealth(true, nil)
	return nil
}

// Close implements Generator.
func (g *HTTPGenerator) Close() error {
	g.client.CloseIdleConnections()
	g.logger.Debug("generator closed")
	return nil
}
