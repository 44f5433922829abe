package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ontoguard-hq/ontoguard/internal/generatortest"
	"ontoguard-hq/ontoguard/pkg/gateway"
	"ontoguard-hq/ontoguard/pkg/telemetry/health"
)

func TestHealthEndpoint(t *testing.T) {
	t.Run("healthy gateway", func(t *testing.T) {
		gw := newReadyGateway(t, true, generatortest.Respond(`{}`))
		h := NewHealthHandler(gw, nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
		}

		var agg gateway.Aggregate
		if err := json.Unmarshal(rec.Body.Bytes(), &agg); err != nil {
			t.Fatal(err)
		}
		if !agg.Healthy() {
			t.Errorf("aggregate = %+v", agg)
		}
	})

	t.Run("no schema loaded", func(t *testing.T) {
		gw := gateway.New(gateway.Config{}, nil, nil)
		h := NewHealthHandler(gw, nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("failing generator stays 200", func(t *testing.T) {
		mock := generatortest.Respond(`{}`)
		mock.HealthErr = errors.New("backend unreachable")
		gw := newReadyGateway(t, true, mock)
		h := NewHealthHandler(gw, nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, a generator failure must not flip the endpoint", rec.Code)
		}
	})

	t.Run("post not allowed", func(t *testing.T) {
		gw := newReadyGateway(t, true, nil)
		h := NewHealthHandler(gw, nil)

		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})
}

func TestReadyEndpoint(t *testing.T) {
	t.Run("all checks passing", func(t *testing.T) {
		checker := health.New(0)
		checker.RegisterCheck("gateway", func(ctx context.Context) error { return nil })
		h := NewReadyHandler(checker)

		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("failing check degrades readiness", func(t *testing.T) {
		checker := health.New(0)
		checker.RegisterCheck("gateway", func(ctx context.Context) error {
			return errors.New("not ready")
		})
		h := NewReadyHandler(checker)

		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})
}
