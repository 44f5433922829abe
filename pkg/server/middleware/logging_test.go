package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"ontoguard-hq/ontoguard/pkg/telemetry/logging"
)

func TestLoggingMiddlewareStartTime(t *testing.T) {
	handler := LoggingMiddleware(logging.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetStartTime(r.Context()).IsZero() {
			t.Error("start time missing from context")
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestResponseWriterStatusCapture(t *testing.T) {
	t.Run("explicit status", func(t *testing.T) {
		rw := newResponseWriter(httptest.NewRecorder())
		rw.WriteHeader(http.StatusNotFound)
		rw.WriteHeader(http.StatusOK) // second call ignored
		if rw.statusCode != http.StatusNotFound {
			t.Errorf("statusCode = %d, want 404", rw.statusCode)
		}
	})

	t.Run("implicit 200 on write", func(t *testing.T) {
		rw := newResponseWriter(httptest.NewRecorder())
		if _, err := rw.Write([]byte("ok")); err != nil {
			t.Fatal(err)
		}
		if rw.statusCode != http.StatusOK {
			t.Errorf("statusCode = %d, want 200", rw.statusCode)
		}
	})
}
