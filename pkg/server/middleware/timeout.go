package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// TimeoutMiddleware imposes a wall-clock budget on the whole request,
// spanning every sampling attempt inside it. On expiry the request
// context is cancelled and a 504 is written. The handler goroutine may
// outlive the deadline; its writes go through a guarded writer that
// discards them after the timeout, so they never race the 504 on the
// underlying ResponseWriter.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			tw := &timeoutWriter{w: w}
			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(tw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					tw.timeout()
				}
			}
		})
	}
}

// timeoutWriter serializes access to the underlying ResponseWriter
// between the handler goroutine and the timeout path.
type timeoutWriter struct {
	mu       sync.Mutex
	w        http.ResponseWriter
	timedOut bool
	wrote    bool
}

// Header returns a throwaway header map once the deadline has fired;
// the real headers belong to the 504 by then.
func (tw *timeoutWriter) Header() http.Header {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return http.Header{}
	}
	return tw.w.Header()
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.wrote {
		return
	}
	tw.wrote = true
	tw.w.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return len(b), nil
	}
	if !tw.wrote {
		tw.wrote = true
		tw.w.WriteHeader(http.StatusOK)
	}
	return tw.w.Write(b)
}

// timeout writes the 504 unless the handler already started a
// response, in which case that response is left to die with the
// cancelled context.
func (tw *timeoutWriter) timeout() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.timedOut = true
	if tw.wrote {
		return
	}
	tw.w.Header().Set("Content-Type", "application/json")
	tw.w.WriteHeader(http.StatusGatewayTimeout)
	_ = json.NewEncoder(tw.w).Encode(map[string]string{
		"error": "request timeout",
	})
}
