package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"oncolife-rag-gateway/pkg/logging"

	"go.uber.org/zap"
)

// Timeout cancels the request context after d and returns 504 if still running.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			r = r.WithContext(ctx)

			tw := &timeoutWriter{ResponseWriter: w}

			done := make(chan struct{})
			go func() {
				next.ServeHTTP(tw, r)
				close(done)
			}()

			select {
			case <-done:
				return
			case <-ctx.Done():
				// context timeout/cancelled
				logger := logging.L(ctx)
				logger.Warn("request timeout", zap.Duration("timeout", d))
				tw.mu.Lock()
				defer tw.mu.Unlock()
				tw.timedOut = true
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusGatewayTimeout)
				_, _ = w.Write([]byte(`{"error":"gateway_timeout"}`))
			}
		})
	}
}

// timeoutWriter serializes writes to the underlying ResponseWriter and drops
// anything the handler goroutine writes after the 504 has been sent.
type timeoutWriter struct {
	http.ResponseWriter
	mu       sync.Mutex
	timedOut bool
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return
	}
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return len(b), nil
	}
	return tw.ResponseWriter.Write(b)
}
