package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTimeoutPassesThroughFastHandler(t *testing.T) {
	h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != "ok" {
		t.Fatalf("unexpected body: %q", rr.Body.String())
	}
}

func TestTimeoutDropsLateHandlerWrites(t *testing.T) {
	release := make(chan struct{})
	handlerDone := make(chan struct{})

	h := Timeout(10*time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(handlerDone)
		<-release
		// These arrive after the 504 was written and must be dropped.
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("too late"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rr.Code)
	}

	close(release)
	select {
	case <-handlerDone:
	case <-time.After(time.Second):
		t.Fatal("handler did not finish")
	}

	if !strings.Contains(rr.Body.String(), "gateway_timeout") {
		t.Fatalf("unexpected body: %q", rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "too late") {
		t.Fatalf("late handler write leaked into the response: %q", rr.Body.String())
	}
}
