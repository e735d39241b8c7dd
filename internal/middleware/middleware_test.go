package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_Burst(t *testing.T) {
	rl := NewRateLimiter(60, 3, nil)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d within burst must pass", i)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("request over burst must be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("limits are per key")
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(60, 1, nil)
	defer rl.Close()

	rl.Allow("a")
	rl.Allow("b")
	rl.cleanup(time.Now().Add(time.Second))

	if rl.Size() != 0 {
		t.Errorf("idle limiters must be removed, %d left", rl.Size())
	}
	rl.Close()
}

func TestHTTPRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(60, 1, nil)
	defer rl.Close()

	h := HTTPRateLimitMiddleware(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 2)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/api/days", nil)
		req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes[i] = rec.Code
	}

	if codes[0] != http.StatusNoContent || codes[1] != http.StatusTooManyRequests {
		t.Errorf("unexpected status codes %v", codes)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	if ip := ClientIP(req); ip != "192.0.2.1" {
		t.Errorf("expected remote host, got %q", ip)
	}

	req.Header.Set("X-Real-IP", "203.0.113.7")
	if ip := ClientIP(req); ip != "203.0.113.7" {
		t.Errorf("expected X-Real-IP, got %q", ip)
	}
}

func TestPrometheusMiddleware_CapturesStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /teapot", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	PrometheusMiddleware(mux).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status must pass through, got %d", rec.Code)
	}
}
