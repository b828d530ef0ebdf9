package server

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// TestAPIKeyAuth verifies the header check: missing key is 401, wrong key is
// 403, the right key passes.
func TestAPIKeyAuth(t *testing.T) {
	handler := APIKeyAuth("secret")(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing key status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong key status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid key status = %d, want 200", rec.Code)
	}
}

// TestAPIKeyAuthDisabled verifies an empty configured key passes everything
// through untouched.
func TestAPIKeyAuthDisabled(t *testing.T) {
	handler := APIKeyAuth("")(okHandler())
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

// TestRateLimitBlocks verifies the per-client budget: with a budget of one
// request per minute, the second immediate request from the same client is
// rejected with 429.
func TestRateLimitBlocks(t *testing.T) {
	handler := RateLimit(1)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:4711"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", rec.Header().Get("Retry-After"))
	}
}

// TestRateLimitPerClient verifies different client IPs get independent budgets.
func TestRateLimitPerClient(t *testing.T) {
	handler := RateLimit(1)(okHandler())

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "198.51.100.8:1000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("first client status = %d, want 200", rec.Code)
	}

	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.RemoteAddr = "198.51.100.9:1000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	if rec.Code != http.StatusOK {
		t.Errorf("second client status = %d, want 200 (independent budget)", rec.Code)
	}
}

// TestRateLimitDisabled verifies a non-positive budget passes everything through.
func TestRateLimitDisabled(t *testing.T) {
	handler := RateLimit(0)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}
}

// TestRateLimiterSweep verifies that idle client entries are evicted once
// the map reaches the sweep threshold, so the limiter's memory stays bounded.
func TestRateLimiterSweep(t *testing.T) {
	rl := newRateLimiter(10)
	start := time.Now()

	for i := 0; i < limiterSweepSize; i++ {
		rl.allow(fmt.Sprintf("198.51.%d.%d", i/256, i%256), start)
	}
	if len(rl.clients) != limiterSweepSize {
		t.Fatalf("clients before sweep = %d, want %d", len(rl.clients), limiterSweepSize)
	}

	// A request long after the idle timeout sweeps everything stale.
	rl.allow("203.0.113.1", start.Add(limiterIdleTimeout+time.Minute))
	if len(rl.clients) != 1 {
		t.Errorf("clients after sweep = %d, want 1", len(rl.clients))
	}

	// Within the idle window, nothing is evicted.
	rl = newRateLimiter(10)
	for i := 0; i < limiterSweepSize; i++ {
		rl.allow(fmt.Sprintf("198.51.%d.%d", i/256, i%256), start)
	}
	rl.allow("203.0.113.1", start.Add(time.Minute))
	if len(rl.clients) != limiterSweepSize+1 {
		t.Errorf("clients = %d, want %d (active entries kept)", len(rl.clients), limiterSweepSize+1)
	}
}

// TestCORSPreflight verifies OPTIONS requests are answered directly with the
// CORS headers set.
func TestCORSPreflight(t *testing.T) {
	handler := CORS(okHandler())
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("allow-origin = %q, want *", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

// TestRequestLogging verifies the middleware tags responses with a request
// ID and passes the handler's status through.
func TestRequestLogging(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := RequestLogging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}
