package server

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// APIKeyAuth returns middleware that validates the X-API-Key header. An
// empty configured key disables the check, keeping local and tsnet-only
// deployments friction-free.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	if apiKey == "" {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				writeError(w, http.StatusUnauthorized, "missing API key")
				return
			}
			if key != apiKey {
				writeError(w, http.StatusForbidden, "invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogging returns middleware that tags each request with an ID and
// logs it on completion.
func RequestLogging(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := uuid.NewString()
			w.Header().Set("X-Request-ID", reqID)

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			log.Info("request",
				"id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start).String(),
			)
		})
	}
}

// CORS adds permissive CORS headers; the frontend is served from a separate
// origin during development.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const (
	// limiterIdleTimeout is how long a client may sit unseen before its
	// limiter entry is eligible for eviction. Three minutes of idleness
	// refills any per-minute bucket anyway, so nothing is lost.
	limiterIdleTimeout = 3 * time.Minute

	// limiterSweepSize triggers a sweep of idle entries once the client map
	// reaches this size, keeping memory bounded on public endpoints.
	limiterSweepSize = 1024
)

// clientLimiter pairs a token bucket with the time its client was last seen.
type clientLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// rateLimiter tracks per-client token buckets keyed by remote IP.
type rateLimiter struct {
	mu      sync.Mutex
	perMin  int
	clients map[string]*clientLimiter
}

func newRateLimiter(perMinute int) *rateLimiter {
	return &rateLimiter{
		perMin:  perMinute,
		clients: make(map[string]*clientLimiter),
	}
}

// allow consumes one token from key's bucket, creating the bucket on first
// sight. Idle entries are swept once the map grows past limiterSweepSize.
func (rl *rateLimiter) allow(key string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if len(rl.clients) >= limiterSweepSize {
		rl.sweepLocked(now)
	}

	c, ok := rl.clients[key]
	if !ok {
		c = &clientLimiter{
			lim: rate.NewLimiter(rate.Limit(float64(rl.perMin)/60.0), rl.perMin),
		}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c.lim.Allow()
}

func (rl *rateLimiter) sweepLocked(now time.Time) {
	for k, c := range rl.clients {
		if now.Sub(c.lastSeen) > limiterIdleTimeout {
			delete(rl.clients, k)
		}
	}
}

// RateLimit returns middleware enforcing a per-client budget of perMinute
// requests, refilled continuously. Clients are keyed by remote IP. A
// non-positive budget disables the limit.
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	rl := newRateLimiter(perMinute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			if !rl.allow(host, time.Now()) {
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// statusWriter wraps ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
