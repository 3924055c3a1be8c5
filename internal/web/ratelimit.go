package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
)

// Rate limit defaults per client IP.
const (
	DefaultRateLimit  = 60
	DefaultRateWindow = time.Minute
)

// RateLimiter is a fixed-window per-IP rate limit backed by Redis.
// The counter for an IP is incremented on every request and expires at
// the end of the window; exceeding the limit yields 429 until the window
// rolls over. A Redis failure lets the request through.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRateLimiter creates a rate limiter. Non-positive limit or window fall
// back to the defaults.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if window <= 0 {
		window = DefaultRateWindow
	}
	return &RateLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
	}
}

// Middleware wraps a handler with the rate limit check. middleware.RealIP
// must run earlier in the chain so RemoteAddr carries the client IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("rate:%s", r.RemoteAddr)
		count, err := rl.client.Incr(r.Context(), key).Result()
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			rl.client.Expire(r.Context(), key, rl.window)
		}
		if count > rl.limit {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(rl.window.Seconds())))
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
