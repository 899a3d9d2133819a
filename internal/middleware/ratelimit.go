package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig bounds how often a single client may hit an endpoint.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// clientIP resolves the caller's address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// RateLimit rejects requests beyond the configured per-address rate with a
// 429. Limiters for addresses idle longer than an hour are dropped.
func RateLimit(config RateLimitConfig) func(http.Handler) http.Handler {
	limit := rate.Limit(float64(config.RequestsPerWindow) / config.Window.Seconds())

	type entry struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
	var (
		mu      sync.Mutex
		entries = map[string]*entry{}
		swept   = time.Now()
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			mu.Lock()
			e, ok := entries[key]
			if !ok {
				e = &entry{limiter: rate.NewLimiter(limit, config.Burst)}
				entries[key] = e
			}
			e.lastSeen = time.Now()
			if time.Since(swept) > time.Hour {
				for k, v := range entries {
					if time.Since(v.lastSeen) > time.Hour {
						delete(entries, k)
					}
				}
				swept = time.Now()
			}
			allowed := e.limiter.Allow()
			mu.Unlock()

			if !allowed {
				http.Error(w, "Too many requests, slow down", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
