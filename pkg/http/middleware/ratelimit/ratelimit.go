// Package ratelimit throttles a route group with a token bucket.
package ratelimit

import (
	"encoding/json"
	"net/http"

	"golang.org/x/time/rate"
)

// NewRateLimitMiddleware allows rps requests per second with bursts of
// burst. Excess requests get 429 without reaching the handler.
func NewRateLimitMiddleware(rps float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":   "Too Many Requests",
					"message": "Too many printer requests, try again shortly",
				})

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
