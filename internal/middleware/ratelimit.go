package middleware

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"
)

// RateLimit rejects requests with 429 once limiter runs out of tokens.
// The limiter is shared by every caller of the wrapped routes.
func RateLimit(limiter *rate.Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				logger.Warn("too many requests", slog.String("path", r.URL.Path))
				w.Header().Set("Retry-After", "1")
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, map[string]string{
					"error":   "rate_limited",
					"message": "too many attempts, try again shortly",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
