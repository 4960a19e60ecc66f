package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/evyataryagoni/iplocation/internal/limiter"
	"github.com/evyataryagoni/iplocation/internal/models"
)

// RateLimitMiddleware enforces the limiter per client and answers 429 when
// a client is over its limit. The client address is r.RemoteAddr, so chi's
// RealIP middleware must run first when the server sits behind a proxy.
func RateLimitMiddleware(lim limiter.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow(limiter.ClientKey(r.RemoteAddr)) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(models.ErrorResponse{
					Error: "Rate limit exceeded. Please try again later.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
