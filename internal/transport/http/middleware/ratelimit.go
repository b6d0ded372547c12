package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/cardvault-api/internal/pkg/ratelimit"
)

// ClientIP extracts the client key used for rate limiting: the first hop of
// X-Forwarded-For when present (the API sits behind a proxy in production),
// otherwise the connection's remote address without the port.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit enforces a per-client-IP limit using the given keyed limiter.
func RateLimit(limiter *ratelimit.Keyed) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(ClientIP(r)) {
				writeJSONError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
