package middleware

import (
	"net"
	"net/http"

	"github.com/leanttro/storefront/internal/limiter"
)

// Throttle limits a sensitive action per client IP. onLimited, when set,
// observes rejections.
func Throttle(l limiter.Limiter, action string, onLimited func(action string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(r.Context(), clientIP(r), action) {
				if onLimited != nil {
					onLimited(action)
				}
				http.Error(w, "Muitas tentativas. Tente novamente em instantes.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP trusts RemoteAddr, which the RealIP middleware has already
// rewritten from forwarding headers when the service sits behind a proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
