package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout bounds the request context to d. Handlers and the upstream client
// observe the deadline through the context and report the failure
// themselves, so nothing here writes to the response.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if d <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
