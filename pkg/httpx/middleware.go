// Package httpx holds the HTTP plumbing shared by every handler: the
// middleware chain, bearer authentication, role gating, per-key rate
// limiting, CORS and the JSON response helpers.
package httpx

import (
	"context"
	"net/http"
	"time"
)

// Middleware wraps a handler with additional behaviour.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to h so the first listed runs outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// TimeoutMiddleware bounds each request with a deadline so a stuck
// store call cannot hold a connection open indefinitely. Handlers see
// the deadline through the request context.
func TimeoutMiddleware(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
