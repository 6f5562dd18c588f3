// Package middleware holds the HTTP middleware stack: request ids, panic
// recovery, request logging, CORS, per-IP rate limiting for the public intake
// endpoints, and bearer-token staff auth.
package middleware

import "net/http"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain combines middleware into one. Order is outermost first:
// Chain(mw1, mw2)(h) is mw1(mw2(h)), so mw1 sees the request first.
func Chain(mws ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			final = mws[i](final)
		}
		return final
	}
}
