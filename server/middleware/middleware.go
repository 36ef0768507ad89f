package middleware

import "net/http"

// Middleware wraps an http.Handler. Everything that must see every request,
// including preflights and unmatched routes, is written in this form and
// applied around the whole server handler.
type Middleware func(http.Handler) http.Handler

// Chain composes middleware; the first is outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
