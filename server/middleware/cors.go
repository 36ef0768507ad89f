package middleware

import (
	"net/http"
	"slices"
)

// Fixed CORS response values.
const (
	AllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	AllowHeaders = "Content-Type, Authorization"
	MaxAge       = "86400"
)

// ResolveOrigin picks the Access-Control-Allow-Origin value. A listed
// origin, or any origin when the list holds "*", is echoed back. Otherwise
// the first configured entry is returned, or "*" for an empty list.
func ResolveOrigin(origin string, allowed []string) string {
	if slices.Contains(allowed, origin) || slices.Contains(allowed, "*") {
		return origin
	}
	if len(allowed) > 0 {
		return allowed[0]
	}
	return "*"
}

// SetCORSHeaders writes the CORS headers for a request from origin.
func SetCORSHeaders(h http.Header, origin string, allowed []string) {
	h.Set("Access-Control-Allow-Origin", ResolveOrigin(origin, allowed))
	h.Set("Access-Control-Allow-Methods", AllowMethods)
	h.Set("Access-Control-Allow-Headers", AllowHeaders)
	h.Set("Access-Control-Max-Age", MaxAge)
	h.Add("Vary", "Origin")
}

// CORS sets the headers on every response and answers OPTIONS with 204
// before anything else runs. It never rejects a request.
func CORS(allowed []string) Middleware {
	allowed = slices.Clone(allowed)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			SetCORSHeaders(w.Header(), r.Header.Get("Origin"), allowed)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
