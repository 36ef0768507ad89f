package middleware

import (
	"net/http"

	apperrors "github.com/kbukum/fileproxy/errors"
)

// BodySizeLimit caps request bodies at maxBytes. Requests that declare a
// larger Content-Length get 413 immediately; streamed bodies fail with
// *http.MaxBytesError once the limit is crossed. maxBytes <= 0 disables it.
func BodySizeLimit(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				WriteError(w, apperrors.PayloadTooLarge())
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
