package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "github.com/kbukum/fileproxy/errors"
	"github.com/kbukum/fileproxy/logger"
)

// Recovery turns a handler panic into 500 {"error":"Internal error"}. A
// panic after the response started, or http.ErrAbortHandler, is re-raised
// so net/http drops the connection instead of appending an error body.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			out := record(w)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.WithContext(r.Context()).Error("panic recovered", map[string]interface{}{
					logger.FieldError: fmt.Sprintf("%v", rec),
					"stack":           string(debug.Stack()),
					"method":          r.Method,
					"path":            r.URL.Path,
				})
				if out.committed() {
					panic(http.ErrAbortHandler)
				}
				WriteError(out, apperrors.Internal(nil))
			}()
			next.ServeHTTP(out, r)
		})
	}
}

// WriteError writes appErr as a JSON error body.
func WriteError(w http.ResponseWriter, appErr *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Del("Content-Length")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(appErr.ToResponse())
}
