package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/fileproxy/logger"
)

var quietPaths = map[string]bool{"/health": true, "/version": true}

// RequestLogger logs each request once it completes: 5xx at error, 4xx at
// warn, everything else at debug. Health and version probes are skipped.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)
			status := rec.code()

			fields := map[string]interface{}{
				"method":             r.Method,
				"path":               r.URL.Path,
				logger.FieldStatus:   status,
				logger.FieldDuration: time.Since(start).Milliseconds(),
				"bytes":              rec.bytes,
			}
			l := log.WithContext(r.Context())
			switch {
			case status >= 500:
				l.Error("request completed", fields)
			case status >= 400:
				l.Warn("request completed", fields)
			default:
				l.Debug("request completed", fields)
			}
		})
	}
}
