package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/nativefetch/logger"
)

// RequestLogger logs every request with its status, size and duration.
// Health and version probes are skipped.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isProbe(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)

			fields := logger.MergeWithDuration(map[string]interface{}{
				logger.FieldMethod: r.Method,
				"path":             r.URL.Path,
				logger.FieldStatus: rec.Status(),
				"bytes":            rec.bytes,
				"proto":            r.Proto,
			}, time.Since(start))
			logByStatus(log.WithContext(r.Context()), fields, rec.Status())
		})
	}
}

func isProbe(path string) bool {
	switch path {
	case "/health", "/ready", "/version":
		return true
	}
	return false
}

// logByStatus logs request fields at the level matching the HTTP status.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
