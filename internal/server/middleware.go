// internal/server/middleware.go
//
// Serve-mode middleware: request logging and security headers.
//
// Context
// -------
// The validation endpoint is typically fronted by editor plugins and CI
// jobs, so per-request log lines carry enough to correlate a failing job
// with a parse (method, path, status, duration, body size).  Security
// headers are the JSON-API subset; the middleware never overwrites a value
// a handler already set.
//
// Oxford commas, two spaces after periods.

package server

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequestLogger logs one structured line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		zap.S().Infow("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", float64(time.Since(start).Microseconds())/1000,
			"remote", r.RemoteAddr,
		)
	})
}

// Security sets response headers appropriate for a JSON API.
func Security(next http.Handler) http.Handler {
	const (
		nosn  = "nosniff"
		xfo   = "DENY"
		refer = "no-referrer"
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Set before the handler runs; headers added after the first write
		// are silently dropped.  Handlers may still overwrite.
		if w.Header().Get("X-Content-Type-Options") == "" {
			w.Header().Add("X-Content-Type-Options", nosn)
		}
		if w.Header().Get("X-Frame-Options") == "" {
			w.Header().Add("X-Frame-Options", xfo)
		}
		if w.Header().Get("Referrer-Policy") == "" {
			w.Header().Add("Referrer-Policy", refer)
		}
		next.ServeHTTP(w, r)
	})
}
