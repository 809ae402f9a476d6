// internal/server/routes.go
//
// Serve-mode router.
//
// Context
// -------
// Serve mode turns the resolver into a small validation endpoint for
// editor integrations and CI:
//
//	POST /validate        – body is template text; ?path= names an on-disk
//	                        template instead (body then ignored)
//	GET  /cache/stats     – result-cache counters
//	GET  /metrics         – Prometheus
//	GET  /healthz         – liveness
//
// Responses are the parser's output contract rendered as JSON; rich
// console/HTML rendering of diagnostics stays with external callers.
package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/jsontpl/internal/service"
	"github.com/yanizio/jsontpl/internal/template"
	"github.com/yanizio/jsontpl/internal/value"
)

// maxBodyBytes bounds /validate request bodies.
const maxBodyBytes = 4 << 20

// Routes builds the chi router for serve mode.
func Routes(svc *service.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger)
	r.Use(Security)

	r.Post("/validate", handleValidate(svc))
	r.Get("/cache/stats", handleCacheStats(svc))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

// validateResponse is the wire form of one validation run.
type validateResponse struct {
	Valid         bool                    `json:"valid"`
	ExtractedJSON string                  `json:"extractedJson,omitempty"`
	Imports       []template.ImportInfo   `json:"imports"`
	SourceMap     []template.Mapping      `json:"sourceMap"`
	Errors        []template.ParseError   `json:"errors"`
	Warnings      []template.ParseWarning `json:"warnings"`
	Stats         template.Stats          `json:"stats"`
}

func handleValidate(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var res *template.Result
		if path := r.URL.Query().Get("path"); path != "" {
			var err error
			res, err = svc.ParseFile(path)
			if err != nil {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
		} else {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
			if err != nil {
				http.Error(w, "read body", http.StatusBadRequest)
				return
			}
			res = svc.Parse(body, "")
		}

		resp := validateResponse{
			Valid:     res.OK(),
			Imports:   res.Imports,
			SourceMap: res.SourceMap,
			Errors:    res.Errors,
			Warnings:  res.Warnings,
			Stats:     res.Stats,
		}
		if res.ExtractedJSON != nil {
			resp.ExtractedJSON = value.Encode(*res.ExtractedJSON)
		}
		writeJSON(w, resp)
	}
}

func handleCacheStats(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, svc.CacheStats())
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("encode response", "err", err)
	}
}
