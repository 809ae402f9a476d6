// internal/server/routes_test.go
//
// Run: go test ./internal/server -v

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yanizio/jsontpl/internal/service"
	"github.com/yanizio/jsontpl/internal/template"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc := service.New(template.Options{}, 8, time.Minute, nil)
	return Routes(svc)
}

func TestValidateBody(t *testing.T) {
	h := newTestRouter(t)

	body := `{"enabled": {{isEnabled}}}`
	req := httptest.NewRequest(http.MethodPost, "/validate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Valid         bool   `json:"valid"`
		ExtractedJSON string `json:"extractedJson"`
		Warnings      []struct {
			Kind string `json:"kind"`
		} `json:"warnings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Valid {
		t.Errorf("valid = false: %s", rec.Body.String())
	}
	if resp.ExtractedJSON != `{"enabled":false}` {
		t.Errorf("extracted = %q", resp.ExtractedJSON)
	}
	if len(resp.Warnings) != 1 {
		t.Errorf("warnings = %d, want 1 implicit conversion", len(resp.Warnings))
	}
}

func TestValidateBrokenDocument(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/validate", strings.NewReader(`{"a": }`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	// Diagnostics travel in the body; the transport itself succeeded.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Valid  bool `json:"valid"`
		Errors []struct {
			Kind string `json:"kind"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Valid || len(resp.Errors) == 0 {
		t.Errorf("broken document should report errors: %s", rec.Body.String())
	}
}

func TestValidateMissingPath(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/validate?path=/no/such/file.json", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCacheStatsEndpoint(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/cache/stats", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var stats struct {
		MaxSize int `json:"maxSize"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.MaxSize != 8 {
		t.Errorf("maxSize = %d, want 8", stats.MaxSize)
	}
}

func TestHealthz(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}
