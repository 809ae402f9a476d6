// internal/service/service.go
//
// Memoizing facade over the template parser.
//
// Context
// -------
// Parsing and validating a template tree means file reads, regex scanning,
// and a full JSON decode, so repeated requests for unchanged content are
// served from the result cache instead.  Keys are content-addressed
// (`path + ":" + sha256(content)`), which makes staleness impossible: any
// edit changes the key, and the stale entry simply ages out via TTL or LRU
// pressure.
//
// The underlying cache is not internally synchronised; every cache touch
// here happens under s.mu.  Concurrent first requests for the same key are
// collapsed with singleflight so a burst of identical validations performs
// one parse.
package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/jsontpl/internal/cache"
	"github.com/yanizio/jsontpl/internal/metrics"
	"github.com/yanizio/jsontpl/internal/template"
)

// Service couples a Parser with a bounded TTL result cache.
type Service struct {
	parser *template.Parser
	log    *zap.SugaredLogger

	mu    sync.Mutex
	cache *cache.Cache[*template.Result]
	sfg   singleflight.Group
}

// New constructs a Service.  maxEntries and defaultTTL size the result
// cache; opts configure the parser.
func New(opts template.Options, maxEntries int, defaultTTL time.Duration, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.S()
	}
	return &Service{
		parser: template.New(opts),
		cache:  cache.New[*template.Result](maxEntries, defaultTTL),
		log:    log,
	}
}

// ParseFile resolves and validates the template at path, memoising by
// content identity.  The returned Result is shared between callers and must
// be treated as read-only.
func (s *Service) ParseFile(path string) (*template.Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	return s.parse(src, abs), nil
}

// Parse resolves and validates in-memory template text.  origin may be
// empty; it anchors relative imports and names diagnostics.
func (s *Service) Parse(src []byte, origin string) *template.Result {
	return s.parse(src, origin)
}

func (s *Service) parse(src []byte, origin string) *template.Result {
	key := cacheKey(origin, src)

	s.mu.Lock()
	if res, ok := s.cache.Get(key); ok {
		s.mu.Unlock()
		metrics.CacheHitsTotal.Inc()
		return res
	}
	s.mu.Unlock()
	metrics.CacheMissesTotal.Inc()

	v, _, _ := s.sfg.Do(key, func() (any, error) {
		// Double-check after the singleflight barrier.  Has keeps the losing
		// flight from booking a second miss for one request, but only Get's
		// ok is authoritative: the TTL can lapse between the two calls.
		s.mu.Lock()
		if s.cache.Has(key) {
			if res, ok := s.cache.Get(key); ok {
				s.mu.Unlock()
				return res, nil
			}
		}
		s.mu.Unlock()

		res := s.parser.Parse(src, origin)
		s.record(origin, res)

		s.mu.Lock()
		s.cache.Set(key, res)
		metrics.CacheEntries.Set(float64(s.cache.Len()))
		s.mu.Unlock()
		return res, nil
	})
	return v.(*template.Result)
}

// record emits metrics and one log line per parse.
func (s *Service) record(origin string, res *template.Result) {
	metrics.ParseTotal.Inc()
	metrics.ImportExpandTotal.Add(float64(res.Stats.ImportCount))
	importErrs := 0
	for _, e := range res.Errors {
		switch e.Kind {
		case template.ErrImport, template.ErrCircularImport, template.ErrFileNotFound:
			importErrs++
		}
	}
	metrics.ImportErrorsTotal.Add(float64(importErrs))
	if len(res.Errors) > 0 {
		metrics.ParseErrorsTotal.Inc()
		s.log.Warnw("template parse finished with errors",
			"origin", origin,
			"errors", len(res.Errors),
			"warnings", len(res.Warnings),
		)
		return
	}
	s.log.Infow("template parsed",
		"origin", origin,
		"imports", res.Stats.ImportCount,
		"variables", res.Stats.VariableCount,
		"parse_ms", res.Stats.ParseTimeMs,
	)
}

// CacheStats snapshots the result cache.
func (s *Service) CacheStats() cache.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.GetStats()
}

// PurgeExpired removes every TTL-expired cache entry, returning the count.
func (s *Service) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.cache.PurgeExpired()
	metrics.CacheEntries.Set(float64(s.cache.Len()))
	return n
}

// SnapshotJSON serialises the result cache for persistence.
func (s *Service) SnapshotJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.ToJSON()
}

// RestoreJSON re-imports a persisted snapshot, returning the entry count.
// Recency order does not survive the round trip.
func (s *Service) RestoreJSON(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.cache.FromJSON(data)
	metrics.CacheEntries.Set(float64(s.cache.Len()))
	return n, err
}

// cacheKey derives the content-identity key for one document.
func cacheKey(origin string, src []byte) string {
	sum := sha256.Sum256(src)
	return origin + ":" + hex.EncodeToString(sum[:])
}
