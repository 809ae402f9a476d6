// internal/cache/cache_test.go
//
// Unit-tests for the TTL LRU cache.  The clock is injected so TTL behavior
// is deterministic.
//
// Run: go test ./internal/cache -v

package cache

import (
	"testing"
	"time"
)

// fakeClock steps time manually.
type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(maxSize int, ttl time.Duration) (*Cache[string], *fakeClock) {
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := New[string](maxSize, ttl)
	c.now = clk.now
	return c, clk
}

func TestLRUEviction(t *testing.T) {
	c, _ := newTestCache(2, 0)

	c.Set("x", "1")
	c.Set("y", "2")
	if _, ok := c.Get("x"); !ok { // promotes x, y becomes LRU
		t.Fatalf("x should be present")
	}
	c.Set("z", "3") // capacity 2: evicts exactly the tail (y)

	if c.Has("y") {
		t.Errorf("y should have been evicted")
	}
	if !c.Has("x") {
		t.Errorf("x should survive (recently used)")
	}
	if !c.Has("z") {
		t.Errorf("z should be present")
	}
	if got := c.GetStats().Evictions; got != 1 {
		t.Errorf("evictions = %d, want 1", got)
	}
}

func TestTTLExpiry(t *testing.T) {
	c, clk := newTestCache(8, 0)

	c.SetWithTTL("k", "v", 10*time.Millisecond)
	clk.advance(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatalf("expired entry should miss")
	}
	if c.Len() != 0 {
		t.Errorf("lazy expiry should delete the entry, len = %d", c.Len())
	}
	s := c.GetStats()
	if s.Misses != 1 || s.Hits != 0 {
		t.Errorf("stats = %+v, want 1 miss, 0 hits", s)
	}
}

func TestExpiryBetweenHasAndGet(t *testing.T) {
	// Has and Get each read the clock, so an entry can expire between the
	// two calls.  Callers pairing them must branch on Get's ok.
	c, clk := newTestCache(8, 0)

	c.SetWithTTL("k", "v", 10*time.Millisecond)
	if !c.Has("k") {
		t.Fatalf("k should be present before expiry")
	}
	clk.advance(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Errorf("Get after expiry must miss even right after a positive Has")
	}
}

func TestTTLBoundary(t *testing.T) {
	c, clk := newTestCache(8, 0)

	// An entry is absent only once now - timestamp > ttl, strictly.
	c.SetWithTTL("k", "v", 10*time.Millisecond)
	clk.advance(10 * time.Millisecond)
	if _, ok := c.Get("k"); !ok {
		t.Fatalf("entry at exactly ttl should still be present")
	}
}

func TestDefaultTTL(t *testing.T) {
	c, clk := newTestCache(8, 50*time.Millisecond)

	c.Set("k", "v")
	clk.advance(60 * time.Millisecond)
	if c.Has("k") {
		t.Fatalf("entry should expire via the cache default TTL")
	}
}

func TestHasDoesNotPromote(t *testing.T) {
	c, _ := newTestCache(2, 0)

	c.Set("a", "1")
	c.Set("b", "2")
	if !c.Has("a") { // must NOT promote a
		t.Fatalf("a should be present")
	}
	c.Set("c", "3") // evicts the true LRU: a

	if c.Has("a") {
		t.Errorf("a should have been evicted; Has must not promote")
	}
	if !c.Has("b") || !c.Has("c") {
		t.Errorf("b and c should be present")
	}
}

func TestUpsertPromotes(t *testing.T) {
	c, _ := newTestCache(2, 0)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("a", "updated") // upsert, promotes a
	c.Set("c", "3")       // evicts b

	if c.Has("b") {
		t.Errorf("b should have been evicted")
	}
	if v, _ := c.Get("a"); v != "updated" {
		t.Errorf("a = %q, want %q", v, "updated")
	}
}

func TestPurgeExpired(t *testing.T) {
	c, clk := newTestCache(8, 0)

	c.SetWithTTL("a", "1", 10*time.Millisecond)
	c.SetWithTTL("b", "2", 10*time.Millisecond)
	c.SetWithTTL("c", "3", 0) // no TTL, never expires
	clk.advance(time.Second)

	if got := c.PurgeExpired(); got != 2 {
		t.Fatalf("PurgeExpired = %d, want 2", got)
	}
	if c.Len() != 1 || !c.Has("c") {
		t.Errorf("only c should remain, len = %d", c.Len())
	}
}

func TestBatchOps(t *testing.T) {
	c, _ := newTestCache(8, 0)

	c.SetMany(map[string]string{"a": "1", "b": "2", "c": "3"})
	got := c.GetMany([]string{"a", "c", "missing"})
	if len(got) != 2 || got["a"] != "1" || got["c"] != "3" {
		t.Fatalf("GetMany = %#v", got)
	}
	if removed := c.DeleteMany([]string{"a", "b", "missing"}); removed != 2 {
		t.Errorf("DeleteMany = %d, want 2", removed)
	}
	if c.Len() != 1 {
		t.Errorf("len = %d, want 1", c.Len())
	}
}

func TestStatsHitRate(t *testing.T) {
	c, _ := newTestCache(8, 0)

	if rate := c.GetStats().HitRate; rate != 0 {
		t.Fatalf("hit rate with no accesses = %v, want 0", rate)
	}

	c.Set("k", "v")
	c.Get("k")      // hit
	c.Get("absent") // miss

	s := c.GetStats()
	if s.Hits != 1 || s.Misses != 1 || s.HitRate != 0.5 {
		t.Errorf("stats = %+v, want 1/1 at rate 0.5", s)
	}
	if s.Size != 1 || s.MaxSize != 8 {
		t.Errorf("size = %d/%d, want 1/8", s.Size, s.MaxSize)
	}
}

func TestClear(t *testing.T) {
	c, _ := newTestCache(4, 0)

	c.SetMany(map[string]string{"a": "1", "b": "2"})
	c.Get("a")
	c.Clear()

	if c.Len() != 0 {
		t.Fatalf("len after Clear = %d", c.Len())
	}
	// Counters survive Clear.
	if c.GetStats().Hits != 1 {
		t.Errorf("hit counter should survive Clear")
	}
	// The list is reusable after Clear.
	c.Set("c", "3")
	if !c.Has("c") {
		t.Errorf("cache unusable after Clear")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	c, clk := newTestCache(8, 0)

	c.SetWithTTL("a", "alpha", time.Minute)
	c.SetWithTTL("b", "beta", 2*time.Minute)
	c.Get("a") // bump hit count

	data, err := c.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	restored, _ := newTestCache(8, 0)
	restored.now = clk.now
	n, err := restored.FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported %d entries, want 2", n)
	}

	// Every key's value and TTL survive; recency order is unspecified.
	for key, want := range map[string]string{"a": "alpha", "b": "beta"} {
		v, ok := restored.Get(key)
		if !ok || v != want {
			t.Errorf("restored[%s] = %q/%v, want %q", key, v, ok, want)
		}
	}
	if ttl := restored.items["a"].entry.TTL; ttl != time.Minute {
		t.Errorf("restored ttl = %v, want 1m", ttl)
	}
	if hits := restored.items["a"].entry.HitCount; hits != 1 {
		t.Errorf("restored hit count = %d, want 1", hits)
	}
}

func TestFromJSONSkipsMalformed(t *testing.T) {
	c, _ := newTestCache(8, 0)

	blob := []byte(`{
		"good": {"value": "v", "timestamp": 1700000000000, "hits": 0, "ttl": 0},
		"bad":  {"value": 42,  "timestamp": "nope"}
	}`)
	n, err := c.FromJSON(blob)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if n != 1 || !c.Has("good") || c.Has("bad") {
		t.Errorf("imported = %d, good=%v bad=%v", n, c.Has("good"), c.Has("bad"))
	}
}

func TestEstimateSize(t *testing.T) {
	cases := []struct {
		in   any
		want int64
	}{
		{"abcd", 8},
		{true, 8},
		{int64(9), 8},
		{3.14, 8},
		{nil, 0},
	}
	for _, tc := range cases {
		if got := EstimateSize(tc.in); got != tc.want {
			t.Errorf("EstimateSize(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
	// Structured values: twice the serialised length.
	if got := EstimateSize(map[string]int{"a": 1}); got != int64(len(`{"a":1}`))*2 {
		t.Errorf("structured estimate = %d", got)
	}
}
