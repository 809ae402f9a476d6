// internal/cache/cache.go
//
// Bounded, TTL-aware LRU cache for memoising parse and validation results.
//
// Context
// -------
// The map holds non-owning keys into an intrusive doubly-linked list whose
// head is most-recently-used and tail is least-recently-used.  Capacity is
// measured in entry count; size estimation is informational only.  An entry
// is logically absent once now - timestamp > ttl, checked lazily on access
// and exhaustively by PurgeExpired.
//
// The cache is NOT internally synchronised.  Callers sharing one instance
// must serialise every mutating operation (Get promotes, so it mutates too);
// see service.Service for the mutex-guarded wrapper.
package cache

import "time"

// Entry carries one cached value and its bookkeeping.
type Entry[V any] struct {
	Value         V
	Timestamp     time.Time     // insertion or last Set
	HitCount      int64         // successful Gets
	EstimatedSize int64         // informational bytes, never enforced
	TTL           time.Duration // 0 means no expiry
}

// node is an intrusive list element.  prev/next are nil only at the ends.
type node[V any] struct {
	key   string
	entry Entry[V]
	prev  *node[V]
	next  *node[V]
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Size      int     `json:"size"`
	MaxSize   int     `json:"maxSize"`
	HitRate   float64 `json:"hitRate"`
	Evictions int64   `json:"evictions"`
}

// Cache is a string-keyed LRU with per-entry TTL.
type Cache[V any] struct {
	maxSize    int
	defaultTTL time.Duration

	items map[string]*node[V]
	head  *node[V] // MRU
	tail  *node[V] // LRU

	hits      int64
	misses    int64
	evictions int64

	now func() time.Time // injectable clock for tests
}

// New returns a Cache holding at most maxSize entries, each expiring after
// defaultTTL unless overridden per Set.  Panics on maxSize < 1.
func New[V any](maxSize int, defaultTTL time.Duration) *Cache[V] {
	if maxSize < 1 {
		panic("cache: maxSize must be >= 1")
	}
	return &Cache[V]{
		maxSize:    maxSize,
		defaultTTL: defaultTTL,
		items:      make(map[string]*node[V], maxSize),
		now:        time.Now,
	}
}

// Get returns the value for key, promoting it to MRU.  Expired entries are
// deleted as a side effect and count as misses.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	n, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}
	if c.expired(n) {
		c.unlink(n)
		delete(c.items, key)
		c.misses++
		return zero, false
	}
	c.moveToFront(n)
	n.entry.HitCount++
	c.hits++
	return n.entry.Value, true
}

// Set upserts key with the default TTL.
func (c *Cache[V]) Set(key string, v V) { c.SetWithTTL(key, v, c.defaultTTL) }

// SetWithTTL upserts key.  Inserting a new key at capacity first evicts
// exactly the current tail node.
func (c *Cache[V]) SetWithTTL(key string, v V, ttl time.Duration) {
	if n, ok := c.items[key]; ok {
		n.entry.Value = v
		n.entry.Timestamp = c.now()
		n.entry.TTL = ttl
		n.entry.EstimatedSize = EstimateSize(v)
		c.moveToFront(n)
		return
	}
	if len(c.items) >= c.maxSize {
		c.evictTail()
	}
	n := &node[V]{
		key: key,
		entry: Entry[V]{
			Value:         v,
			Timestamp:     c.now(),
			TTL:           ttl,
			EstimatedSize: EstimateSize(v),
		},
	}
	c.pushFront(n)
	c.items[key] = n
}

// Has reports presence without promoting the entry.  Expired entries report
// absent but are left for Get or PurgeExpired to delete.
func (c *Cache[V]) Has(key string) bool {
	n, ok := c.items[key]
	return ok && !c.expired(n)
}

// Delete removes key.  Returns true when an entry was removed.
func (c *Cache[V]) Delete(key string) bool {
	n, ok := c.items[key]
	if !ok {
		return false
	}
	c.unlink(n)
	delete(c.items, key)
	return true
}

// Clear drops every entry.  Hit/miss/eviction counters survive.
func (c *Cache[V]) Clear() {
	c.items = make(map[string]*node[V], c.maxSize)
	c.head, c.tail = nil, nil
}

// Len reports the current entry count, expired entries included until they
// are observed.
func (c *Cache[V]) Len() int { return len(c.items) }

//
// batch forms — per-key semantics, no batch-level atomicity
//

// GetMany returns the present, non-expired subset of keys.
func (c *Cache[V]) GetMany(keys []string) map[string]V {
	out := make(map[string]V, len(keys))
	for _, k := range keys {
		if v, ok := c.Get(k); ok {
			out[k] = v
		}
	}
	return out
}

// SetMany upserts every pair with the default TTL.
func (c *Cache[V]) SetMany(pairs map[string]V) {
	for k, v := range pairs {
		c.Set(k, v)
	}
}

// DeleteMany removes the given keys, returning how many were present.
func (c *Cache[V]) DeleteMany(keys []string) int {
	removed := 0
	for _, k := range keys {
		if c.Delete(k) {
			removed++
		}
	}
	return removed
}

// PurgeExpired scans every entry and deletes the TTL-expired ones, returning
// the count removed.  Heavier than the lazy per-access expiry.
func (c *Cache[V]) PurgeExpired() int {
	removed := 0
	for key, n := range c.items {
		if c.expired(n) {
			c.unlink(n)
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// GetStats snapshots effectiveness counters.  HitRate is 0 when the cache
// has never been accessed.
func (c *Cache[V]) GetStats() Stats {
	s := Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Size:      len(c.items),
		MaxSize:   c.maxSize,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

//
// intrusive list plumbing
//

func (c *Cache[V]) expired(n *node[V]) bool {
	return n.entry.TTL > 0 && c.now().Sub(n.entry.Timestamp) > n.entry.TTL
}

func (c *Cache[V]) pushFront(n *node[V]) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *Cache[V]) unlink(n *node[V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

func (c *Cache[V]) moveToFront(n *node[V]) {
	if c.head == n {
		return
	}
	c.unlink(n)
	c.pushFront(n)
}

func (c *Cache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	victim := c.tail
	c.unlink(victim)
	delete(c.items, victim.key)
	c.evictions++
}
