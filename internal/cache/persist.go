// internal/cache/persist.go
//
// JSON persistence for cache contents.
//
// Context
// -------
// The wire shape is {key: {value, timestamp, hits, ttl}} with millisecond
// timestamps and TTLs.  FromJSON inserts entries in map iteration order, so
// LRU recency does NOT survive a round trip — consumers must not assume it
// does.  Malformed entries are skipped best-effort; persistence never turns
// into a cache error.
package cache

import (
	"encoding/json"
	"time"
)

// persistedEntry is the on-disk form of one entry.
type persistedEntry[V any] struct {
	Value     V     `json:"value"`
	Timestamp int64 `json:"timestamp"` // unix ms
	Hits      int64 `json:"hits"`
	TTL       int64 `json:"ttl"` // ms, 0 = no expiry
}

// ToJSON serialises every entry, expired ones included; FromJSON's lazy
// expiry drops them on first access after import.
func (c *Cache[V]) ToJSON() ([]byte, error) {
	out := make(map[string]persistedEntry[V], len(c.items))
	for key, n := range c.items {
		out[key] = persistedEntry[V]{
			Value:     n.entry.Value,
			Timestamp: n.entry.Timestamp.UnixMilli(),
			Hits:      n.entry.HitCount,
			TTL:       n.entry.TTL.Milliseconds(),
		}
	}
	return json.Marshal(out)
}

// FromJSON inserts every decodable entry from data, preserving original
// timestamps, hit counts, and TTLs.  Returns the number of entries imported.
// Entries that fail to decode are skipped.
func (c *Cache[V]) FromJSON(data []byte) (int, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, err
	}

	imported := 0
	for key, body := range raw {
		var pe persistedEntry[V]
		if err := json.Unmarshal(body, &pe); err != nil {
			continue
		}
		c.SetWithTTL(key, pe.Value, time.Duration(pe.TTL)*time.Millisecond)
		if n, ok := c.items[key]; ok {
			n.entry.Timestamp = time.UnixMilli(pe.Timestamp)
			n.entry.HitCount = pe.Hits
		}
		imported++
	}
	return imported, nil
}
