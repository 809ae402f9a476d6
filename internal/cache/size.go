// internal/cache/size.go
//
// Informational size estimation.  Mirrors the rough per-kind heuristics the
// stats surface documents: strings at two bytes per character, scalars at
// eight bytes, anything structured at twice its serialised length.  The
// numbers feed dashboards only — capacity is always entry count.
package cache

import "encoding/json"

// EstimateSize guesses the in-memory footprint of v in bytes.
func EstimateSize(v any) int64 {
	switch t := v.(type) {
	case nil:
		return 0
	case string:
		return int64(len(t)) * 2
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return 8
	case []byte:
		return int64(len(t))
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return 0
		}
		return int64(len(raw)) * 2
	}
}
