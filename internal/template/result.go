// internal/template/result.go
//
// Result wire shape.  The extracted document travels as raw JSON so cache
// snapshots round-trip it; everything else marshals by its field tags.

package template

import (
	"encoding/json"

	"github.com/yanizio/jsontpl/internal/value"
)

type resultJSON struct {
	ExtractedJSON json.RawMessage `json:"extractedJson,omitempty"`
	Imports       []ImportInfo    `json:"imports"`
	SourceMap     []Mapping       `json:"sourceMap"`
	Stats         Stats           `json:"stats"`
	Errors        []ParseError    `json:"errors"`
	Warnings      []ParseWarning  `json:"warnings"`
}

// MarshalJSON implements json.Marshaler.
func (r *Result) MarshalJSON() ([]byte, error) {
	w := resultJSON{
		Imports:   r.Imports,
		SourceMap: r.SourceMap,
		Stats:     r.Stats,
		Errors:    r.Errors,
		Warnings:  r.Warnings,
	}
	if r.ExtractedJSON != nil {
		w.ExtractedJSON = json.RawMessage(value.Encode(*r.ExtractedJSON))
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Result) UnmarshalJSON(data []byte) error {
	var w resultJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.Imports = w.Imports
	r.SourceMap = w.SourceMap
	r.Stats = w.Stats
	r.Errors = w.Errors
	r.Warnings = w.Warnings
	r.ExtractedJSON = nil
	if len(w.ExtractedJSON) > 0 {
		v, err := value.Decode([]byte(w.ExtractedJSON))
		if err != nil {
			return err
		}
		r.ExtractedJSON = &v
	}
	return nil
}
