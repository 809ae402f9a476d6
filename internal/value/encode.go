// internal/value/encode.go
//
// Pretty-printing with a caller-supplied line prefix.
//
// The import resolver embeds documents mid-file, so every line after the
// first must carry the indentation of the importing directive.  MarshalIndent
// cannot express that, hence this small writer.
package value

import (
	"encoding/json"
	"strings"
)

// DefaultIndent is the per-level indentation step used across the pipeline.
const DefaultIndent = "  "

// EncodeIndent renders v as indented JSON.  prefix is prepended to every
// line after the first; indent is the per-level step.
func EncodeIndent(v Value, prefix, indent string) string {
	var b strings.Builder
	encode(&b, v, prefix, indent, 0)
	return b.String()
}

// Encode renders v as compact single-line JSON.
func Encode(v Value) string {
	var b strings.Builder
	encodeCompact(&b, v)
	return b.String()
}

func encode(b *strings.Builder, v Value, prefix, indent string, depth int) {
	switch v.kind {
	case Array:
		if len(v.arr) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				b.WriteByte(',')
			}
			writeNewline(b, prefix, indent, depth+1)
			encode(b, item, prefix, indent, depth+1)
		}
		writeNewline(b, prefix, indent, depth)
		b.WriteByte(']')
	case Object:
		if len(v.obj) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteByte('{')
		for i, m := range v.obj {
			if i > 0 {
				b.WriteByte(',')
			}
			writeNewline(b, prefix, indent, depth+1)
			b.WriteString(quote(m.Key))
			b.WriteString(": ")
			encode(b, m.Value, prefix, indent, depth+1)
		}
		writeNewline(b, prefix, indent, depth)
		b.WriteByte('}')
	default:
		encodeCompact(b, v)
	}
}

func encodeCompact(b *strings.Builder, v Value) {
	switch v.kind {
	case Null:
		b.WriteString("null")
	case Bool:
		if v.b {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case Number:
		b.WriteString(v.num)
	case String:
		b.WriteString(quote(v.str))
	case Array:
		b.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				b.WriteByte(',')
			}
			encodeCompact(b, item)
		}
		b.WriteByte(']')
	case Object:
		b.WriteByte('{')
		for i, m := range v.obj {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quote(m.Key))
			b.WriteByte(':')
			encodeCompact(b, m.Value)
		}
		b.WriteByte('}')
	}
}

func writeNewline(b *strings.Builder, prefix, indent string, depth int) {
	b.WriteByte('\n')
	b.WriteString(prefix)
	for i := 0; i < depth; i++ {
		b.WriteString(indent)
	}
}

// quote escapes s per JSON string rules.  encoding/json handles the corner
// cases (control chars, UTF-8) so we don't re-implement them.
func quote(s string) string {
	out, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(out)
}
