// internal/value/value.go
//
// Tagged JSON value model.
//
// Context
// -------
// The template pipeline re-serialises imported documents and inspects the
// final assembled document, so it needs a JSON representation that (a) is
// exhaustive over the six JSON kinds, and (b) preserves object member order,
// keeping re-serialised imports diff-stable against their source files.
// `map[string]any` satisfies neither, hence this small tagged union.
//
// Numbers keep their source text (like json.Number) so values such as
// 0.10 or 1e9 survive a decode/encode round trip unchanged.
package value

// Kind discriminates the six JSON value kinds.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// String returns the lowercase kind name, handy in log fields and errors.
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return "invalid"
}

// Member is one key/value pair of an Object.  Order is significant.
type Member struct {
	Key   string
	Value Value
}

// Value is one JSON value.  The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	num  string // verbatim number text
	str  string
	arr  []Value
	obj  []Member
}

//
// constructors
//

func NullValue() Value            { return Value{kind: Null} }
func BoolValue(b bool) Value      { return Value{kind: Bool, b: b} }
func NumberValue(s string) Value  { return Value{kind: Number, num: s} }
func StringValue(s string) Value  { return Value{kind: String, str: s} }
func ArrayValue(v []Value) Value  { return Value{kind: Array, arr: v} }
func ObjectValue(m []Member) Value { return Value{kind: Object, obj: m} }

//
// accessors
//

func (v Value) Kind() Kind { return v.kind }

// BoolVal returns the boolean payload; valid only when Kind() == Bool.
func (v Value) BoolVal() bool { return v.b }

// NumberText returns the verbatim number text; valid only for Number.
func (v Value) NumberText() string { return v.num }

// StringVal returns the string payload; valid only for String.
func (v Value) StringVal() string { return v.str }

// Items returns the element slice; valid only for Array.  Callers must not
// mutate the returned slice.
func (v Value) Items() []Value { return v.arr }

// Members returns the ordered member slice; valid only for Object.  Callers
// must not mutate the returned slice.
func (v Value) Members() []Member { return v.obj }

// Lookup returns the first member with the given key, or false.
func (v Value) Lookup(key string) (Value, bool) {
	for _, m := range v.obj {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Equal reports deep structural equality, comparing numbers by text.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Null:
		return true
	case Bool:
		return a.b == b.b
	case Number:
		return a.num == b.num
	case String:
		return a.str == b.str
	case Array:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(a.obj) != len(b.obj) {
			return false
		}
		for i := range a.obj {
			if a.obj[i].Key != b.obj[i].Key || !Equal(a.obj[i].Value, b.obj[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}
