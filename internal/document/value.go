package document

import (
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Field is one key/value pair of a mapping.
type Field struct {
	Key   string
	Value Value
}

// Value is a generic document value: a scalar, a sequence or an ordered mapping.
// The zero Value is null.
type Value struct {
	kind   Kind
	b      bool
	i      int64
	f      float64
	s      string
	items  []Value
	fields []Field
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Sequence returns a sequence holding items in order.
func Sequence(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindSequence, items: items}
}

// Mapping returns a mapping holding fields in order. Keys are expected to be unique.
func Mapping(fields ...Field) Value {
	if fields == nil {
		fields = []Field{}
	}
	return Value{kind: KindMapping, fields: fields}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsMapping reports whether v is a mapping.
func (v Value) IsMapping() bool { return v.kind == KindMapping }

// IsSequence reports whether v is a sequence.
func (v Value) IsSequence() bool { return v.kind == KindSequence }

// Str returns the string held by v.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// BoolValue returns the boolean held by v.
func (v Value) BoolValue() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// IntValue returns the integer held by v.
func (v Value) IntValue() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// FloatValue returns the number held by v; integers are widened.
func (v Value) FloatValue() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// Items returns the elements of a sequence, or nil for any other kind.
func (v Value) Items() []Value {
	if v.kind != KindSequence {
		return nil
	}
	return v.items
}

// Fields returns the fields of a mapping in declaration order, or nil for any other kind.
func (v Value) Fields() []Field {
	if v.kind != KindMapping {
		return nil
	}
	return v.fields
}

// Keys returns the mapping keys in declaration order.
func (v Value) Keys() []string {
	if v.kind != KindMapping {
		return nil
	}
	keys := make([]string, len(v.fields))
	for i, f := range v.fields {
		keys[i] = f.Key
	}
	return keys
}

// Len returns the number of items or fields; scalars have length 0.
func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.items)
	case KindMapping:
		return len(v.fields)
	default:
		return 0
	}
}

// Lookup returns the value stored under key in a mapping.
func (v Value) Lookup(key string) (Value, bool) {
	for _, f := range v.Fields() {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Has reports whether a mapping contains key.
func (v Value) Has(key string) bool {
	_, ok := v.Lookup(key)
	return ok
}

// Get returns the value stored under key, or null.
func (v Value) Get(key string) Value {
	out, _ := v.Lookup(key)
	return out
}

// Text renders a scalar the way it would read in the document.
// Collections are rendered in canonical form.
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindString:
		return v.s
	default:
		return v.Canonical()
	}
}

// MarshalJSON encodes v in canonical form, keeping mapping order.
func (v Value) MarshalJSON() ([]byte, error) {
	return []byte(v.Canonical()), nil
}

// GetStr gets a string property; empty if missing or not a string.
func GetStr(m Value, key string) string {
	s, _ := m.Get(key).Str()
	return s
}

// GetStrList returns a property that is either one string or a sequence of strings.
// ok is false when the property is present with any other shape.
func GetStrList(m Value, key string) (list []string, ok bool) {
	v, present := m.Lookup(key)
	if !present || v.IsNull() {
		return nil, true
	}
	if s, isStr := v.Str(); isStr {
		return []string{s}, true
	}
	if !v.IsSequence() {
		return nil, false
	}
	ok = true
	for _, item := range v.Items() {
		s, isStr := item.Str()
		if !isStr {
			ok = false
			continue
		}
		list = append(list, s)
	}
	return list, ok
}
