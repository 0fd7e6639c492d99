// Package snapshot models the structured content of a document at a
// specific version. Values form a small sum type over null, bool, number,
// string, list, and object; objects preserve field insertion order so that
// diff output and flattened path listings are stable across runs.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the shape of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Field is one named entry of an object Value.
type Field struct {
	Key   string
	Value Value
}

// Value is an immutable snapshot value. The zero Value is null.
type Value struct {
	kind   Kind
	b      bool
	n      float64
	s      string
	list   []Value
	fields []Field
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric Value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// List returns a list Value holding the given elements.
func List(elems ...Value) Value {
	return Value{kind: KindList, list: append([]Value(nil), elems...)}
}

// Object returns an object Value with fields in the given order.
func Object(fields ...Field) Value {
	return Value{kind: KindObject, fields: append([]Field(nil), fields...)}
}

// F is shorthand for constructing an object Field.
func F(key string, v Value) Field { return Field{Key: key, Value: v} }

// Kind reports the value's shape.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// BoolVal returns the boolean payload; false for non-bool values.
func (v Value) BoolVal() bool { return v.b }

// NumberVal returns the numeric payload; 0 for non-number values.
func (v Value) NumberVal() float64 { return v.n }

// StringVal returns the string payload; "" for non-string values.
func (v Value) StringVal() string { return v.s }

// Len returns the element count for lists and the field count for objects.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindObject:
		return len(v.fields)
	default:
		return 0
	}
}

// Elems returns the list elements. The slice must not be mutated.
func (v Value) Elems() []Value { return v.list }

// Fields returns the object fields in insertion order. Must not be mutated.
func (v Value) Fields() []Field { return v.fields }

// Field looks up an object field by key. The second return reports presence,
// which distinguishes a missing field from an explicit null.
func (v Value) Field(key string) (Value, bool) {
	for _, f := range v.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// withField returns a copy of an object value with key set to nv, appending
// the field if it was not present. Non-object receivers become objects.
func (v Value) withField(key string, nv Value) Value {
	if v.kind != KindObject {
		return Object(F(key, nv))
	}
	fields := make([]Field, len(v.fields))
	copy(fields, v.fields)
	for i, f := range fields {
		if f.Key == key {
			fields[i].Value = nv
			return Value{kind: KindObject, fields: fields}
		}
	}
	return Value{kind: KindObject, fields: append(fields, F(key, nv))}
}

// Equal reports deep equality. Object field order is ignored for equality
// but respected everywhere the value is rendered or flattened.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	case KindString:
		return a.s == b.s
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.fields) != len(b.fields) {
			return false
		}
		for _, f := range a.fields {
			other, ok := b.Field(f.Key)
			if !ok || !Equal(f.Value, other) {
				return false
			}
		}
		return true
	}
	return false
}

// Render produces a human-readable string form of the value, used for diff
// block content and transform string coercion. Numbers drop trailing zeros;
// lists and objects render as compact JSON.
func (v Value) Render() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case KindString:
		return v.s
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("<%s>", v.kind)
		}
		return string(data)
	}
}

// WordCount counts whitespace-separated words across every string leaf.
func (v Value) WordCount() int {
	switch v.kind {
	case KindString:
		return len(strings.Fields(v.s))
	case KindList:
		total := 0
		for _, e := range v.list {
			total += e.WordCount()
		}
		return total
	case KindObject:
		total := 0
		for _, f := range v.fields {
			total += f.Value.WordCount()
		}
		return total
	default:
		return 0
	}
}

// MarshalJSON encodes the value with object fields in insertion order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		buf.WriteString(strconv.FormatFloat(v.n, 'f', -1, 64))
	case KindString:
		data, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(data)
	case KindList:
		buf.WriteByte('[')
		for i, e := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeJSON(buf, f.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// UnmarshalJSON decodes JSON preserving object field order.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	parsed, err := readValue(dec)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Parse decodes a JSON document into a Value.
func Parse(data []byte) (Value, error) {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return Value{}, fmt.Errorf("parsing snapshot: %w", err)
	}
	return v, nil
}

func readValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return tokenValue(dec, tok)
}

func tokenValue(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return Value{}, err
		}
		return Number(n), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '{':
			var fields []Field
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key is not a string")
				}
				val, err := readValue(dec)
				if err != nil {
					return Value{}, err
				}
				fields = append(fields, F(key, val))
			}
			if _, err := dec.Token(); err != nil { // closing '}'
				return Value{}, err
			}
			return Value{kind: KindObject, fields: fields}, nil
		case '[':
			var elems []Value
			for dec.More() {
				e, err := readValue(dec)
				if err != nil {
					return Value{}, err
				}
				elems = append(elems, e)
			}
			if _, err := dec.Token(); err != nil { // closing ']'
				return Value{}, err
			}
			return Value{kind: KindList, list: elems}, nil
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}
