package domain

import (
	"bytes"
	"encoding/json"
)

// Kind classifies the shape of a Value.
type Kind uint8

const (
	// KindNull is JSON null. The zero Value also reports KindNull and stands for an absent entry.
	KindNull Kind = iota
	// KindSequence is a JSON array.
	KindSequence
	// KindMapping is a JSON object.
	KindMapping
	// KindString is a JSON string.
	KindString
	// KindScalar is a JSON number or boolean.
	KindScalar
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	case KindString:
		return "string"
	case KindScalar:
		return "scalar"
	default:
		return "null"
	}
}

var nullJSON = []byte("null")

// Value is an opaque JSON value stored in a cache section.
// The encoded bytes are kept in compact form so a value written back out
// is identical to the one read, apart from insignificant whitespace.
type Value struct {
	raw  json.RawMessage
	kind Kind
}

// ParseValue validates and classifies a JSON encoded value.
func ParseValue(data []byte) (Value, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return Value{}, err
	}

	raw := buf.Bytes()
	return Value{raw: raw, kind: classify(raw[0])}, nil
}

// NewValue encodes v and wraps the result as a Value.
func NewValue(v any) (Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Value{}, err
	}
	return ParseValue(data)
}

// MustValue is like NewValue but panics on error. Intended for literals in tests.
func MustValue(v any) Value {
	val, err := NewValue(v)
	if err != nil {
		panic(err)
	}
	return val
}

func classify(first byte) Kind {
	switch first {
	case '[':
		return KindSequence
	case '{':
		return KindMapping
	case '"':
		return KindString
	case 'n':
		return KindNull
	default:
		return KindScalar
	}
}

// Kind reports the shape of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsAbsent reports whether v is the zero Value.
func (v Value) IsAbsent() bool {
	return v.raw == nil
}

// IsEmpty reports whether v is absent, null, an empty sequence, an empty
// mapping or an empty string. Numbers and booleans are never empty.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindSequence:
		return string(v.raw) == "[]"
	case KindMapping:
		return string(v.raw) == "{}"
	case KindString:
		return string(v.raw) == `""`
	default:
		return false
	}
}

// Raw returns the compact JSON encoding of v.
func (v Value) Raw() json.RawMessage {
	if v.raw == nil {
		return nullJSON
	}
	return v.raw
}

// Decode unmarshals the value into out.
func (v Value) Decode(out any) error {
	return json.Unmarshal(v.Raw(), out)
}

// Equal reports whether both values have the same encoding.
func (v Value) Equal(other Value) bool {
	return bytes.Equal(v.Raw(), other.Raw())
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return v.Raw(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseValue(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// String returns the JSON encoding of v.
func (v Value) String() string {
	return string(v.Raw())
}
