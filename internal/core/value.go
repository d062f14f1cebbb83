package core

import (
	"encoding/json"
	"strconv"
)

// ValueKind identifies the scalar kind held by a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// Value is a single scalar cell of a FlatRecord.
// Numbers keep their source literal so large integers are never rounded.
type Value struct {
	Kind ValueKind
	text string
}

// Null returns the null value.
func Null() Value { return Value{Kind: KindNull} }

// String wraps s as a string value.
func String(s string) Value { return Value{Kind: KindString, text: s} }

// Number wraps a numeric literal as it appeared in the source.
func Number(literal string) Value { return Value{Kind: KindNumber, text: literal} }

// Bool wraps b as a boolean value.
func Bool(b bool) Value { return Value{Kind: KindBool, text: strconv.FormatBool(b)} }

// Text returns the textual form of the value; null renders as "".
func (v Value) Text() string { return v.text }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// IsEmpty reports whether v is null or the empty string.
func (v Value) IsEmpty() bool {
	return v.Kind == KindNull || v.text == ""
}

// Any returns v as a plain Go value: nil, string, json.Number or bool.
func (v Value) Any() any {
	switch v.Kind {
	case KindString:
		return v.text
	case KindNumber:
		return json.Number(v.text)
	case KindBool:
		return v.text == "true"
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.text)
	case KindNumber, KindBool:
		return []byte(v.text), nil
	default:
		return []byte("null"), nil
	}
}
