package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RawRecord is one record as produced by a file parser, before flattening.
// Field values are scalars (nil, string, json.Number, bool), nested
// *RawRecord values, or []any. Keys keep the order of the source document.
type RawRecord struct {
	keys   []string
	fields map[string]any
}

// NewRawRecord returns an empty record.
func NewRawRecord() *RawRecord {
	return &RawRecord{fields: make(map[string]any)}
}

// Set stores v under key. A repeated key keeps its first position.
func (r *RawRecord) Set(key string, v any) {
	if _, ok := r.fields[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = v
}

// Get returns the value stored under key.
func (r *RawRecord) Get(key string) (any, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// Keys returns the field names in source order.
func (r *RawRecord) Keys() []string { return r.keys }

// Len returns the number of fields.
func (r *RawRecord) Len() int { return len(r.keys) }

// MarshalJSON encodes the record as a JSON object preserving field order.
func (r *RawRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.fields[k])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FlatRecord is a single-level record with sanitized keys in first-seen order.
type FlatRecord struct {
	keys   []string
	values map[string]Value
}

// NewFlatRecord returns an empty record with room for n fields.
func NewFlatRecord(n int) FlatRecord {
	return FlatRecord{
		keys:   make([]string, 0, n),
		values: make(map[string]Value, n),
	}
}

// Set stores v under key. Setting an existing key overwrites the value and
// keeps the key's original position.
func (r *FlatRecord) Set(key string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value stored under key. Missing keys yield Null and false.
func (r FlatRecord) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the keys in first-seen order.
func (r FlatRecord) Keys() []string { return r.keys }

// Len returns the number of fields.
func (r FlatRecord) Len() int { return len(r.keys) }

// Each calls fn for every field in key order.
func (r FlatRecord) Each(fn func(key string, v Value)) {
	for _, k := range r.keys {
		fn(k, r.values[k])
	}
}

// MarshalJSON encodes the record as an ordered JSON object.
func (r FlatRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String renders the record as compact JSON, used in reports.
func (r FlatRecord) String() string {
	b, err := r.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid record: %v>", err)
	}
	return string(b)
}
