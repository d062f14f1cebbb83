package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"datamigrator/internal/core"
)

// JSONParser reads a JSON document. Records are taken from a top-level
// array, from the array held by the first key of a top-level object, or
// from a single top-level object. Key order is preserved.
type JSONParser struct{}

func (p *JSONParser) Parse(r io.Reader) ([]*core.RawRecord, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	root, err := decodeJSONValue(dec)
	if err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("json: unexpected data after the top-level value at offset %d", dec.InputOffset())
	}

	switch v := root.(type) {
	case []any:
		return jsonRecords(v)
	case *core.RawRecord:
		keys := v.Keys()
		if len(keys) > 0 {
			if first, _ := v.Get(keys[0]); first != nil {
				if arr, ok := first.([]any); ok {
					return jsonRecords(arr)
				}
			}
		}
		return []*core.RawRecord{v}, nil
	default:
		return nil, errors.New("json: document must be an object or an array of objects")
	}
}

func jsonRecords(items []any) ([]*core.RawRecord, error) {
	out := make([]*core.RawRecord, 0, len(items))
	for i, item := range items {
		rec, ok := item.(*core.RawRecord)
		if !ok {
			return nil, fmt.Errorf("json: element %d is not an object", i)
		}
		out = append(out, rec)
	}
	return out, nil
}

// decodeJSONValue reads one value from dec. Objects become *core.RawRecord
// so that key order survives; arrays become []any.
func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		rec := core.NewRawRecord()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", keyTok)
			}
			val, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			rec.Set(key, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return rec, nil
	case '[':
		arr := []any{}
		for dec.More() {
			val, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}
