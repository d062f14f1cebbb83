// Package normalize turns parsed records of arbitrary nesting into flat
// records whose keys are safe to use as column names.
package normalize

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"datamigrator/internal/core"
)

const (
	keySeparator   = "_"
	arraySeparator = ", "
)

// Normalize flattens raw into a FlatRecord. Nested records contribute keys
// joined with "_", arrays collapse into one ", "-joined string, and every key
// is sanitized. Keys that sanitize to the same name collide: the last value
// wins and the first position is kept. Keys that sanitize to nothing are
// dropped.
func Normalize(raw *core.RawRecord) core.FlatRecord {
	out := core.NewFlatRecord(raw.Len())
	flatten(&out, "", raw)
	return out
}

// NormalizeAll normalizes every record, preserving order.
func NormalizeAll(raws []*core.RawRecord) []core.FlatRecord {
	out := make([]core.FlatRecord, 0, len(raws))
	for _, r := range raws {
		if r == nil {
			continue
		}
		out = append(out, Normalize(r))
	}
	return out
}

func flatten(out *core.FlatRecord, prefix string, rec *core.RawRecord) {
	for _, k := range rec.Keys() {
		name := k
		if prefix != "" {
			name = prefix + keySeparator + k
		}

		v, _ := rec.Get(k)
		if nested, ok := v.(*core.RawRecord); ok && nested != nil {
			flatten(out, name, nested)
			continue
		}

		key := SanitizeKey(name)
		if key == "" {
			continue
		}
		out.Set(key, scalar(v))
	}
}

func scalar(v any) core.Value {
	switch x := v.(type) {
	case nil:
		return core.Null()
	case string:
		return core.String(x)
	case json.Number:
		return core.Number(x.String())
	case bool:
		return core.Bool(x)
	case float64:
		return core.Number(strconv.FormatFloat(x, 'f', -1, 64))
	case int:
		return core.Number(strconv.Itoa(x))
	case int64:
		return core.Number(strconv.FormatInt(x, 10))
	case []any:
		return core.String(joinArray(x, arraySeparator))
	case *core.RawRecord:
		return core.Null()
	default:
		return core.String(fmt.Sprint(x))
	}
}

// joinArray renders array elements as text. Mapping and nested array
// elements are encoded as compact JSON, null elements render empty.
func joinArray(items []any, sep string) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = elementText(item)
	}
	return strings.Join(parts, sep)
}

func elementText(item any) string {
	switch x := item.(type) {
	case nil:
		return ""
	case *core.RawRecord:
		if x == nil {
			return ""
		}
		return compactJSON(x)
	case []any:
		return compactJSON(x)
	default:
		return scalar(x).Text()
	}
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// SanitizeKey removes every character outside [A-Za-z0-9_] and lower-cases
// the rest.
func SanitizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		}
	}
	return b.String()
}

// DefaultTableName is used when a file name yields no usable characters.
const DefaultTableName = "imported_data"

// TableName derives a table name from a file path: the base name up to its
// first dot, with characters outside [a-z0-9_] replaced by "_", lower-cased.
func TableName(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	base = strings.ToLower(base)

	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	name := strings.Trim(b.String(), "_")
	if name == "" {
		return DefaultTableName
	}
	return b.String()
}
