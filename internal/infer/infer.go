// Package infer derives a storage type for every column of a record set.
//
// Each non-empty value is classified on its own and folded into the
// column's running type with a fixed promotion rule. The rule is order
// sensitive: a DECIMAL followed by an INT ends as INT, while VARCHAR always
// dominates.
package infer

import (
	"math"
	"unicode/utf8"

	"datamigrator/internal/core"
)

// maxDateLength bounds the text length of values considered as dates.
const maxDateLength = 25

// Classify returns the type a single value would have on its own.
func Classify(text string) core.ColumnType {
	if n, ok := ParseNumber(text); ok {
		switch {
		case n != math.Trunc(n):
			return core.TypeDecimal
		case math.Abs(n) > core.MaxInt:
			return core.TypeBigInt
		default:
			return core.TypeInt
		}
	}
	if IsDateLike(text) {
		return core.TypeDateTime
	}
	return core.TypeVarchar
}

// IsDateLike reports whether text is short enough and parses as a date.
func IsDateLike(text string) bool {
	_, ok := ParseDateLike(text)
	return ok
}

// ParseDateLike is ParseDateTime restricted to texts under 25 characters,
// the only ones treated as dates by inference and validation.
func ParseDateLike(text string) (DateTime, bool) {
	if utf8.RuneCountInString(text) >= maxDateLength {
		return DateTime{}, false
	}
	return ParseDateTime(text)
}

// Merge folds an observed type into a column's running type. Rules apply in
// order:
//  1. VARCHAR on either side gives VARCHAR.
//  2. DECIMAL over a running INT gives DECIMAL.
//  3. BIGINT over a running INT gives BIGINT.
//  4. Any other difference takes the observed type.
func Merge(running, observed core.ColumnType) core.ColumnType {
	switch {
	case observed == core.TypeVarchar || running == core.TypeVarchar:
		return core.TypeVarchar
	case observed == core.TypeDecimal && running.HasPrefix(core.TypeInt):
		return core.TypeDecimal
	case observed == core.TypeBigInt && running == core.TypeInt:
		return core.TypeBigInt
	case observed != running:
		return observed
	default:
		return running
	}
}

// Profiler accumulates column profiles over a stream of records.
// The zero value is not usable; call NewProfiler.
type Profiler struct {
	order    []string
	profiles map[string]*core.ColumnProfile
}

// NewProfiler returns an empty profiler.
func NewProfiler() *Profiler {
	return &Profiler{profiles: make(map[string]*core.ColumnProfile)}
}

// Observe folds one record into the profiles. Columns are registered on
// first sight, even when the value is empty; empty values do not affect the
// type or length.
func (p *Profiler) Observe(rec core.FlatRecord) {
	rec.Each(func(key string, v core.Value) {
		prof, ok := p.profiles[key]
		if !ok {
			prof = &core.ColumnProfile{Name: key}
			p.profiles[key] = prof
			p.order = append(p.order, key)
		}
		if v.IsEmpty() {
			return
		}

		text := v.Text()
		if n := utf8.RuneCountInString(text); n > prof.MaxLength {
			prof.MaxLength = n
		}
		prof.Type = Merge(prof.Type, Classify(text))
	})
}

// Profiles returns the finalized profiles in first-seen column order.
// VARCHAR columns whose longest value exceeds 255 characters become TEXT;
// columns that never held a value become VARCHAR.
func (p *Profiler) Profiles() []core.ColumnProfile {
	out := make([]core.ColumnProfile, 0, len(p.order))
	for _, name := range p.order {
		prof := *p.profiles[name]
		switch {
		case prof.Type == core.TypeUnset:
			prof.Type = core.TypeVarchar
		case prof.Type == core.TypeVarchar && prof.MaxLength > core.VarcharLength:
			prof.Type = core.TypeText
		}
		out = append(out, prof)
	}
	return out
}

// Infer profiles every record and returns the finalized column profiles.
func Infer(records []core.FlatRecord) []core.ColumnProfile {
	p := NewProfiler()
	for _, rec := range records {
		p.Observe(rec)
	}
	return p.Profiles()
}
