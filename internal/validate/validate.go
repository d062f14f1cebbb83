// Package validate applies per-record business rules and splits a record set
// into accepted records and an error log.
package validate

import (
	"fmt"
	"strconv"
	"strings"

	"datamigrator/internal/core"
	"datamigrator/internal/infer"
)

// DefaultNegativeExempt lists the columns allowed to hold negative numbers.
var DefaultNegativeExempt = []string{"price", "amount"}

// Options configures a RuleSet.
type Options struct {
	// UniqueColumns are checked for duplicate non-empty values.
	UniqueColumns []string
	// NegativeExempt overrides DefaultNegativeExempt when non-nil.
	NegativeExempt []string
}

// RuleSet holds the validation rules and the per-column seen sets they
// accumulate. A RuleSet is meant for a single pass over one record set.
type RuleSet struct {
	unique []string
	exempt map[string]struct{}
	seen   map[string]map[string]struct{}
}

// NewRuleSet returns a RuleSet with empty seen sets.
func NewRuleSet(opts Options) *RuleSet {
	exempt := opts.NegativeExempt
	if exempt == nil {
		exempt = DefaultNegativeExempt
	}

	rs := &RuleSet{
		exempt: make(map[string]struct{}, len(exempt)),
		seen:   make(map[string]map[string]struct{}, len(opts.UniqueColumns)),
	}
	for _, col := range exempt {
		rs.exempt[strings.ToLower(col)] = struct{}{}
	}
	for _, col := range opts.UniqueColumns {
		if _, dup := rs.seen[col]; dup || col == "" {
			continue
		}
		rs.unique = append(rs.unique, col)
		rs.seen[col] = make(map[string]struct{})
	}
	return rs
}

// Check evaluates every rule against rec and returns all failure reasons.
// Unique values not seen before are recorded, whatever the outcome.
func (rs *RuleSet) Check(rec core.FlatRecord) []string {
	var reasons []string

	rec.Each(func(key string, v core.Value) {
		if v.IsEmpty() {
			return
		}
		text := v.Text()

		if reason, ok := rs.checkNegative(key, text); !ok {
			reasons = append(reasons, reason)
		}
		if reason, ok := checkFebruary(text); !ok {
			reasons = append(reasons, reason)
		}
	})

	for _, col := range rs.unique {
		v, ok := rec.Get(col)
		if !ok || v.IsEmpty() {
			continue
		}
		seen := rs.seen[col]
		text := v.Text()
		if _, dup := seen[text]; dup {
			reasons = append(reasons, fmt.Sprintf("duplicate value in unique column '%s': %s", col, text))
			continue
		}
		seen[text] = struct{}{}
	}

	return reasons
}

func (rs *RuleSet) checkNegative(key, text string) (string, bool) {
	n, ok := infer.ParseNumber(text)
	if !ok || n >= 0 {
		return "", true
	}
	if _, exempt := rs.exempt[key]; exempt {
		return "", true
	}
	return fmt.Sprintf("value out of range: negative number (%s) in column '%s'",
		strconv.FormatFloat(n, 'f', -1, 64), key), false
}

// checkFebruary only bounds February; other months are not checked.
func checkFebruary(text string) (string, bool) {
	dt, ok := infer.ParseDateLike(text)
	if !ok || dt.Month != 2 || dt.Day <= 29 {
		return "", true
	}
	return fmt.Sprintf("invalid date: February has only 28 or 29 days, value: %s", text), false
}

// Validate checks records in order. Records with at least one reason go to
// the error log with their 1-based row index; the rest are returned as valid.
func (rs *RuleSet) Validate(records []core.FlatRecord) ([]core.FlatRecord, []core.ValidationError) {
	valid := make([]core.FlatRecord, 0, len(records))
	var errs []core.ValidationError

	for i, rec := range records {
		reasons := rs.Check(rec)
		if len(reasons) > 0 {
			errs = append(errs, core.ValidationError{
				RowIndex: i + 1,
				Record:   rec,
				Reasons:  reasons,
			})
			continue
		}
		valid = append(valid, rec)
	}
	return valid, errs
}

// Validate runs a fresh RuleSet built from opts over records.
func Validate(records []core.FlatRecord, opts Options) ([]core.FlatRecord, []core.ValidationError) {
	return NewRuleSet(opts).Validate(records)
}
