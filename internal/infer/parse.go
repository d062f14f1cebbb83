package infer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseNumber reads s as a finite decimal number. Surrounding whitespace is
// ignored; sign, fraction and exponent forms are accepted. Hex literals,
// digit separators, NaN and infinities are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "xX_pP") {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// ParseInteger reports whether s is a finite number without a fractional part.
func ParseInteger(s string) (float64, bool) {
	n, ok := ParseNumber(s)
	if !ok || n != math.Trunc(n) {
		return 0, false
	}
	return n, true
}

// ParseDecimal reports whether s is a finite number with a fractional part.
func ParseDecimal(s string) (float64, bool) {
	n, ok := ParseNumber(s)
	if !ok || n == math.Trunc(n) {
		return 0, false
	}
	return n, true
}

// DateTime holds the calendar fields exactly as written in the source text,
// plus the instant they denote. Out-of-range days roll over in Time the way
// time.Date normalizes them, so "2023-02-30" keeps Day 30 while Time falls
// on March 2.
type DateTime struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
	Time   time.Time
}

const timePart = `(?:[T ](\d{1,2}):(\d{2})(?::(\d{2})(?:\.(\d{1,9}))?)?\s*(Z|[+-]\d{2}:?\d{2})?)?`

var (
	yearFirstRe  = regexp.MustCompile(`^(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})` + timePart + `$`)
	monthFirstRe = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{4})` + timePart + `$`)
)

var textualLayouts = []string{
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon, 2 Jan 2006",
	"Mon Jan 2 2006",
	"Jan 2, 2006 15:04",
	"Jan 2, 2006 15:04:05",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
	time.ANSIC,
}

// ParseDateTime reads s as a calendar date with an optional time of day.
// Numeric forms are year-first (2006-01-02, 2006/01/02) or month-first
// (01/02/2006), with an optional "T" or space separated clock and zone.
// A few textual month forms are accepted as well.
func ParseDateTime(s string) (DateTime, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DateTime{}, false
	}

	if m := yearFirstRe.FindStringSubmatch(s); m != nil {
		return fromParts(m[1], m[2], m[3], m[4:])
	}
	if m := monthFirstRe.FindStringSubmatch(s); m != nil {
		return fromParts(m[3], m[1], m[2], m[4:])
	}

	for _, layout := range textualLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return DateTime{
			Year:   t.Year(),
			Month:  int(t.Month()),
			Day:    t.Day(),
			Hour:   t.Hour(),
			Minute: t.Minute(),
			Second: t.Second(),
			Time:   t.UTC(),
		}, true
	}
	return DateTime{}, false
}

// fromParts builds a DateTime from regexp groups. clock holds hour, minute,
// second, fraction and zone, any of which may be empty.
func fromParts(year, month, day string, clock []string) (DateTime, bool) {
	dt := DateTime{
		Year:  atoi(year),
		Month: atoi(month),
		Day:   atoi(day),
	}
	if dt.Month < 1 || dt.Month > 12 || dt.Day < 1 || dt.Day > 31 {
		return DateTime{}, false
	}

	dt.Hour, dt.Minute, dt.Second = atoi(clock[0]), atoi(clock[1]), atoi(clock[2])
	if dt.Hour > 23 || dt.Minute > 59 || dt.Second > 59 {
		return DateTime{}, false
	}

	nsec := 0
	if frac := clock[3]; frac != "" {
		nsec = atoi((frac + "000000000")[:9])
	}

	loc, ok := zone(clock[4])
	if !ok {
		return DateTime{}, false
	}

	dt.Time = time.Date(dt.Year, time.Month(dt.Month), dt.Day, dt.Hour, dt.Minute, dt.Second, nsec, loc).UTC()
	return dt, true
}

func zone(z string) (*time.Location, bool) {
	if z == "" || z == "Z" {
		return time.UTC, true
	}
	sign := 1
	if z[0] == '-' {
		sign = -1
	}
	digits := strings.ReplaceAll(z[1:], ":", "")
	if len(digits) != 4 {
		return nil, false
	}
	hours, mins := atoi(digits[:2]), atoi(digits[2:])
	if hours > 14 || mins > 59 {
		return nil, false
	}
	return time.FixedZone("", sign*(hours*3600+mins*60)), true
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
