package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"datamigrator/internal/core"
	"datamigrator/internal/normalize"
)

var csvDelimiters = []rune{',', ';', '\t', '|'}

var (
	spacedColumnsRe = regexp.MustCompile(`\s{2,}`)
	lineBreakRe     = regexp.MustCompile(`\r?\n`)
)

// CSVParser reads delimited text with a header row. The delimiter is
// detected by trying ',', ';', tab and '|' in turn; the first one that
// yields more than one column wins. Text aligned with runs of two or more
// spaces is accepted as a last resort.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader) ([]*core.RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("csv: read: %w", err)
	}
	content := strings.TrimPrefix(string(data), "\ufeff")

	for _, d := range csvDelimiters {
		records, err := parseDelimited(content, d)
		if err != nil {
			continue
		}
		if len(records) > 0 && records[0].Len() > 1 {
			return records, nil
		}
	}

	records, ok := parseSpaced(content)
	if !ok {
		return nil, errors.New("csv: could not determine the delimiter")
	}
	return records, nil
}

func parseDelimited(content string, delimiter rune) ([]*core.RawRecord, error) {
	cr := csv.NewReader(strings.NewReader(content))
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, err
	}

	var records []*core.RawRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rec := core.NewRawRecord()
		for i, name := range header {
			if i >= len(row) {
				break
			}
			rec.Set(name, row[i])
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseSpaced splits lines on runs of two or more whitespace characters.
// Header names are sanitized since they usually carry padding and symbols.
// ok is false when there were data lines but none could be read.
func parseSpaced(content string) (records []*core.RawRecord, ok bool) {
	lines := lineBreakRe.Split(strings.TrimSpace(content), -1)
	if len(lines) < 2 {
		return nil, true
	}

	headers := spacedColumnsRe.Split(strings.TrimSpace(lines[0]), -1)
	for i, h := range headers {
		headers[i] = normalize.SanitizeKey(strings.TrimSpace(h))
	}

	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		values := spacedColumnsRe.Split(line, -1)
		rec := core.NewRawRecord()
		for i, h := range headers {
			if i >= len(values) {
				break
			}
			rec.Set(h, strings.TrimSpace(values[i]))
		}
		if rec.Len() > 0 {
			records = append(records, rec)
		}
	}
	return records, len(records) > 0
}
