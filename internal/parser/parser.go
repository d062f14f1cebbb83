// Package parser reads CSV, JSON and XML source files into raw records.
// The parser is chosen from the file extension.
package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"datamigrator/internal/core"
	"datamigrator/internal/normalize"
)

// Format identifies a supported source format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// ErrNoRecords is returned when a source yields no records.
var ErrNoRecords = errors.New("file contains no records")

// Parser reads one source document into records.
type Parser interface {
	Parse(r io.Reader) ([]*core.RawRecord, error)
}

// Dataset is a parsed source file.
type Dataset struct {
	Path    string
	Format  Format
	Table   string
	Records []*core.RawRecord
}

// NewParser returns the parser for format.
func NewParser(format Format) (Parser, error) {
	switch format {
	case FormatCSV:
		return &CSVParser{}, nil
	case FormatJSON:
		return &JSONParser{}, nil
	case FormatXML:
		return &XMLParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %q; use 'csv', 'json', or 'xml'", format)
	}
}

// FormatFromPath maps a file extension to its Format.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".xml":
		return FormatXML, nil
	default:
		return "", &UnsupportedFormatError{Path: path}
	}
}

// ParseFile opens path and parses it with the parser for its extension.
// The table name is derived from the file name.
func ParseFile(path string) (*Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source file %q: %w", path, err)
	}
	defer f.Close()

	records, err := Parse(f, format)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	return &Dataset{
		Path:    path,
		Format:  format,
		Table:   normalize.TableName(path),
		Records: records,
	}, nil
}

// Parse reads r as format. An empty result is reported as ErrNoRecords.
func Parse(r io.Reader, format Format) ([]*core.RawRecord, error) {
	p, err := NewParser(format)
	if err != nil {
		return nil, err
	}
	records, err := p.Parse(r)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}

type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return "unsupported file format (only CSV, JSON or XML): " + e.Path
}

// ParseError reports a source file whose content could not be read as its
// format, or that held no records.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
