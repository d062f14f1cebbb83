package output

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
)

// PlanReportName is the table slot used in consolidated report file names.
const PlanReportName = "consolidated"

var exportNameRe = regexp.MustCompile(`^[a-z0-9_]+_\d+_(schema\.sql|report\.(md|txt|json))$`)

// IsExportName reports whether name has the shape of a file written by
// Exporter. Only such names may be served back to clients.
func IsExportName(name string) bool {
	return exportNameRe.MatchString(name)
}

// Exporter writes DDL scripts and reports into Dir as
// <table>_<unix-millis>_schema.sql and <table>_<unix-millis>_report.<ext>.
type Exporter struct {
	Dir    string
	Format Format
	// Now defaults to time.Now.
	Now func() time.Time
}

// ExportedFiles holds the base names of the files written for one table.
type ExportedFiles struct {
	DDL    string `json:"ddlFilename"`
	Report string `json:"reportFilename"`
}

// NewExporter returns an Exporter writing reports in format into dir.
func NewExporter(dir string, format Format) *Exporter {
	return &Exporter{Dir: dir, Format: format}
}

func (e *Exporter) stamp() string {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	return strconv.FormatInt(now().UnixMilli(), 10)
}

// ExportTable writes the DDL script and the formatted report of r.
func (e *Exporter) ExportTable(r *TableReport) (ExportedFiles, error) {
	f, err := NewFormatter(string(e.Format))
	if err != nil {
		return ExportedFiles{}, err
	}

	base := r.Table + "_" + e.stamp()
	files := ExportedFiles{
		DDL:    base + "_schema.sql",
		Report: base + "_report." + e.Format.Extension(),
	}

	if err := e.write(files.DDL, r.DDL+"\n"); err != nil {
		return ExportedFiles{}, err
	}

	content, err := f.FormatTable(r)
	if err != nil {
		return ExportedFiles{}, fmt.Errorf("format report: %w", err)
	}
	if err := e.write(files.Report, content); err != nil {
		return ExportedFiles{}, err
	}
	return files, nil
}

// ExportPlan writes the consolidated plan report and returns its base name.
func (e *Exporter) ExportPlan(p *PlanReport) (string, error) {
	f, err := NewFormatter(string(e.Format))
	if err != nil {
		return "", err
	}
	content, err := f.FormatPlan(p)
	if err != nil {
		return "", fmt.Errorf("format plan report: %w", err)
	}

	name := PlanReportName + "_" + e.stamp() + "_report." + e.Format.Extension()
	if err := e.write(name, content); err != nil {
		return "", err
	}
	return name, nil
}

// Path returns the location of an exported file.
func (e *Exporter) Path(name string) string {
	return filepath.Join(e.Dir, name)
}

func (e *Exporter) write(name, content string) error {
	if e.Dir != "" {
		if err := os.MkdirAll(e.Dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	if err := os.WriteFile(e.Path(name), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
