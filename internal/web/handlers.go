package web

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"datamigrator/internal/config"
	"datamigrator/internal/core"
	"datamigrator/internal/output"
	"datamigrator/internal/pipeline"
)

// uploadSummary is the response body of a successful upload.
type uploadSummary struct {
	RunID           string                 `json:"runId"`
	TableName       string                 `json:"tableName"`
	TotalRecords    int                    `json:"totalRecords"`
	ValidRecords    int                    `json:"validRecords"`
	InsertedRecords int64                  `json:"insertedRecords"`
	ErrorCount      int                    `json:"errorCount"`
	ErrorDetails    []core.ValidationError `json:"errorDetails"`
	DDL             string                 `json:"ddl"`
	Duration        string                 `json:"duration"`
	output.ExportedFiles
}

func newUploadSummary(res *pipeline.FileResult) uploadSummary {
	r := res.Report
	details := r.Errors
	if details == nil {
		details = []core.ValidationError{}
	}
	return uploadSummary{
		RunID:           r.RunID,
		TableName:       r.Table,
		TotalRecords:    r.Processed,
		ValidRecords:    r.Valid,
		InsertedRecords: r.Inserted,
		ErrorCount:      r.ErrorCount(),
		ErrorDetails:    details,
		DDL:             r.DDL,
		Duration:        fmt.Sprintf("%.2f seconds", r.Duration.Seconds()),
		ExportedFiles:   res.Files,
	}
}

// handleUpload migrates the file sent in the multipart field "file". The
// table is named after the uploaded file.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, r, http.StatusBadRequest, "file too large or invalid form", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "no file provided", err)
		return
	}
	defer file.Close()

	name := strings.ToLower(filepath.Base(header.Filename))
	if name == "." || name == string(filepath.Separator) {
		writeError(w, r, http.StatusBadRequest, "invalid file name", nil)
		return
	}

	dir, err := os.MkdirTemp("", "datamigrator-upload-*")
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to store upload", err)
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, name)
	if err := saveUpload(path, file); err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to store upload", err)
		return
	}

	res, err := s.pipeline.RunFile(r.Context(), config.Target{File: path})
	if err != nil {
		status := migrationStatus(err)
		msg := "failed to migrate file"
		if status == http.StatusBadRequest {
			msg = "invalid source file"
		}
		writeError(w, r, status, msg, err)
		return
	}

	writeJSON(w, r, http.StatusOK, newUploadSummary(res))
}

func saveUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// handleDownload serves an exported DDL script or report. Only names with
// the exporter's shape are served, which also keeps requests inside the
// output directory.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if !output.IsExportName(name) {
		writeError(w, r, http.StatusForbidden, "access denied", nil)
		return
	}

	f, err := os.Open(s.pipeline.Exporter().Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, r, http.StatusNotFound, "file not found", nil)
			return
		}
		writeError(w, r, http.StatusInternalServerError, "failed to read file", err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to read file", err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}
