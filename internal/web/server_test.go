package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datamigrator/internal/config"
	"datamigrator/internal/pipeline"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	outDir := t.TempDir()
	p, err := pipeline.New(pipeline.Options{OutDir: outDir})
	require.NoError(t, err)

	cfg := config.Default().Server
	return NewServer(p, cfg), outDir
}

func uploadRequest(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "nothing attached"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestUploadAndDownload(t *testing.T) {
	s, outDir := newTestServer(t)

	csv := "id,name,score\n1,Ann,10\n2,Bob,-3\n"
	rec := serve(s, uploadRequest(t, "file", "Team Scores.csv", csv))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary struct {
		TableName    string `json:"tableName"`
		TotalRecords int    `json:"totalRecords"`
		ValidRecords int    `json:"validRecords"`
		ErrorCount   int    `json:"errorCount"`
		ErrorDetails []struct {
			RowIndex int      `json:"rowIndex"`
			Reasons  []string `json:"reasons"`
		} `json:"errorDetails"`
		DDL            string `json:"ddl"`
		Duration       string `json:"duration"`
		DDLFilename    string `json:"ddlFilename"`
		ReportFilename string `json:"reportFilename"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))

	assert.Equal(t, "team_scores", summary.TableName)
	assert.Equal(t, 2, summary.TotalRecords)
	assert.Equal(t, 1, summary.ValidRecords)
	assert.Equal(t, 1, summary.ErrorCount)
	require.Len(t, summary.ErrorDetails, 1)
	assert.Equal(t, 2, summary.ErrorDetails[0].RowIndex)
	assert.Contains(t, summary.DDL, "CREATE TABLE `team_scores`")
	assert.Contains(t, summary.Duration, "seconds")
	assert.FileExists(t, filepath.Join(outDir, summary.DDLFilename))
	assert.FileExists(t, filepath.Join(outDir, summary.ReportFilename))

	dl := serve(s, httptest.NewRequest(http.MethodGet, "/download/"+summary.DDLFilename, nil))
	require.Equal(t, http.StatusOK, dl.Code)
	assert.Contains(t, dl.Body.String(), "DROP TABLE IF EXISTS `team_scores`;")
	assert.Contains(t, dl.Header().Get("Content-Disposition"), summary.DDLFilename)
}

func TestUploadCleanFileHasEmptyErrorDetails(t *testing.T) {
	s, _ := newTestServer(t)
	rec := serve(s, uploadRequest(t, "file", "cities.json", `[{"city":"Oslo"},{"city":"Bergen"}]`))
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.JSONEq(t, `[]`, string(raw["errorDetails"]))
}

func TestUploadErrors(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		filename   string
		content    string
		wantStatus int
		wantError  string
	}{
		{
			name:       "no file",
			wantStatus: http.StatusBadRequest,
			wantError:  "no file provided",
		},
		{
			name:       "unsupported format",
			field:      "file",
			filename:   "notes.txt",
			content:    "hello",
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid source file",
		},
		{
			name:       "no records",
			field:      "file",
			filename:   "empty.json",
			content:    "[]",
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid source file",
		},
		{
			name:       "malformed json",
			field:      "file",
			filename:   "broken.json",
			content:    `{"a":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid source file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)
			rec := serve(s, uploadRequest(t, tt.field, tt.filename, tt.content))
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body.Error)
		})
	}
}

func TestUploadTooLarge(t *testing.T) {
	p, err := pipeline.New(pipeline.Options{OutDir: t.TempDir()})
	require.NoError(t, err)
	cfg := config.Default().Server
	cfg.MaxUploadBytes = 64
	s := NewServer(p, cfg)

	big := "id,name\n" + string(bytes.Repeat([]byte("1,abcdefghij\n"), 50))
	rec := serve(s, uploadRequest(t, "file", "big.csv", big))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownload(t *testing.T) {
	s, outDir := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "orders_1700000000000_report.md"), []byte("# report"), 0o600))

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"existing report", "/download/orders_1700000000000_report.md", http.StatusOK},
		{"missing export", "/download/orders_1700000000001_schema.sql", http.StatusNotFound},
		{"foreign extension", "/download/orders_1700000000000_report.html", http.StatusForbidden},
		{"arbitrary file", "/download/passwd", http.StatusForbidden},
		{"upper case", "/download/Orders_1700000000000_schema.sql", http.StatusForbidden},
		{"encoded traversal", "/download/..%2F..%2Fetc%2Fpasswd", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestMigrationStatus(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, migrationStatus(os.ErrPermission))
}
