package web

import (
	"errors"
	"net/http"

	"datamigrator/internal/logging"
	"datamigrator/internal/migration"
	"datamigrator/internal/parser"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// writeError writes a JSON error body. Server errors are logged with the
// full cause; client errors only at debug level.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string, cause error) {
	resp := errorResponse{Error: message}
	if cause != nil {
		resp.Details = cause.Error()
	}

	logger := logging.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error(message, "status", status, "error", cause)
	} else {
		logger.Debug(message, "status", status, "error", cause)
	}

	writeJSON(w, r, status, resp)
}

// migrationStatus maps a pipeline error to an HTTP status. Problems with the
// uploaded file itself are the client's; everything else, a database
// failure in particular, is a server error.
func migrationStatus(err error) int {
	var (
		unsupported *parser.UnsupportedFormatError
		parseErr    *parser.ParseError
	)
	switch {
	case errors.As(err, &unsupported),
		errors.As(err, &parseErr),
		errors.Is(err, parser.ErrNoRecords),
		errors.Is(err, migration.ErrNoRecords),
		errors.Is(err, migration.ErrNoColumns):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
