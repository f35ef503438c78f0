package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/evidex/evidex/internal/embedding"
	"github.com/evidex/evidex/internal/generate"
	"github.com/evidex/evidex/internal/report"
	"github.com/evidex/evidex/internal/retrieval"
)

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errStr, message string) {
	writeJSON(w, status, apiError{Error: errStr, Message: message, Code: status})
}

// writeEngineError maps an engine failure onto an HTTP status: a broken
// report is the client's problem, an unreachable model is an upstream
// problem, everything else is ours.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, retrieval.ErrNoActiveSession):
		writeError(w, http.StatusConflict, "no_active_session",
			"No report has been uploaded and processed yet. Please upload a file first.")
	case errors.Is(err, report.ErrNoReportFound),
		errors.Is(err, report.ErrMalformedReport),
		errors.Is(err, report.ErrUnsupportedFormat):
		writeError(w, http.StatusUnprocessableEntity, "invalid_report", err.Error())
	case errors.Is(err, embedding.ErrUnavailable),
		errors.Is(err, generate.ErrUnavailable):
		writeError(w, http.StatusBadGateway, "upstream_unavailable", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
