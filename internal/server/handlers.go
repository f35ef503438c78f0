package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxUploadBytes caps the accepted archive size. Extraction reports are
// XML inside a zip, rarely more than a few hundred megabytes.
const maxUploadBytes = 256 << 20

type uploadResponse struct {
	Message  string `json:"message"`
	Chunks   int    `json:"chunks"`
	Chats    int    `json:"chats"`
	Calls    int    `json:"calls"`
	Contacts int    `json:"contacts"`
}

type queryRequest struct {
	Question string `json:"question"`
}

type queryResponse struct {
	Answer string `json:"answer"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleUpload accepts a report archive as the multipart field "file",
// builds a fresh session from it and replaces any previous one.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "multipart field 'file' required")
		return
	}
	defer file.Close()

	archive, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "failed to read uploaded file")
		return
	}

	result, err := s.engine.BuildSession(r.Context(), archive, header.Filename)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{
		Message:  fmt.Sprintf("Successfully processed '%s' and it is ready for analysis.", result.Filename),
		Chunks:   result.Chunks,
		Chats:    result.Chats,
		Calls:    result.Calls,
		Contacts: result.Contacts,
	})
}

// handleQuery answers a question against the active session.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "malformed request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "question required")
		return
	}

	answer, err := s.engine.Answer(r.Context(), req.Question)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, queryResponse{Answer: answer})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	stats, err := s.engine.SessionStats()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
