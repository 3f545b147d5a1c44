package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/markdave123-py/DocShare/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("encode response failed", "component", "http", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeErr maps err onto a status and client facing message.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Default().Error("request failed", "component", "http", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, status, msg)
}

var errorTable = []struct {
	err    error
	status int
	msg    string
}{
	{core.ErrNoFileUploaded, http.StatusBadRequest, "No file uploaded"},
	{core.ErrUnsupportedFileType, http.StatusBadRequest, "Unsupported file type"},
	{core.ErrInsufficientContent, http.StatusBadRequest, "File appears to be empty or contains insufficient text for summarization"},
	{core.ErrMissingFields, http.StatusBadRequest, "Missing fields"},
	{core.ErrEmailTaken, http.StatusBadRequest, "Email already in use"},
	{core.ErrInvalidStatus, http.StatusBadRequest, "Invalid status"},
	{core.ErrEmptyComment, http.StatusBadRequest, "Empty comment"},
	{core.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{core.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{core.ErrNotFound, http.StatusNotFound, "Not found"},
	{core.ErrProviderUnavailable, http.StatusServiceUnavailable, "Summarization service unavailable"},
	{core.ErrEmptyResult, http.StatusServiceUnavailable, "Summarization service returned no summary"},
	{core.ErrSearchUnavailable, http.StatusServiceUnavailable, "Semantic search is not configured"},
	{core.ErrProviderMisconfigured, http.StatusInternalServerError, "Summarization service is not configured"},
}

func statusFor(err error) (int, string) {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.status, e.msg
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}
