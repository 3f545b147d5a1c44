package handlers

import (
	"encoding/json"
	"net/http"

	appMiddleware "github.com/markdave123-py/DocShare/internal/api/middlewares"
	"github.com/markdave123-py/DocShare/internal/services"
)

// DocumentHandler serves sharing and review of forum documents.
type DocumentHandler struct {
	forum *services.ForumService
}

func NewDocumentHandler(forum *services.ForumService) *DocumentHandler {
	return &DocumentHandler{forum: forum}
}

type shareRequest struct {
	Title   string `json:"title"`
	FileURL string `json:"fileUrl"`
	Summary string `json:"summary"`
}

type reviewRequest struct {
	DocID  string `json:"docId"`
	Status string `json:"status"`
}

func (h *DocumentHandler) Share(w http.ResponseWriter, r *http.Request) {
	sess, ok := appMiddleware.SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	doc, err := h.forum.Share(r.Context(), sess, req.Title, req.FileURL, req.Summary)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "document": doc})
}

func (h *DocumentHandler) Review(w http.ResponseWriter, r *http.Request) {
	sess, ok := appMiddleware.SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	if err := h.forum.Review(r.Context(), sess, req.DocID, req.Status); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
