package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	appMiddleware "github.com/markdave123-py/DocShare/internal/api/middlewares"
	"github.com/markdave123-py/DocShare/internal/models"
	"github.com/markdave123-py/DocShare/internal/services"
)

// ForumHandler serves the feed, semantic search and comments.
type ForumHandler struct {
	forum *services.ForumService
}

func NewForumHandler(forum *services.ForumService) *ForumHandler {
	return &ForumHandler{forum: forum}
}

type commentRequest struct {
	DocumentID string `json:"documentId"`
	Content    string `json:"content"`
}

func (h *ForumHandler) Feed(w http.ResponseWriter, r *http.Request) {
	feed, err := h.forum.Feed(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"feed": feed})
}

// ReviewQueue lists the documents still waiting for a decision.
func (h *ForumHandler) ReviewQueue(w http.ResponseWriter, r *http.Request) {
	queue, err := h.forum.Feed(r.Context(), models.StatusPending)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"feed": queue})
}

func (h *ForumHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	results, err := h.forum.Search(r.Context(), q.Get("q"), limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *ForumHandler) Comment(w http.ResponseWriter, r *http.Request) {
	sess, ok := appMiddleware.SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	c, err := h.forum.Comment(r.Context(), sess, req.DocumentID, req.Content)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comment": c})
}
