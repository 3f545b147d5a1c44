package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	appMiddleware "github.com/markdave123-py/DocShare/internal/api/middlewares"
	"github.com/markdave123-py/DocShare/internal/services"
)

const multipartMemory = 8 << 20

type UploadHandler struct {
	docs     *services.DocumentService
	maxBytes int64
}

func NewUploadHandler(docs *services.DocumentService, maxBytes int64) *UploadHandler {
	return &UploadHandler{docs: docs, maxBytes: maxBytes}
}

// Upload reads the multipart field "file" and returns its text and summaries.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	sess, ok := appMiddleware.SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("File too large (max %d MB)", h.maxBytes>>20))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			writeError(w, http.StatusBadRequest, "No file uploaded")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file")
		return
	}

	res, err := h.docs.Process(r.Context(), services.Upload{
		UserID:      sess.UserID,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
