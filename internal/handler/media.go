package handler

import (
	"net/http"
	"strings"
)

// MediaHandler serves blobs written by local storage. Directory listings are
// never exposed.
type MediaHandler struct {
	files http.Handler
}

func NewMediaHandler(root string) *MediaHandler {
	return &MediaHandler{files: http.FileServer(http.Dir(root))}
}

func (h *MediaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "file not found"})
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	h.files.ServeHTTP(w, r)
}
