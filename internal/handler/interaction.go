package handler

import (
	"net/http"

	"github.com/AKT74/shareulbi-backend/internal/ctxkeys"
	"github.com/AKT74/shareulbi-backend/internal/service"
)

type InteractionHandler struct {
	interactionService *service.InteractionService
}

func NewInteractionHandler(interactionService *service.InteractionService) *InteractionHandler {
	return &InteractionHandler{
		interactionService: interactionService,
	}
}

type commentRequest struct {
	Content string `json:"content"`
}

type likeResponse struct {
	Message string `json:"message"`
	Liked   bool   `json:"liked"`
}

type bookmarkResponse struct {
	Message    string `json:"message"`
	Bookmarked bool   `json:"bookmarked"`
}

func (h *InteractionHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	liked, err := h.interactionService.ToggleLike(r.Context(), ctxkeys.Identity(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	message := "Post unliked"
	if liked {
		message = "Post liked"
	}
	writeJSON(w, http.StatusOK, likeResponse{Message: message, Liked: liked})
}

func (h *InteractionHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var in commentRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	comment, err := h.interactionService.AddComment(r.Context(), ctxkeys.Identity(r.Context()), r.PathValue("id"), in.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, "Comment added", comment)
}

func (h *InteractionHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.interactionService.ListComments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "OK", comments)
}

func (h *InteractionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.interactionService.Summary(r.Context(), ctxkeys.Identity(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "OK", summary)
}

func (h *InteractionHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	bookmarked, err := h.interactionService.ToggleBookmark(r.Context(), ctxkeys.Identity(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	message := "Bookmark removed"
	if bookmarked {
		message = "Post bookmarked"
	}
	writeJSON(w, http.StatusOK, bookmarkResponse{Message: message, Bookmarked: bookmarked})
}

func (h *InteractionHandler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	posts, err := h.interactionService.ListBookmarks(r.Context(), ctxkeys.Identity(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "OK", posts)
}
