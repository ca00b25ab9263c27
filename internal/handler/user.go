package handler

import (
	"net/http"

	"github.com/AKT74/shareulbi-backend/internal/ctxkeys"
	"github.com/AKT74/shareulbi-backend/internal/service"
)

// UserHandler serves the admin user management endpoints.
type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

type setActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

func (h *UserHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListPending(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "OK", users)
}

func (h *UserHandler) CountPending(w http.ResponseWriter, r *http.Request) {
	count, err := h.userService.CountPending(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "OK", map[string]int{"count": count})
}

func (h *UserHandler) Approve(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Approve(r.Context(), ctxkeys.Identity(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "User approved", user)
}

func (h *UserHandler) Reject(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Reject(r.Context(), ctxkeys.Identity(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "User rejected", user)
}

func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var in setActiveRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.IsActive == nil {
		badRequest(w, "is_active is required")
		return
	}

	user, err := h.userService.SetActive(r.Context(), ctxkeys.Identity(r.Context()), r.PathValue("id"), *in.IsActive)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "User updated", user)
}

func (h *UserHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	logs, err := h.userService.ListActivity(r.Context(), queryInt(r, "limit", 100))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "OK", logs)
}
