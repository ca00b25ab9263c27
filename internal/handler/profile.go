package handler

import (
	"net/http"

	"github.com/AKT74/shareulbi-backend/internal/ctxkeys"
	"github.com/AKT74/shareulbi-backend/internal/service"
)

type ProfileHandler struct {
	userService *service.UserService
}

func NewProfileHandler(userService *service.UserService) *ProfileHandler {
	return &ProfileHandler{
		userService: userService,
	}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateProfileInput
	if !decodeJSON(w, r, &in) {
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), ctxkeys.Identity(r.Context()), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "Profile updated", user)
}

func (h *ProfileHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var in changePasswordRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.CurrentPassword == "" {
		badRequest(w, "current password is required")
		return
	}

	err := h.userService.UpdatePassword(r.Context(), ctxkeys.Identity(r.Context()), in.CurrentPassword, in.NewPassword)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, errorResponse{Message: "Password updated"})
}
