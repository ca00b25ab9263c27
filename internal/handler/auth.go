package handler

import (
	"net/http"
	"time"

	"github.com/AKT74/shareulbi-backend/internal/ctxkeys"
	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/AKT74/shareulbi-backend/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message   string      `json:"message"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if !decodeJSON(w, r, &in) {
		return
	}

	user, err := h.authService.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, "Registration received, waiting for admin approval", user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	user, token, expiry, err := h.authService.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.authService.SetJWTCookie(w, token, expiry)

	writeJSON(w, http.StatusOK, loginResponse{
		Message:   "Login successful",
		Token:     token,
		ExpiresAt: expiry,
		User:      user,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	writeJSON(w, http.StatusOK, errorResponse{Message: "Logged out"})
}

// Me returns the caller loaded fresh from the database.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller := ctxkeys.Identity(r.Context())

	user, err := h.userService.ByID(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "OK", user)
}

// CSRF hands the double-submit token to clients that cannot read cookies.
func (h *AuthHandler) CSRF(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"csrf_token": ctxkeys.CSRFToken(r.Context())})
}
