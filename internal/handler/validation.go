package handler

import (
	"net/http"

	"github.com/AKT74/shareulbi-backend/internal/ctxkeys"
	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/AKT74/shareulbi-backend/internal/service"
)

type ValidationHandler struct {
	validationService *service.ValidationService
}

func NewValidationHandler(validationService *service.ValidationService) *ValidationHandler {
	return &ValidationHandler{
		validationService: validationService,
	}
}

type validateRequest struct {
	Status model.Decision `json:"status"`
}

func (h *ValidationHandler) ListValidatable(w http.ResponseWriter, r *http.Request) {
	posts, err := h.validationService.ListValidatable(r.Context(), ctxkeys.Identity(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "OK", posts)
}

func (h *ValidationHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var in validateRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	err := h.validationService.Validate(r.Context(), ctxkeys.Identity(r.Context()), r.PathValue("id"), in.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, errorResponse{Message: "Post " + string(in.Status)})
}

func (h *ValidationHandler) History(w http.ResponseWriter, r *http.Request) {
	validations, err := h.validationService.History(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "OK", validations)
}
