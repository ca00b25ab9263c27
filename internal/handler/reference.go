package handler

import (
	"net/http"

	"github.com/AKT74/shareulbi-backend/internal/ctxkeys"
	"github.com/AKT74/shareulbi-backend/internal/service"
)

// ReferenceHandler serves departments and categories.
type ReferenceHandler struct {
	referenceService *service.ReferenceService
}

func NewReferenceHandler(referenceService *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{
		referenceService: referenceService,
	}
}

type departmentRequest struct {
	Name string `json:"name"`
}

type categoryRequest struct {
	Name              string   `json:"name"`
	IsRelatedToCampus *bool    `json:"is_related_to_campus"`
	DepartmentIDs     []string `json:"department_ids"`
}

func (c categoryRequest) input() service.CategoryInput {
	return service.CategoryInput{
		Name:              c.Name,
		IsRelatedToCampus: c.IsRelatedToCampus,
		DepartmentIDs:     c.DepartmentIDs,
	}
}

func (h *ReferenceHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.referenceService.ListDepartments(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "OK", departments)
}

func (h *ReferenceHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var in departmentRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	department, err := h.referenceService.CreateDepartment(r.Context(), ctxkeys.Identity(r.Context()), in.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, "Department created", department)
}

func (h *ReferenceHandler) RenameDepartment(w http.ResponseWriter, r *http.Request) {
	var in departmentRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	department, err := h.referenceService.RenameDepartment(r.Context(), r.PathValue("id"), in.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "Department updated", department)
}

func (h *ReferenceHandler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	err := h.referenceService.DeleteDepartment(r.Context(), ctxkeys.Identity(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, errorResponse{Message: "Department deleted"})
}

func (h *ReferenceHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.referenceService.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "OK", categories)
}

func (h *ReferenceHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.referenceService.GetCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "OK", category)
}

func (h *ReferenceHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	category, err := h.referenceService.CreateCategory(r.Context(), ctxkeys.Identity(r.Context()), in.input())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, "Category created", category)
}

func (h *ReferenceHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	category, err := h.referenceService.UpdateCategory(r.Context(), ctxkeys.Identity(r.Context()), r.PathValue("id"), in.input())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "Category updated", category)
}

func (h *ReferenceHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	err := h.referenceService.DeleteCategory(r.Context(), ctxkeys.Identity(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, errorResponse{Message: "Category deleted"})
}
