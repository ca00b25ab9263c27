package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/AKT74/shareulbi-backend/internal/ctxkeys"
	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/AKT74/shareulbi-backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ModerationHandler serves feedback topics and reports.
type ModerationHandler struct {
	moderationService *service.ModerationService
}

func NewModerationHandler(moderationService *service.ModerationService) *ModerationHandler {
	return &ModerationHandler{
		moderationService: moderationService,
	}
}

type topicRequest struct {
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active"`
}

type reportRequest struct {
	TopicID     string `json:"topic_id"`
	PostID      string `json:"post_id"`
	Description string `json:"description"`
}

type reportStatusRequest struct {
	Status model.ReportStatus `json:"status"`
}

func (h *ModerationHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.moderationService.ListTopics(r.Context(), ctxkeys.Identity(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "OK", topics)
}

func (h *ModerationHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	var in topicRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	topic, err := h.moderationService.CreateTopic(r.Context(), service.TopicInput{Name: in.Name, IsActive: in.IsActive})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, "Feedback topic created", topic)
}

func (h *ModerationHandler) UpdateTopic(w http.ResponseWriter, r *http.Request) {
	var in topicRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	topic, err := h.moderationService.UpdateTopic(r.Context(), r.PathValue("id"), service.TopicInput{Name: in.Name, IsActive: in.IsActive})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "Feedback topic updated", topic)
}

func (h *ModerationHandler) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	err := h.moderationService.DeleteTopic(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, errorResponse{Message: "Feedback topic deleted"})
}

func (h *ModerationHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var in reportRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	report, err := h.moderationService.CreateReport(r.Context(), ctxkeys.Identity(r.Context()), service.CreateReportInput{
		TopicID:     in.TopicID,
		PostID:      in.PostID,
		Description: in.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, "Report submitted", report)
}

func (h *ModerationHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.moderationService.ListReports(r.Context(), model.ReportStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "OK", reports)
}

func (h *ModerationHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.moderationService.GetReport(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "OK", report)
}

func (h *ModerationHandler) UpdateReportStatus(w http.ResponseWriter, r *http.Request) {
	var in reportStatusRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	report, err := h.moderationService.UpdateReportStatus(r.Context(), ctxkeys.Identity(r.Context()), r.PathValue("id"), in.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "Report updated", report)
}

func (h *ModerationHandler) ExportReports(w http.ResponseWriter, r *http.Request) {
	data, err := h.moderationService.ExportXLSX(r.Context(), model.ReportStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("reports-%s.xlsx", time.Now().UTC().Format("20060102"))

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
