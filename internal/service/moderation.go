package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AKT74/shareulbi-backend/internal/activity"
	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/AKT74/shareulbi-backend/internal/repository"
	"github.com/AKT74/shareulbi-backend/internal/validation"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const reportSheet = "Reports"

type TopicInput struct {
	Name     string
	IsActive *bool // nil means active
}

type CreateReportInput struct {
	TopicID     string
	PostID      string // optional
	Description string
}

// ModerationService handles feedback topics and user reports.
type ModerationService struct {
	topicRepo  repository.TopicRepository
	reportRepo repository.ReportRepository
	postRepo   repository.PostRepository
	activity   activity.Logger
}

func NewModerationService(
	topicRepo repository.TopicRepository,
	reportRepo repository.ReportRepository,
	postRepo repository.PostRepository,
	activity activity.Logger,
) *ModerationService {
	return &ModerationService{
		topicRepo:  topicRepo,
		reportRepo: reportRepo,
		postRepo:   postRepo,
		activity:   activity,
	}
}

// ListTopics returns every topic to admins and only active ones to everyone else.
func (s *ModerationService) ListTopics(ctx context.Context, caller *model.Identity) ([]*model.FeedbackTopic, error) {
	topics, err := s.topicRepo.List(ctx, !caller.IsAdmin())
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	if topics == nil {
		topics = []*model.FeedbackTopic{}
	}
	return topics, nil
}

func (s *ModerationService) CreateTopic(ctx context.Context, in TopicInput) (*model.FeedbackTopic, error) {
	topic, err := newTopic(uuid.New().String(), in)
	if err != nil {
		return nil, err
	}

	err = s.topicRepo.Create(ctx, topic)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrConflict("feedback topic already exists")
	}
	if err != nil {
		return nil, ErrDependency("failed to create feedback topic", err)
	}
	return topic, nil
}

func (s *ModerationService) UpdateTopic(ctx context.Context, id string, in TopicInput) (*model.FeedbackTopic, error) {
	topic, err := newTopic(id, in)
	if err != nil {
		return nil, err
	}

	err = s.topicRepo.Update(ctx, topic)
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return nil, ErrConflict("feedback topic already exists")
	case errors.Is(err, repository.ErrTopicNotFound):
		return nil, ErrNotFound("feedback topic not found")
	case err != nil:
		return nil, ErrDependency("failed to update feedback topic", err)
	}

	return s.topicRepo.ByID(ctx, id)
}

func (s *ModerationService) DeleteTopic(ctx context.Context, id string) error {
	err := s.topicRepo.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrTopicNotFound):
		return ErrNotFound("feedback topic not found")
	case errors.Is(err, repository.ErrReferenced):
		return ErrConflict("feedback topic is used by reports, deactivate it instead")
	case err != nil:
		return ErrDependency("failed to delete feedback topic", err)
	}
	return nil
}

func newTopic(id string, in TopicInput) (*model.FeedbackTopic, error) {
	name := validation.CleanName(in.Name)
	if err := validation.ValidateName(name); err != nil {
		return nil, ErrValidation(err.Error())
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	return &model.FeedbackTopic{
		ID:        id,
		Name:      name,
		IsActive:  active,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// CreateReport files a report under an active topic, optionally about a post.
func (s *ModerationService) CreateReport(ctx context.Context, caller *model.Identity, in CreateReportInput) (*model.Report, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, ErrValidation("description is required")
	}
	if in.TopicID == "" {
		return nil, ErrValidation("topic is required")
	}

	topic, err := s.topicRepo.ByID(ctx, in.TopicID)
	if errors.Is(err, repository.ErrTopicNotFound) {
		return nil, ErrValidation("feedback topic not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	if !topic.IsActive {
		return nil, ErrValidation("feedback topic is not active")
	}

	var postID *string
	if in.PostID != "" {
		exists, err := s.postRepo.Exists(ctx, in.PostID)
		if err != nil {
			return nil, fmt.Errorf("failed to check post: %w", err)
		}
		if !exists {
			return nil, ErrNotFound("post not found")
		}
		postID = &in.PostID
	}

	now := time.Now().UTC()
	report := &model.Report{
		ID:          uuid.New().String(),
		UserID:      caller.UserID,
		TopicID:     topic.ID,
		PostID:      postID,
		Description: description,
		Status:      model.ReportPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.reportRepo.Create(ctx, report)
	if err != nil {
		return nil, ErrDependency("failed to create report", err)
	}

	s.activity.Log(ctx, caller.UserID, activity.ActionCreateReport, "Report on topic "+topic.Name)

	return s.reportRepo.ByID(ctx, report.ID)
}

func (s *ModerationService) ListReports(ctx context.Context, status model.ReportStatus) ([]*model.Report, error) {
	if status != "" && !status.Valid() {
		return nil, ErrValidation("invalid report status")
	}

	reports, err := s.reportRepo.List(ctx, repository.ReportFilter{Status: status})
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	if reports == nil {
		reports = []*model.Report{}
	}
	return reports, nil
}

func (s *ModerationService) GetReport(ctx context.Context, id string) (*model.Report, error) {
	report, err := s.reportRepo.ByID(ctx, id)
	if errors.Is(err, repository.ErrReportNotFound) {
		return nil, ErrNotFound("report not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// UpdateReportStatus moves a report along its workflow. Resolved and rejected
// reports are final.
func (s *ModerationService) UpdateReportStatus(ctx context.Context, caller *model.Identity, id string, next model.ReportStatus) (*model.Report, error) {
	if !next.Valid() {
		return nil, ErrValidation("invalid report status")
	}

	report, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	if !report.Status.CanTransition(next) {
		return nil, ErrValidation(fmt.Sprintf("cannot move report from %s to %s", report.Status, next))
	}

	ok, err := s.reportRepo.TransitionStatus(ctx, id, report.Status, next)
	if err != nil {
		return nil, ErrDependency("failed to update report", err)
	}
	if !ok {
		return nil, ErrConflict("report was changed by someone else")
	}

	s.activity.Log(ctx, caller.UserID, activity.ActionUpdateReport, fmt.Sprintf("Report %s: %s -> %s", id, report.Status, next))

	return s.GetReport(ctx, id)
}

// ExportXLSX renders the filtered reports as a spreadsheet.
func (s *ModerationService) ExportXLSX(ctx context.Context, status model.ReportStatus) ([]byte, error) {
	reports, err := s.ListReports(ctx, status)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []any{"ID", "Reporter", "Topic", "Post", "Description", "Status", "Created At", "Updated At"}
	if err := f.SetSheetRow(reportSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	if err := f.SetCellStyle(reportSheet, "A1", "H1", bold); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range reports {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}

		postTitle := ""
		if r.PostTitle != nil {
			postTitle = *r.PostTitle
		}

		row := []any{
			r.ID,
			r.ReporterName,
			r.TopicName,
			postTitle,
			r.Description,
			string(r.Status),
			r.CreatedAt.Format(time.RFC3339),
			r.UpdatedAt.Format(time.RFC3339),
		}
		if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(reportSheet, "B", "E", 30); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode spreadsheet: %w", err)
	}
	return buf.Bytes(), nil
}
