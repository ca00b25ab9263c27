package model

import (
	"time"
)

type FeedbackTopic struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	NameKey   string    `db:"name_key" json:"-"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportInReview ReportStatus = "in_review"
	ReportResolved ReportStatus = "resolved"
	ReportRejected ReportStatus = "rejected"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportInReview, ReportResolved, ReportRejected:
		return true
	}
	return false
}

func (s ReportStatus) Terminal() bool {
	return s == ReportResolved || s == ReportRejected
}

// CanTransition allows pending -> in_review -> resolved and rejection from any open state.
func (s ReportStatus) CanTransition(next ReportStatus) bool {
	switch s {
	case ReportPending:
		return next == ReportInReview || next == ReportRejected
	case ReportInReview:
		return next == ReportResolved || next == ReportRejected
	}
	return false
}

type Report struct {
	ID           string       `db:"id" json:"id"`
	UserID       string       `db:"user_id" json:"user_id"`
	ReporterName string       `db:"reporter_name" json:"reporter_name"`
	TopicID      string       `db:"topic_id" json:"topic_id"`
	TopicName    string       `db:"topic_name" json:"topic_name"`
	PostID       *string      `db:"post_id" json:"post_id"`
	PostTitle    *string      `db:"post_title" json:"post_title"`
	Description  string       `db:"description" json:"description"`
	Status       ReportStatus `db:"status" json:"status"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

type ActivityLog struct {
	ID          string    `db:"id" json:"id"`
	UserID      *string   `db:"user_id" json:"user_id"`
	Action      string    `db:"action" json:"action"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
