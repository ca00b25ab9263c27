package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrTopicNotFound  = errors.New("feedback topic not found")
	ErrReportNotFound = errors.New("report not found")
)

type TopicRepository interface {
	List(ctx context.Context, activeOnly bool) ([]*model.FeedbackTopic, error)
	ByID(ctx context.Context, id string) (*model.FeedbackTopic, error)
	Create(ctx context.Context, topic *model.FeedbackTopic) error
	Update(ctx context.Context, topic *model.FeedbackTopic) error
	Delete(ctx context.Context, id string) error
}

type topicRepository struct {
	db *sqlx.DB
}

func NewTopicRepository(db *sqlx.DB) TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) List(ctx context.Context, activeOnly bool) ([]*model.FeedbackTopic, error) {
	var topics []*model.FeedbackTopic
	query := `SELECT * FROM feedback_topics`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name`

	err := r.db.SelectContext(ctx, &topics, query)
	if err != nil {
		return nil, err
	}
	return topics, nil
}

func (r *topicRepository) ByID(ctx context.Context, id string) (*model.FeedbackTopic, error) {
	topic := &model.FeedbackTopic{}
	err := r.db.GetContext(ctx, topic, `SELECT * FROM feedback_topics WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrTopicNotFound
	}
	return topic, err
}

func (r *topicRepository) Create(ctx context.Context, topic *model.FeedbackTopic) error {
	topic.NameKey = model.NameKey(topic.Name)
	query := `INSERT INTO feedback_topics (id, name, name_key, is_active, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, topic.ID, topic.Name, topic.NameKey, topic.IsActive, topic.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert topic: %w", err)
	}
	return nil
}

func (r *topicRepository) Update(ctx context.Context, topic *model.FeedbackTopic) error {
	topic.NameKey = model.NameKey(topic.Name)
	query := `UPDATE feedback_topics SET name = $1, name_key = $2, is_active = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, topic.Name, topic.NameKey, topic.IsActive, topic.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update topic: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTopicNotFound
	}
	return nil
}

// Delete fails with ErrReferenced while reports still use the topic.
func (r *topicRepository) Delete(ctx context.Context, id string) error {
	ok, err := affected(r.db.ExecContext(ctx, `DELETE FROM feedback_topics WHERE id = $1`, id))
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrReferenced
		}
		return fmt.Errorf("failed to delete topic: %w", err)
	}
	if !ok {
		return ErrTopicNotFound
	}
	return nil
}

type ReportFilter struct {
	Status model.ReportStatus
}

type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	List(ctx context.Context, filter ReportFilter) ([]*model.Report, error)
	ByID(ctx context.Context, id string) (*model.Report, error)
	TransitionStatus(ctx context.Context, id string, from, to model.ReportStatus) (bool, error)
}

type reportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) ReportRepository {
	return &reportRepository{db: db}
}

const reportSelect = `SELECT r.id, r.user_id, u.fullname AS reporter_name, r.topic_id, t.name AS topic_name,
	r.post_id, p.title AS post_title, r.description, r.status, r.created_at, r.updated_at
	FROM reports_feedbacks r
	JOIN users u ON u.id = r.user_id
	JOIN feedback_topics t ON t.id = r.topic_id
	LEFT JOIN posts p ON p.id = r.post_id`

func (r *reportRepository) Create(ctx context.Context, report *model.Report) error {
	query := `INSERT INTO reports_feedbacks (id, user_id, topic_id, post_id, description, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		report.ID,
		report.UserID,
		report.TopicID,
		report.PostID,
		report.Description,
		report.Status,
		report.CreatedAt,
		report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

func (r *reportRepository) List(ctx context.Context, filter ReportFilter) ([]*model.Report, error) {
	var reports []*model.Report
	var err error

	if filter.Status != "" {
		err = r.db.SelectContext(ctx, &reports, reportSelect+` WHERE r.status = $1 ORDER BY r.created_at DESC`, filter.Status)
	} else {
		err = r.db.SelectContext(ctx, &reports, reportSelect+` ORDER BY r.created_at DESC`)
	}
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *reportRepository) ByID(ctx context.Context, id string) (*model.Report, error) {
	report := &model.Report{}
	err := r.db.GetContext(ctx, report, reportSelect+` WHERE r.id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrReportNotFound
	}
	return report, err
}

// TransitionStatus is a compare-and-set on the report status.
func (r *reportRepository) TransitionStatus(ctx context.Context, id string, from, to model.ReportStatus) (bool, error) {
	query := `UPDATE reports_feedbacks SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
