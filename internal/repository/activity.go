package repository

import (
	"context"

	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/jmoiron/sqlx"
)

type ActivityRepository interface {
	Create(ctx context.Context, log *model.ActivityLog) error
	Recent(ctx context.Context, limit int) ([]*model.ActivityLog, error)
}

type activityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, log *model.ActivityLog) error {
	query := `INSERT INTO activity_logs (id, user_id, action, description, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, log.ID, log.UserID, log.Action, log.Description, log.CreatedAt)
	return err
}

func (r *activityRepository) Recent(ctx context.Context, limit int) ([]*model.ActivityLog, error) {
	var logs []*model.ActivityLog
	err := r.db.SelectContext(ctx, &logs, `SELECT * FROM activity_logs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return logs, nil
}
