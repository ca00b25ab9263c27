package repository

import (
	"context"
	"fmt"

	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/jmoiron/sqlx"
)

type InteractionRepository interface {
	InsertLike(ctx context.Context, like *model.Interaction) error
	DeleteLike(ctx context.Context, userID, postID string) (bool, error)
	InsertComment(ctx context.Context, comment *model.Interaction) error
	Comments(ctx context.Context, postID string) ([]*model.Comment, error)
	Summary(ctx context.Context, viewerID, postID string) (*model.InteractionSummary, error)

	InsertBookmark(ctx context.Context, bookmark *model.Bookmark) error
	DeleteBookmark(ctx context.Context, userID, postID string) (bool, error)
}

type interactionRepository struct {
	db *sqlx.DB
}

func NewInteractionRepository(db *sqlx.DB) InteractionRepository {
	return &interactionRepository{db: db}
}

// InsertLike returns ErrDuplicate when the user already likes the post.
func (r *interactionRepository) InsertLike(ctx context.Context, like *model.Interaction) error {
	like.Type = model.InteractionLike
	return r.insert(ctx, like)
}

func (r *interactionRepository) DeleteLike(ctx context.Context, userID, postID string) (bool, error) {
	query := `DELETE FROM interactions WHERE user_id = $1 AND post_id = $2 AND type = $3`
	return affected(r.db.ExecContext(ctx, query, userID, postID, model.InteractionLike))
}

func (r *interactionRepository) InsertComment(ctx context.Context, comment *model.Interaction) error {
	comment.Type = model.InteractionComment
	return r.insert(ctx, comment)
}

func (r *interactionRepository) insert(ctx context.Context, i *model.Interaction) error {
	query := `INSERT INTO interactions (id, user_id, post_id, type, content, created_at) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query, i.ID, i.UserID, i.PostID, i.Type, i.Content, i.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to insert %s: %w", i.Type, err)
	}

	return nil
}

func (r *interactionRepository) Comments(ctx context.Context, postID string) ([]*model.Comment, error) {
	var comments []*model.Comment
	query := `SELECT i.id, i.user_id, u.fullname AS author_name, i.content, i.created_at
	          FROM interactions i
	          JOIN users u ON u.id = i.user_id
	          WHERE i.post_id = $1 AND i.type = $2
	          ORDER BY i.created_at ASC`

	err := r.db.SelectContext(ctx, &comments, query, postID, model.InteractionComment)
	if err != nil {
		return nil, err
	}

	return comments, nil
}

func (r *interactionRepository) Summary(ctx context.Context, viewerID, postID string) (*model.InteractionSummary, error) {
	summary := &model.InteractionSummary{}
	query := `SELECT
		(SELECT COUNT(*) FROM interactions WHERE post_id = $2 AND type = 'like') AS likes,
		(SELECT COUNT(*) FROM interactions WHERE post_id = $2 AND type = 'comment') AS comments,
		EXISTS (SELECT 1 FROM interactions WHERE post_id = $2 AND type = 'like' AND user_id = $1) AS liked,
		EXISTS (SELECT 1 FROM bookmarks WHERE post_id = $2 AND user_id = $1) AS bookmarked`

	err := r.db.GetContext(ctx, summary, query, viewerID, postID)
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// InsertBookmark returns ErrDuplicate when the post is already bookmarked.
func (r *interactionRepository) InsertBookmark(ctx context.Context, bookmark *model.Bookmark) error {
	query := `INSERT INTO bookmarks (id, user_id, post_id, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, bookmark.ID, bookmark.UserID, bookmark.PostID, bookmark.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to insert bookmark: %w", err)
	}

	return nil
}

func (r *interactionRepository) DeleteBookmark(ctx context.Context, userID, postID string) (bool, error) {
	query := `DELETE FROM bookmarks WHERE user_id = $1 AND post_id = $2`
	return affected(r.db.ExecContext(ctx, query, userID, postID))
}
