package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrPostNotFound = errors.New("post not found")
	// ErrNotValidatable covers both a post outside the lecturer's departments
	// and a post that is no longer awaiting review.
	ErrNotValidatable = errors.New("post is not validatable by this lecturer")
)

// $1 is always the viewer id ("" for anonymous callers).
const summaryColumns = `p.id, p.user_id, u.fullname AS author_name, p.title, p.description, p.type, p.status,
	pc.category_id, c.name AS category_name,
	(SELECT COUNT(*) FROM interactions i WHERE i.post_id = p.id AND i.type = 'like') AS like_count,
	(SELECT COUNT(*) FROM interactions i WHERE i.post_id = p.id AND i.type = 'comment') AS comment_count,
	EXISTS (SELECT 1 FROM interactions i WHERE i.post_id = p.id AND i.type = 'like' AND i.user_id = $1) AS liked,
	EXISTS (SELECT 1 FROM bookmarks b WHERE b.post_id = p.id AND b.user_id = $1) AS bookmarked,
	p.created_at, p.updated_at`

const summaryJoins = `FROM posts p
	JOIN users u ON u.id = p.user_id
	LEFT JOIN post_categories pc ON pc.post_id = p.id
	LEFT JOIN categories c ON c.id = pc.category_id`

type PostFilter struct {
	Type   model.PostType
	UserID string
	Status model.PostStatus
	Limit  int
	Offset int
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post, categoryID string, file *model.PostFile) error
	ByID(ctx context.Context, id string) (*model.Post, error)
	Exists(ctx context.Context, id string) (bool, error)
	UpdateContent(ctx context.Context, postID, title, description, categoryID string) (model.PostStatus, error)
	Delete(ctx context.Context, postID string) ([]*model.PostFile, error)
	ApplyValidation(ctx context.Context, postID, validatorID, departmentID string, decision model.Decision) error
	Validatable(ctx context.Context, viewerID, departmentID string) ([]*model.PostSummary, error)
	Validations(ctx context.Context, postID string) ([]*model.PostValidation, error)
	Feed(ctx context.Context, viewerID string, filter PostFilter) ([]*model.PostSummary, error)
	Bookmarked(ctx context.Context, userID string) ([]*model.PostSummary, error)
	Detail(ctx context.Context, viewerID, postID string) (*model.PostDetail, error)
}

type postRepository struct {
	db    *sqlx.DB
	files FileRepository
}

func NewPostRepository(db *sqlx.DB, files FileRepository) PostRepository {
	return &postRepository{db: db, files: files}
}

// Create inserts the post, its category link and the optional file as one unit.
func (r *postRepository) Create(ctx context.Context, post *model.Post, categoryID string, file *model.PostFile) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `INSERT INTO posts (id, user_id, title, description, type, status, created_at, updated_at)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		_, err := tx.ExecContext(ctx, query,
			post.ID,
			post.UserID,
			post.Title,
			post.Description,
			post.Type,
			post.Status,
			post.CreatedAt,
			post.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert post: %w", err)
		}

		_, err = tx.ExecContext(ctx, `INSERT INTO post_categories (post_id, category_id) VALUES ($1, $2)`, post.ID, categoryID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("failed to link category: %w", err)
		}

		if file != nil {
			file.PostID = post.ID
			err = insertPostFile(ctx, tx, file)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *postRepository) ByID(ctx context.Context, id string) (*model.Post, error) {
	post := &model.Post{}
	query := `SELECT * FROM posts WHERE id = $1`

	err := r.db.GetContext(ctx, post, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrPostNotFound
	}

	return post, err
}

func (r *postRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// UpdateContent rewrites title, description and category link, recomputing the
// status from the new category unless the post is already validated.
func (r *postRepository) UpdateContent(ctx context.Context, postID, title, description, categoryID string) (model.PostStatus, error) {
	var next model.PostStatus

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var campusRelated bool
		err := tx.QueryRowContext(ctx, `SELECT is_related_to_campus FROM categories WHERE id = $1`, categoryID).Scan(&campusRelated)
		if err == sql.ErrNoRows {
			return ErrCategoryNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read category: %w", err)
		}

		var current model.PostStatus
		err = tx.QueryRowContext(ctx, `SELECT status FROM posts WHERE id = $1`, postID).Scan(&current)
		if err == sql.ErrNoRows {
			return ErrPostNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read post status: %w", err)
		}

		next = current.AfterEdit(campusRelated)

		query := `UPDATE posts SET title = $1, description = $2, status = $3, updated_at = $4 WHERE id = $5`
		_, err = tx.ExecContext(ctx, query, title, description, next, time.Now().UTC(), postID)
		if err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}

		// Single category per post: last write wins
		_, err = tx.ExecContext(ctx, `DELETE FROM post_categories WHERE post_id = $1`, postID)
		if err != nil {
			return fmt.Errorf("failed to unlink category: %w", err)
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO post_categories (post_id, category_id) VALUES ($1, $2)`, postID, categoryID)
		if err != nil {
			return fmt.Errorf("failed to link category: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return next, nil
}

// Delete removes the post with everything attached to it and returns the
// removed file rows so their blobs can be cleaned up after commit.
func (r *postRepository) Delete(ctx context.Context, postID string) ([]*model.PostFile, error) {
	var files []*model.PostFile

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM post_categories WHERE post_id = $1`, postID)
		if err != nil {
			return fmt.Errorf("failed to delete category link: %w", err)
		}

		err = tx.SelectContext(ctx, &files, `DELETE FROM post_files WHERE post_id = $1 RETURNING `+postFileColumns, postID)
		if err != nil {
			return fmt.Errorf("failed to delete files: %w", err)
		}

		for _, table := range []string{"bookmarks", "interactions", "post_validations"} {
			_, err = tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE post_id = $1`, postID)
			if err != nil {
				return fmt.Errorf("failed to delete %s: %w", table, err)
			}
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, postID)
		if err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrPostNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, f := range files {
		// Blob cleanup only needs keys; tolerate unreadable meta
		_ = f.Decode()
	}
	return files, nil
}

// ApplyValidation records a lecturer decision and moves the post out of review.
func (r *postRepository) ApplyValidation(ctx context.Context, postID, validatorID, departmentID string, decision model.Decision) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var status model.PostStatus
		err := tx.QueryRowContext(ctx, `SELECT status FROM posts WHERE id = $1`, postID).Scan(&status)
		if err == sql.ErrNoRows {
			return ErrPostNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read post status: %w", err)
		}
		if !status.Reviewable() {
			return ErrNotValidatable
		}

		var linked bool
		query := `SELECT EXISTS (
			SELECT 1 FROM post_categories pc
			JOIN categories c ON c.id = pc.category_id
			JOIN category_departments cd ON cd.category_id = c.id
			WHERE pc.post_id = $1 AND c.is_related_to_campus = TRUE AND cd.department_id = $2
		)`
		err = tx.QueryRowContext(ctx, query, postID, departmentID).Scan(&linked)
		if err != nil {
			return fmt.Errorf("failed to check department scope: %w", err)
		}
		if !linked {
			return ErrNotValidatable
		}

		now := time.Now().UTC()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO post_validations (id, post_id, validator_id, status, created_at) VALUES ($1, $2, $3, $4, $5)`,
			uuid.New().String(), postID, validatorID, decision.Status(), now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert validation: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE posts SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
			decision.Status(), now, postID, model.PostStatusPublished,
		)
		if err != nil {
			return fmt.Errorf("failed to update post status: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			// Another decision landed first
			return ErrNotValidatable
		}
		return nil
	})
}

func (r *postRepository) Validatable(ctx context.Context, viewerID, departmentID string) ([]*model.PostSummary, error) {
	var posts []*model.PostSummary
	query := `SELECT DISTINCT ` + summaryColumns + ` ` + summaryJoins + `
		JOIN category_departments cd ON cd.category_id = c.id
		WHERE p.status = $2 AND c.is_related_to_campus = TRUE AND cd.department_id = $3
		ORDER BY p.created_at DESC`

	err := r.db.SelectContext(ctx, &posts, query, viewerID, model.PostStatusPublished, departmentID)
	if err != nil {
		return nil, err
	}

	return posts, r.attachFiles(ctx, posts)
}

func (r *postRepository) Validations(ctx context.Context, postID string) ([]*model.PostValidation, error) {
	var validations []*model.PostValidation
	query := `SELECT v.id, v.post_id, v.validator_id, u.fullname AS validator_name, v.status, v.created_at
	          FROM post_validations v
	          JOIN users u ON u.id = v.validator_id
	          WHERE v.post_id = $1
	          ORDER BY v.created_at DESC`

	err := r.db.SelectContext(ctx, &validations, query, postID)
	if err != nil {
		return nil, err
	}

	return validations, nil
}

func (r *postRepository) Feed(ctx context.Context, viewerID string, filter PostFilter) ([]*model.PostSummary, error) {
	args := []any{viewerID}
	var where []string

	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf("p.type = $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where = append(where, fmt.Sprintf("p.user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("p.status = $%d", len(args)))
	}

	query := `SELECT ` + summaryColumns + ` ` + summaryJoins
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY p.created_at DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	var posts []*model.PostSummary
	err := r.db.SelectContext(ctx, &posts, query, args...)
	if err != nil {
		return nil, err
	}

	return posts, r.attachFiles(ctx, posts)
}

func (r *postRepository) Bookmarked(ctx context.Context, userID string) ([]*model.PostSummary, error) {
	var posts []*model.PostSummary
	query := `SELECT ` + summaryColumns + ` ` + summaryJoins + `
		JOIN bookmarks bm ON bm.post_id = p.id AND bm.user_id = $1
		ORDER BY bm.created_at DESC`

	err := r.db.SelectContext(ctx, &posts, query, userID)
	if err != nil {
		return nil, err
	}

	return posts, r.attachFiles(ctx, posts)
}

func (r *postRepository) Detail(ctx context.Context, viewerID, postID string) (*model.PostDetail, error) {
	detail := &model.PostDetail{}
	query := `SELECT ` + summaryColumns + `, c.is_related_to_campus AS category_campus_related ` + summaryJoins + `
		WHERE p.id = $2`

	err := r.db.GetContext(ctx, detail, query, viewerID, postID)
	if err == sql.ErrNoRows {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}

	detail.Files, err = r.files.ByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	detail.File = model.PreferredFile(detail.Files)

	return detail, nil
}

func (r *postRepository) attachFiles(ctx context.Context, posts []*model.PostSummary) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	files, err := r.files.ByPostIDs(ctx, ids)
	if err != nil {
		return err
	}

	for _, p := range posts {
		p.File = model.PreferredFile(files[p.ID])
	}
	return nil
}
