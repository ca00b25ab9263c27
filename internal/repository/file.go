package repository

import (
	"context"
	"fmt"

	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/jmoiron/sqlx"
)

const postFileColumns = `id, post_id, file_kind, mime_type, file_url, file_size, meta, created_at`

type FileRepository interface {
	ByPostID(ctx context.Context, postID string) ([]*model.PostFile, error)
	ByPostIDs(ctx context.Context, postIDs []string) (map[string][]*model.PostFile, error)
	PatchMeta(ctx context.Context, postID, fileID string, meta model.FileMeta) (bool, error)
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) *fileRepository {
	return &fileRepository{db: db}
}

func insertPostFile(ctx context.Context, ext sqlx.ExtContext, file *model.PostFile) error {
	raw, err := model.EncodeMeta(file.Meta)
	if err != nil {
		return err
	}
	file.RawMeta = raw

	query := `INSERT INTO post_files (id, post_id, file_kind, mime_type, file_url, file_size, meta, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = ext.ExecContext(ctx, query,
		file.ID,
		file.PostID,
		file.Kind,
		file.MimeType,
		file.URL,
		file.Size,
		file.RawMeta,
		file.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert post file: %w", err)
	}

	return nil
}

func (r *fileRepository) ByPostID(ctx context.Context, postID string) ([]*model.PostFile, error) {
	var files []*model.PostFile
	query := `SELECT ` + postFileColumns + ` FROM post_files WHERE post_id = $1 ORDER BY created_at`

	err := r.db.SelectContext(ctx, &files, query, postID)
	if err != nil {
		return nil, err
	}

	return files, decodeFiles(files)
}

func (r *fileRepository) ByPostIDs(ctx context.Context, postIDs []string) (map[string][]*model.PostFile, error) {
	byPost := make(map[string][]*model.PostFile, len(postIDs))
	if len(postIDs) == 0 {
		return byPost, nil
	}

	query, args, err := sqlx.In(`SELECT `+postFileColumns+` FROM post_files WHERE post_id IN (?) ORDER BY created_at`, postIDs)
	if err != nil {
		return nil, err
	}

	var files []*model.PostFile
	err = r.db.SelectContext(ctx, &files, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	err = decodeFiles(files)
	if err != nil {
		return nil, err
	}

	for _, f := range files {
		byPost[f.PostID] = append(byPost[f.PostID], f)
	}
	return byPost, nil
}

// PatchMeta replaces the metadata of a file still attached to postID.
// It reports false without error when the file or its post is gone.
func (r *fileRepository) PatchMeta(ctx context.Context, postID, fileID string, meta model.FileMeta) (bool, error) {
	raw, err := model.EncodeMeta(meta)
	if err != nil {
		return false, err
	}

	query := `UPDATE post_files SET meta = $1 WHERE id = $2 AND post_id = $3`
	result, err := r.db.ExecContext(ctx, query, raw, fileID, postID)
	if err != nil {
		return false, fmt.Errorf("failed to patch file meta: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func decodeFiles(files []*model.PostFile) error {
	for _, f := range files {
		err := f.Decode()
		if err != nil {
			return fmt.Errorf("file %s: %w", f.ID, err)
		}
	}
	return nil
}
