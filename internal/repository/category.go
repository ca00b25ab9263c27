package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrCategoryNotFound   = errors.New("category not found")
	ErrDepartmentNotFound = errors.New("department not found")
)

type CategoryRepository interface {
	List(ctx context.Context) ([]*model.Category, error)
	ByID(ctx context.Context, id string) (*model.Category, error)
	Create(ctx context.Context, category *model.Category, departmentIDs []string) error
	Update(ctx context.Context, category *model.Category, departmentIDs []string) error
	Delete(ctx context.Context, id string) error
}

type categoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

type categoryLink struct {
	CategoryID string `db:"category_id"`
	model.Department
}

func (r *categoryRepository) List(ctx context.Context) ([]*model.Category, error) {
	var categories []*model.Category
	err := r.db.SelectContext(ctx, &categories, `SELECT * FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}

	var links []categoryLink
	query := `SELECT cd.category_id, d.id, d.name, d.created_at
	          FROM category_departments cd
	          JOIN departments d ON d.id = cd.department_id
	          ORDER BY d.name`
	err = r.db.SelectContext(ctx, &links, query)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string][]*model.Department)
	for i := range links {
		byCategory[links[i].CategoryID] = append(byCategory[links[i].CategoryID], &links[i].Department)
	}
	for _, c := range categories {
		c.Departments = byCategory[c.ID]
		if c.Departments == nil {
			c.Departments = []*model.Department{}
		}
	}

	return categories, nil
}

func (r *categoryRepository) ByID(ctx context.Context, id string) (*model.Category, error) {
	category := &model.Category{}
	err := r.db.GetContext(ctx, category, `SELECT * FROM categories WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}

	query := `SELECT d.* FROM departments d
	          JOIN category_departments cd ON cd.department_id = d.id
	          WHERE cd.category_id = $1
	          ORDER BY d.name`
	category.Departments = []*model.Department{}
	err = r.db.SelectContext(ctx, &category.Departments, query, id)
	if err != nil {
		return nil, err
	}

	return category, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category, departmentIDs []string) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		category.NameKey = model.NameKey(category.Name)
		query := `INSERT INTO categories (id, name, name_key, is_related_to_campus, created_at) VALUES ($1, $2, $3, $4, $5)`
		_, err := tx.ExecContext(ctx, query, category.ID, category.Name, category.NameKey, category.IsRelatedToCampus, category.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to insert category: %w", err)
		}

		return linkDepartments(ctx, tx, category, departmentIDs)
	})
}

// Update replaces name, flag and department links together.
func (r *categoryRepository) Update(ctx context.Context, category *model.Category, departmentIDs []string) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		category.NameKey = model.NameKey(category.Name)
		query := `UPDATE categories SET name = $1, name_key = $2, is_related_to_campus = $3 WHERE id = $4`
		result, err := tx.ExecContext(ctx, query, category.Name, category.NameKey, category.IsRelatedToCampus, category.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to update category: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrCategoryNotFound
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM category_departments WHERE category_id = $1`, category.ID)
		if err != nil {
			return fmt.Errorf("failed to clear department links: %w", err)
		}

		return linkDepartments(ctx, tx, category, departmentIDs)
	})
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM post_categories WHERE category_id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to unlink posts: %w", err)
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM category_departments WHERE category_id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to unlink departments: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrCategoryNotFound
		}
		return nil
	})
}

// Department links only carry meaning for campus-related categories.
func linkDepartments(ctx context.Context, tx *sqlx.Tx, category *model.Category, departmentIDs []string) error {
	if !category.IsRelatedToCampus {
		return nil
	}

	seen := make(map[string]bool, len(departmentIDs))
	for _, id := range departmentIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		_, err := tx.ExecContext(ctx, `INSERT INTO category_departments (category_id, department_id) VALUES ($1, $2)`, category.ID, id)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrDepartmentNotFound
			}
			return fmt.Errorf("failed to link department: %w", err)
		}
	}
	return nil
}
