package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/jmoiron/sqlx"
)

type DepartmentRepository interface {
	List(ctx context.Context) ([]*model.Department, error)
	ByID(ctx context.Context, id string) (*model.Department, error)
	Create(ctx context.Context, department *model.Department) error
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

type departmentRepository struct {
	db *sqlx.DB
}

func NewDepartmentRepository(db *sqlx.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) List(ctx context.Context) ([]*model.Department, error) {
	var departments []*model.Department
	err := r.db.SelectContext(ctx, &departments, `SELECT * FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return departments, nil
}

func (r *departmentRepository) ByID(ctx context.Context, id string) (*model.Department, error) {
	department := &model.Department{}
	err := r.db.GetContext(ctx, department, `SELECT * FROM departments WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrDepartmentNotFound
	}
	return department, err
}

func (r *departmentRepository) Create(ctx context.Context, department *model.Department) error {
	department.NameKey = model.NameKey(department.Name)
	query := `INSERT INTO departments (id, name, name_key, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, department.ID, department.Name, department.NameKey, department.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert department: %w", err)
	}
	return nil
}

func (r *departmentRepository) Rename(ctx context.Context, id, name string) error {
	query := `UPDATE departments SET name = $1, name_key = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, name, model.NameKey(name), id)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to rename department: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}

// Delete drops the department; users keep their account with no department
// and category links cascade.
func (r *departmentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete department: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}
