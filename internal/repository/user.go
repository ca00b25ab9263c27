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
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	ByID(ctx context.Context, id string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByOnboarding(ctx context.Context, status model.OnboardingStatus) ([]*model.User, error)
	CountByOnboarding(ctx context.Context, status model.OnboardingStatus) (int, error)
	TransitionOnboarding(ctx context.Context, id string, from, to model.OnboardingStatus) (bool, error)
	SetActive(ctx context.Context, id string, active bool) error
	UpdateProfile(ctx context.Context, id, fullname string, occupation *string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, fullname, email, password_hash, role, department_id, student_number, lecturer_number,
	                             occupation, onboarding_status, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Fullname,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.DepartmentID,
		user.StudentNumber,
		user.LecturerNumber,
		user.Occupation,
		user.OnboardingStatus,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		if isForeignKeyViolation(err) {
			return ErrDepartmentNotFound
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (r *userRepository) ByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, user, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

func (r *userRepository) ByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE email = $1`

	err := r.db.GetContext(ctx, user, query, email)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

func (r *userRepository) ByOnboarding(ctx context.Context, status model.OnboardingStatus) ([]*model.User, error) {
	var users []*model.User
	query := `SELECT * FROM users WHERE onboarding_status = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &users, query, status)
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepository) CountByOnboarding(ctx context.Context, status model.OnboardingStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE onboarding_status = $1`, status).Scan(&count)
	return count, err
}

// TransitionOnboarding moves a user between onboarding states and reports
// false when the user is not in the expected state.
func (r *userRepository) TransitionOnboarding(ctx context.Context, id string, from, to model.OnboardingStatus) (bool, error) {
	query := `UPDATE users SET onboarding_status = $1, updated_at = $2 WHERE id = $3 AND onboarding_status = $4`

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

func (r *userRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, active, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id, fullname string, occupation *string) error {
	query := `UPDATE users SET fullname = $1, occupation = $2, updated_at = $3 WHERE id = $4`

	ok, err := affected(r.db.ExecContext(ctx, query, fullname, occupation, time.Now().UTC(), id))
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`

	ok, err := affected(r.db.ExecContext(ctx, query, passwordHash, time.Now().UTC(), id))
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}
