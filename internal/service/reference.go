package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AKT74/shareulbi-backend/internal/activity"
	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/AKT74/shareulbi-backend/internal/repository"
	"github.com/AKT74/shareulbi-backend/internal/validation"
	"github.com/google/uuid"
)

type CategoryInput struct {
	Name              string
	IsRelatedToCampus *bool // nil means campus related
	DepartmentIDs     []string
}

// ReferenceService manages departments and categories.
type ReferenceService struct {
	departmentRepo repository.DepartmentRepository
	categoryRepo   repository.CategoryRepository
	activity       activity.Logger
}

func NewReferenceService(
	departmentRepo repository.DepartmentRepository,
	categoryRepo repository.CategoryRepository,
	activity activity.Logger,
) *ReferenceService {
	return &ReferenceService{
		departmentRepo: departmentRepo,
		categoryRepo:   categoryRepo,
		activity:       activity,
	}
}

func (s *ReferenceService) ListDepartments(ctx context.Context) ([]*model.Department, error) {
	departments, err := s.departmentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	if departments == nil {
		departments = []*model.Department{}
	}
	return departments, nil
}

func (s *ReferenceService) CreateDepartment(ctx context.Context, caller *model.Identity, name string) (*model.Department, error) {
	name = validation.CleanName(name)
	if err := validation.ValidateName(name); err != nil {
		return nil, ErrValidation(err.Error())
	}

	department := &model.Department{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	err := s.departmentRepo.Create(ctx, department)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrConflict("department already exists")
	}
	if err != nil {
		return nil, ErrDependency("failed to create department", err)
	}

	s.activity.Log(ctx, caller.UserID, activity.ActionCreateDepartment, "Create department "+name)
	return department, nil
}

func (s *ReferenceService) RenameDepartment(ctx context.Context, id, name string) (*model.Department, error) {
	name = validation.CleanName(name)
	if err := validation.ValidateName(name); err != nil {
		return nil, ErrValidation(err.Error())
	}

	err := s.departmentRepo.Rename(ctx, id, name)
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return nil, ErrConflict("department already exists")
	case errors.Is(err, repository.ErrDepartmentNotFound):
		return nil, ErrNotFound("department not found")
	case err != nil:
		return nil, ErrDependency("failed to rename department", err)
	}

	department, err := s.departmentRepo.ByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	return department, nil
}

func (s *ReferenceService) DeleteDepartment(ctx context.Context, caller *model.Identity, id string) error {
	err := s.departmentRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrDepartmentNotFound) {
		return ErrNotFound("department not found")
	}
	if err != nil {
		return ErrDependency("failed to delete department", err)
	}

	s.activity.Log(ctx, caller.UserID, activity.ActionDeleteDepartment, "Delete department "+id)
	return nil
}

func (s *ReferenceService) ListCategories(ctx context.Context) ([]*model.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []*model.Category{}
	}
	return categories, nil
}

func (s *ReferenceService) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	category, err := s.categoryRepo.ByID(ctx, id)
	if errors.Is(err, repository.ErrCategoryNotFound) {
		return nil, ErrNotFound("category not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

func (s *ReferenceService) CreateCategory(ctx context.Context, caller *model.Identity, in CategoryInput) (*model.Category, error) {
	category, err := newCategory(uuid.New().String(), in)
	if err != nil {
		return nil, err
	}

	err = s.categoryRepo.Create(ctx, category, in.DepartmentIDs)
	if err := categoryWriteError(err); err != nil {
		return nil, err
	}

	s.activity.Log(ctx, caller.UserID, activity.ActionCreateCategory, "Create category "+category.Name)
	return s.GetCategory(ctx, category.ID)
}

// UpdateCategory replaces the category and its department links. Existing posts
// keep their status until their next edit.
func (s *ReferenceService) UpdateCategory(ctx context.Context, caller *model.Identity, id string, in CategoryInput) (*model.Category, error) {
	category, err := newCategory(id, in)
	if err != nil {
		return nil, err
	}

	err = s.categoryRepo.Update(ctx, category, in.DepartmentIDs)
	if err := categoryWriteError(err); err != nil {
		return nil, err
	}

	s.activity.Log(ctx, caller.UserID, activity.ActionUpdateCategory, "Update category "+category.Name)
	return s.GetCategory(ctx, id)
}

func (s *ReferenceService) DeleteCategory(ctx context.Context, caller *model.Identity, id string) error {
	err := s.categoryRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrCategoryNotFound) {
		return ErrNotFound("category not found")
	}
	if err != nil {
		return ErrDependency("failed to delete category", err)
	}

	s.activity.Log(ctx, caller.UserID, activity.ActionDeleteCategory, "Delete category "+id)
	return nil
}

func newCategory(id string, in CategoryInput) (*model.Category, error) {
	name := validation.CleanName(in.Name)
	if err := validation.ValidateName(name); err != nil {
		return nil, ErrValidation(err.Error())
	}

	campus := true
	if in.IsRelatedToCampus != nil {
		campus = *in.IsRelatedToCampus
	}

	return &model.Category{
		ID:                id,
		Name:              name,
		IsRelatedToCampus: campus,
		CreatedAt:         time.Now().UTC(),
	}, nil
}

func categoryWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrDuplicate):
		return ErrConflict("category already exists")
	case errors.Is(err, repository.ErrCategoryNotFound):
		return ErrNotFound("category not found")
	case errors.Is(err, repository.ErrDepartmentNotFound):
		return ErrValidation("department not found")
	}
	return ErrDependency("failed to save category", err)
}
