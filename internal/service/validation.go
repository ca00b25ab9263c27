package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/AKT74/shareulbi-backend/internal/activity"
	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/AKT74/shareulbi-backend/internal/repository"
)

// ValidationService drives lecturer review of campus-related posts.
type ValidationService struct {
	postRepo repository.PostRepository
	media    *MediaService
	activity activity.Logger
}

func NewValidationService(postRepo repository.PostRepository, media *MediaService, activity activity.Logger) *ValidationService {
	return &ValidationService{
		postRepo: postRepo,
		media:    media,
		activity: activity,
	}
}

// ListValidatable returns the lecturer's review queue, newest first.
func (s *ValidationService) ListValidatable(ctx context.Context, lecturer *model.Identity) ([]*model.PostSummary, error) {
	dept, err := reviewerDepartment(lecturer)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.Validatable(ctx, lecturer.UserID, dept)
	if err != nil {
		return nil, fmt.Errorf("failed to list validatable posts: %w", err)
	}

	for _, p := range posts {
		p.File = s.media.Resolve(p.File)
	}
	if posts == nil {
		posts = []*model.PostSummary{}
	}
	return posts, nil
}

// Validate records the lecturer's decision and moves the post to it.
// Posts outside the lecturer's departments or no longer awaiting review are Forbidden.
func (s *ValidationService) Validate(ctx context.Context, lecturer *model.Identity, postID string, decision model.Decision) error {
	dept, err := reviewerDepartment(lecturer)
	if err != nil {
		return err
	}
	if !decision.Valid() {
		return ErrValidation("status must be validated or rejected")
	}

	err = s.postRepo.ApplyValidation(ctx, postID, lecturer.UserID, dept, decision)
	switch {
	case errors.Is(err, repository.ErrPostNotFound):
		return ErrNotFound("post not found")
	case errors.Is(err, repository.ErrNotValidatable):
		return ErrForbidden("you are not allowed to validate this post")
	case err != nil:
		return ErrDependency("failed to validate post", err)
	}

	s.activity.Log(ctx, lecturer.UserID, activity.ActionValidatePost, fmt.Sprintf("Validate post %s as %s", postID, decision))

	return nil
}

// History lists the validation records of a post, newest first.
func (s *ValidationService) History(ctx context.Context, postID string) ([]*model.PostValidation, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to check post: %w", err)
	}
	if !exists {
		return nil, ErrNotFound("post not found")
	}

	validations, err := s.postRepo.Validations(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list validations: %w", err)
	}
	if validations == nil {
		validations = []*model.PostValidation{}
	}
	return validations, nil
}

func reviewerDepartment(caller *model.Identity) (string, error) {
	if !caller.IsLecturer() {
		return "", ErrForbidden("only lecturers can validate posts")
	}
	dept := caller.Department()
	if dept == "" {
		return "", ErrForbidden("lecturer has no department")
	}
	return dept, nil
}
