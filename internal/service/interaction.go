package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AKT74/shareulbi-backend/internal/activity"
	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/AKT74/shareulbi-backend/internal/repository"
	"github.com/google/uuid"
)

const maxCommentLength = 2000

type InteractionService struct {
	interactionRepo repository.InteractionRepository
	postRepo        repository.PostRepository
	media           *MediaService
	activity        activity.Logger
}

func NewInteractionService(
	interactionRepo repository.InteractionRepository,
	postRepo repository.PostRepository,
	media *MediaService,
	activity activity.Logger,
) *InteractionService {
	return &InteractionService{
		interactionRepo: interactionRepo,
		postRepo:        postRepo,
		media:           media,
		activity:        activity,
	}
}

// ToggleLike removes the caller's like if present, otherwise adds it.
// It returns whether the post is liked afterwards. A concurrent insert that
// wins the race counts as liked.
func (s *InteractionService) ToggleLike(ctx context.Context, caller *model.Identity, postID string) (bool, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return false, err
	}

	removed, err := s.interactionRepo.DeleteLike(ctx, caller.UserID, postID)
	if err != nil {
		return false, ErrDependency("failed to update like", err)
	}
	if removed {
		s.activity.Log(ctx, caller.UserID, activity.ActionUnlikePost, "Unlike post "+postID)
		return false, nil
	}

	err = s.interactionRepo.InsertLike(ctx, &model.Interaction{
		ID:        uuid.New().String(),
		UserID:    caller.UserID,
		PostID:    postID,
		CreatedAt: time.Now().UTC(),
	})
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return true, nil
	case errors.Is(err, repository.ErrPostNotFound):
		return false, ErrNotFound("post not found")
	case err != nil:
		return false, ErrDependency("failed to update like", err)
	}

	s.activity.Log(ctx, caller.UserID, activity.ActionLikePost, "Like post "+postID)
	return true, nil
}

func (s *InteractionService) AddComment(ctx context.Context, caller *model.Identity, postID, content string) (*model.Interaction, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrValidation("comment cannot be empty")
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return nil, ErrValidation(fmt.Sprintf("comment is too long (max %d characters)", maxCommentLength))
	}

	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	comment := &model.Interaction{
		ID:        uuid.New().String(),
		UserID:    caller.UserID,
		PostID:    postID,
		Content:   &content,
		CreatedAt: time.Now().UTC(),
	}

	err := s.interactionRepo.InsertComment(ctx, comment)
	if errors.Is(err, repository.ErrPostNotFound) {
		return nil, ErrNotFound("post not found")
	}
	if err != nil {
		return nil, ErrDependency("failed to add comment", err)
	}

	s.activity.Log(ctx, caller.UserID, activity.ActionCommentPost, "Comment on post "+postID)
	return comment, nil
}

// ListComments returns comments oldest first.
func (s *InteractionService) ListComments(ctx context.Context, postID string) ([]*model.Comment, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.interactionRepo.Comments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	if comments == nil {
		comments = []*model.Comment{}
	}
	return comments, nil
}

func (s *InteractionService) Summary(ctx context.Context, viewer *model.Identity, postID string) (*model.InteractionSummary, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	summary, err := s.interactionRepo.Summary(ctx, viewerID(viewer), postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get interactions: %w", err)
	}
	return summary, nil
}

// ToggleBookmark mirrors ToggleLike for bookmarks.
func (s *InteractionService) ToggleBookmark(ctx context.Context, caller *model.Identity, postID string) (bool, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return false, err
	}

	removed, err := s.interactionRepo.DeleteBookmark(ctx, caller.UserID, postID)
	if err != nil {
		return false, ErrDependency("failed to update bookmark", err)
	}
	if removed {
		s.activity.Log(ctx, caller.UserID, activity.ActionUnbookmarkPost, "Remove bookmark "+postID)
		return false, nil
	}

	err = s.interactionRepo.InsertBookmark(ctx, &model.Bookmark{
		ID:        uuid.New().String(),
		UserID:    caller.UserID,
		PostID:    postID,
		CreatedAt: time.Now().UTC(),
	})
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return true, nil
	case errors.Is(err, repository.ErrPostNotFound):
		return false, ErrNotFound("post not found")
	case err != nil:
		return false, ErrDependency("failed to update bookmark", err)
	}

	s.activity.Log(ctx, caller.UserID, activity.ActionBookmarkPost, "Bookmark post "+postID)
	return true, nil
}

// ListBookmarks returns the caller's bookmarked posts, most recently bookmarked first.
func (s *InteractionService) ListBookmarks(ctx context.Context, caller *model.Identity) ([]*model.PostSummary, error) {
	posts, err := s.postRepo.Bookmarked(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}

	for _, p := range posts {
		p.File = s.media.Resolve(p.File)
	}
	if posts == nil {
		posts = []*model.PostSummary{}
	}
	return posts, nil
}

func (s *InteractionService) requirePost(ctx context.Context, postID string) error {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to check post: %w", err)
	}
	if !exists {
		return ErrNotFound("post not found")
	}
	return nil
}
