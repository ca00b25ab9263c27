package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AKT74/shareulbi-backend/internal/activity"
	"github.com/AKT74/shareulbi-backend/internal/markdown"
	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/AKT74/shareulbi-backend/internal/repository"
	"github.com/AKT74/shareulbi-backend/internal/validation"
	"github.com/google/uuid"
)

const minContentLength = 5

type CreatePostInput struct {
	Title       string
	Description string
	Type        model.PostType
	CategoryID  string
	Media       *Upload
}

type UpdatePostInput struct {
	Title       string
	Description string
	CategoryID  string
}

type ListFilter struct {
	Type   model.PostType
	UserID string
	Limit  int
	Offset int
}

type UploadLimits struct {
	VideoMaxBytes int64
	PDFMaxBytes   int64
}

type PostService struct {
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
	media        *MediaService
	activity     activity.Logger
	markdown     *markdown.Parser
	limits       UploadLimits
}

func NewPostService(
	postRepo repository.PostRepository,
	categoryRepo repository.CategoryRepository,
	media *MediaService,
	activity activity.Logger,
	markdown *markdown.Parser,
	limits UploadLimits,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		media:        media,
		activity:     activity,
		markdown:     markdown,
		limits:       limits,
	}
}

// Create validates the input, runs the media pipeline for the post type and
// persists the post with its category link and file. Video derivation happens
// before the insert; PDF previews are rendered after it in the background.
func (s *PostService) Create(ctx context.Context, author *model.Identity, in CreatePostInput) (*model.Post, error) {
	if author == nil {
		return nil, ErrUnauthorized("authentication required")
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if !in.Type.Valid() {
		return nil, ErrValidation("invalid post type")
	}
	if in.Title == "" {
		return nil, ErrValidation("title is required")
	}
	if in.CategoryID == "" {
		return nil, ErrValidation("category is required")
	}

	required := in.Type.RequiredMedia()
	if required != "" {
		if err := checkContentLength(in.Title, in.Description); err != nil {
			return nil, err
		}
		if in.Media == nil {
			return nil, ErrValidation(fmt.Sprintf("a %s file is required", required))
		}
	}

	category, err := s.categoryRepo.ByID(ctx, in.CategoryID)
	if errors.Is(err, repository.ErrCategoryNotFound) {
		return nil, ErrValidation("category not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	var file *model.PostFile
	if in.Media != nil {
		file, err = s.storeMedia(ctx, in.Type, in.Media)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	post := &model.Post{
		ID:          uuid.New().String(),
		UserID:      author.UserID,
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		Status:      model.InitialStatus(category.IsRelatedToCampus),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.postRepo.Create(ctx, post, category.ID, file)
	if err != nil {
		s.media.Discard(file)
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrValidation("category not found")
		}
		return nil, ErrDependency("failed to save post", err)
	}

	if file != nil && file.Kind == model.FileKindPDF {
		s.media.ProcessPDFAsync(post.ID, file)
	}

	s.activity.Log(ctx, author.UserID, activity.ActionCreatePost, fmt.Sprintf("Create %s %s", post.Type, post.ID))
	slog.Info("post created", "post_id", post.ID, "type", post.Type, "status", post.Status)

	return post, nil
}

// storeMedia gates the upload by type and size, then uploads it.
func (s *PostService) storeMedia(ctx context.Context, postType model.PostType, up *Upload) (*model.PostFile, error) {
	video := validation.VideoConstraints.WithMaxSize(s.limits.VideoMaxBytes)
	pdf := validation.DocumentConstraints.WithMaxSize(s.limits.PDFMaxBytes)

	var constraints []validation.FileConstraints
	switch postType.RequiredMedia() {
	case model.FileKindVideo:
		constraints = append(constraints, video)
	case model.FileKindPDF:
		constraints = append(constraints, pdf)
	default:
		constraints = append(constraints, validation.ImageConstraints, pdf, video)
	}

	mimeType, err := validation.ValidateFile(up.Filename, up.Data, constraints...)
	if err != nil {
		return nil, ErrValidation(err.Error())
	}
	up.MimeType = mimeType

	switch up.Kind() {
	case model.FileKindVideo:
		return s.media.StoreVideo(ctx, up)
	case model.FileKindPDF:
		return s.media.StorePDF(ctx, up)
	}
	return s.media.StoreOther(ctx, up)
}

// Update rewrites the content of a post and returns its resulting status.
func (s *PostService) Update(ctx context.Context, caller *model.Identity, postID string, in UpdatePostInput) (model.PostStatus, error) {
	post, err := s.postRepo.ByID(ctx, postID)
	if errors.Is(err, repository.ErrPostNotFound) {
		return "", ErrNotFound("post not found")
	}
	if err != nil {
		return "", fmt.Errorf("failed to get post: %w", err)
	}

	if !caller.CanModify(post.UserID) {
		return "", ErrForbidden("you are not allowed to edit this post")
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if err := checkContentLength(title, description); err != nil {
		return "", err
	}
	if in.CategoryID == "" {
		return "", ErrValidation("category is required")
	}

	status, err := s.postRepo.UpdateContent(ctx, postID, title, description, in.CategoryID)
	switch {
	case errors.Is(err, repository.ErrCategoryNotFound):
		return "", ErrValidation("category not found")
	case errors.Is(err, repository.ErrPostNotFound):
		return "", ErrNotFound("post not found")
	case err != nil:
		return "", ErrDependency("failed to update post", err)
	}

	s.activity.Log(ctx, caller.UserID, activity.ActionUpdatePost, "Update post "+postID)

	return status, nil
}

// Delete removes the post and everything attached to it. Blob cleanup runs
// after the commit and is best effort.
func (s *PostService) Delete(ctx context.Context, caller *model.Identity, postID string) error {
	post, err := s.postRepo.ByID(ctx, postID)
	if errors.Is(err, repository.ErrPostNotFound) {
		return ErrNotFound("post not found")
	}
	if err != nil {
		return fmt.Errorf("failed to get post: %w", err)
	}

	if !caller.CanModify(post.UserID) {
		return ErrForbidden("you are not allowed to delete this post")
	}

	files, err := s.postRepo.Delete(ctx, postID)
	if errors.Is(err, repository.ErrPostNotFound) {
		return ErrNotFound("post not found")
	}
	if err != nil {
		return ErrDependency("failed to delete post", err)
	}

	s.media.Discard(files...)
	s.activity.Log(ctx, caller.UserID, activity.ActionDeletePost, "Delete post "+postID)

	return nil
}

func (s *PostService) Get(ctx context.Context, viewer *model.Identity, postID string) (*model.PostDetail, error) {
	detail, err := s.postRepo.Detail(ctx, viewerID(viewer), postID)
	if errors.Is(err, repository.ErrPostNotFound) {
		return nil, ErrNotFound("post not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	detail.Files = s.media.ResolveAll(detail.Files)
	detail.File = s.media.Resolve(detail.File)

	detail.DescriptionHTML, err = s.markdown.Render(detail.Description)
	if err != nil {
		slog.Warn("failed to render description", "error", err, "post_id", postID)
	}

	return detail, nil
}

// List returns the feed newest first, each post with its preferred file.
func (s *PostService) List(ctx context.Context, viewer *model.Identity, filter ListFilter) ([]*model.PostSummary, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, ErrValidation("invalid post type")
	}

	posts, err := s.postRepo.Feed(ctx, viewerID(viewer), repository.PostFilter{
		Type:   filter.Type,
		UserID: filter.UserID,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return s.resolveSummaries(posts), nil
}

func (s *PostService) ListByUser(ctx context.Context, viewer *model.Identity, userID string) ([]*model.PostSummary, error) {
	return s.List(ctx, viewer, ListFilter{UserID: userID})
}

func (s *PostService) resolveSummaries(posts []*model.PostSummary) []*model.PostSummary {
	for _, p := range posts {
		p.File = s.media.Resolve(p.File)
	}
	if posts == nil {
		return []*model.PostSummary{}
	}
	return posts
}

func checkContentLength(title, description string) error {
	if err := validation.ValidateMinLength("title", title, minContentLength); err != nil {
		return ErrValidation(err.Error())
	}
	if err := validation.ValidateMinLength("description", description, minContentLength); err != nil {
		return ErrValidation(err.Error())
	}
	return nil
}

func viewerID(viewer *model.Identity) string {
	if viewer == nil {
		return ""
	}
	return viewer.UserID
}
