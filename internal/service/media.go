package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/AKT74/shareulbi-backend/internal/media"
	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/AKT74/shareulbi-backend/internal/repository"
	"github.com/AKT74/shareulbi-backend/internal/storage"
	"github.com/google/uuid"
)

// Upload is a media file received with a post, already read into memory.
type Upload struct {
	Filename string
	MimeType string // sniffed, not client supplied
	Data     []byte
}

func (u *Upload) Kind() model.FileKind {
	return model.FileKindFor(u.MimeType)
}

// MediaService stores uploaded media and its derived previews.
type MediaService struct {
	fileRepo     repository.FileRepository
	storage      storage.Storage
	deriver      media.Deriver
	previewPages int
	timeout      time.Duration

	wg sync.WaitGroup
}

func NewMediaService(
	fileRepo repository.FileRepository,
	storage storage.Storage,
	deriver media.Deriver,
	previewPages int,
	timeout time.Duration,
) *MediaService {
	if previewPages < 1 {
		previewPages = 3
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &MediaService{
		fileRepo:     fileRepo,
		storage:      storage,
		deriver:      deriver,
		previewPages: previewPages,
		timeout:      timeout,
	}
}

// StoreVideo probes the video, extracts a thumbnail and uploads both.
// The returned file is not persisted yet.
func (s *MediaService) StoreVideo(ctx context.Context, up *Upload) (*model.PostFile, error) {
	artifacts, err := s.deriver.ProbeVideo(ctx, up.Data)
	if err != nil {
		return nil, ErrDependency("failed to process video", err)
	}

	id := uuid.New().String()
	ext := ".mp4"
	if up.MimeType == "video/webm" {
		ext = ".webm"
	}
	videoKey := "videos/" + id + ext
	thumbKey := "thumbnails/" + id + ".jpg"

	err = s.storage.Save(ctx, videoKey, bytes.NewReader(up.Data), up.MimeType)
	if err != nil {
		return nil, ErrDependency("failed to upload video", err)
	}

	err = s.storage.Save(ctx, thumbKey, bytes.NewReader(artifacts.Thumbnail), "image/jpeg")
	if err != nil {
		s.deleteKeys(videoKey)
		return nil, ErrDependency("failed to upload thumbnail", err)
	}

	return &model.PostFile{
		ID:       id,
		Kind:     model.FileKindVideo,
		MimeType: up.MimeType,
		URL:      videoKey,
		Size:     int64(len(up.Data)),
		Meta: &model.VideoMeta{
			Duration:  artifacts.DurationSeconds,
			Thumbnail: thumbKey,
		},
		CreatedAt: time.Now().UTC(),
	}, nil
}

// StorePDF uploads the raw PDF. Previews are produced later by ProcessPDFAsync.
func (s *MediaService) StorePDF(ctx context.Context, up *Upload) (*model.PostFile, error) {
	id := uuid.New().String()
	key := "works/" + id + ".pdf"

	err := s.storage.Save(ctx, key, bytes.NewReader(up.Data), "application/pdf")
	if err != nil {
		return nil, ErrDependency("failed to upload pdf", err)
	}

	return &model.PostFile{
		ID:        id,
		Kind:      model.FileKindPDF,
		MimeType:  "application/pdf",
		URL:       key,
		Size:      int64(len(up.Data)),
		Meta:      model.PendingPDFMeta(),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// StoreOther uploads an attachment that gets no derived artifacts.
func (s *MediaService) StoreOther(ctx context.Context, up *Upload) (*model.PostFile, error) {
	id := uuid.New().String()
	key := "files/" + id + extension(up.Filename)

	err := s.storage.Save(ctx, key, bytes.NewReader(up.Data), up.MimeType)
	if err != nil {
		return nil, ErrDependency("failed to upload file", err)
	}

	return &model.PostFile{
		ID:        id,
		Kind:      model.FileKindOther,
		MimeType:  up.MimeType,
		URL:       key,
		Size:      int64(len(up.Data)),
		Meta:      &model.OtherMeta{},
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ProcessPDFAsync renders page previews for a stored PDF in the background and
// patches the file meta when done. It runs at most once and never retries:
// on failure the file keeps processing=true. A post deleted in the meantime
// turns the patch into a no-op.
func (s *MediaService) ProcessPDFAsync(postID string, file *model.PostFile) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("pdf processing panicked", "panic", r, "post_id", postID, "file_id", file.ID)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		err := s.processPDF(ctx, postID, file)
		if err != nil {
			slog.Error("failed to process pdf", "error", err, "post_id", postID, "file_id", file.ID)
			return
		}
		slog.Debug("pdf processed", "post_id", postID, "file_id", file.ID, "duration", time.Since(start))
	}()
}

func (s *MediaService) processPDF(ctx context.Context, postID string, file *model.PostFile) error {
	data, err := s.storage.Get(ctx, file.URL)
	if errors.Is(err, storage.ErrNotFound) {
		slog.Info("pdf removed before processing", "post_id", postID, "file_id", file.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to download pdf: %w", err)
	}

	artifacts, err := s.deriver.RenderPDF(ctx, data, s.previewPages)
	if err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}

	pages := make([]string, 0, len(artifacts.Pages))
	for i, img := range artifacts.Pages {
		if i >= s.previewPages {
			break
		}
		key := fmt.Sprintf("works/%s_page_%d.png", file.ID, i+1)
		err = s.storage.Save(ctx, key, bytes.NewReader(img), "image/png")
		if err != nil {
			s.deleteKeys(pages...)
			return fmt.Errorf("failed to upload page %d: %w", i+1, err)
		}
		pages = append(pages, key)
	}

	meta := &model.PDFMeta{
		Processing: false,
		TotalPages: artifacts.TotalPages,
		Pages:      pages,
	}

	updated, err := s.fileRepo.PatchMeta(ctx, postID, file.ID, meta)
	if err != nil {
		s.deleteKeys(pages...)
		return err
	}
	if !updated {
		slog.Info("post removed during pdf processing", "post_id", postID, "file_id", file.ID)
		s.deleteKeys(pages...)
	}

	return nil
}

// Wait blocks until background processing has finished or ctx is done.
func (s *MediaService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Discard removes every blob of the given files. Failures are logged only.
func (s *MediaService) Discard(files ...*model.PostFile) {
	for _, f := range files {
		if f == nil {
			continue
		}
		s.deleteKeys(f.StorageKeys()...)
	}
}

func (s *MediaService) deleteKeys(keys ...string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, key := range keys {
		if key == "" || isAbsoluteURL(key) {
			continue
		}
		err := s.storage.Delete(ctx, key)
		if err != nil {
			slog.Warn("failed to delete file from storage", "error", err, "key", key)
		}
	}
}

// ResolveURL turns a stored reference into a public URL. References that
// already are absolute URLs pass through unchanged.
func (s *MediaService) ResolveURL(ref string) string {
	if ref == "" || isAbsoluteURL(ref) {
		return ref
	}
	return s.storage.URL(ref)
}

// Resolve returns a copy of file with every stored reference turned into a public URL.
func (s *MediaService) Resolve(file *model.PostFile) *model.PostFile {
	if file == nil {
		return nil
	}

	out := *file
	out.URL = s.ResolveURL(file.URL)

	switch m := file.Meta.(type) {
	case *model.VideoMeta:
		out.Meta = &model.VideoMeta{
			Duration:  m.Duration,
			Thumbnail: s.ResolveURL(m.Thumbnail),
		}
	case *model.PDFMeta:
		pages := make([]string, len(m.Pages))
		for i, p := range m.Pages {
			pages[i] = s.ResolveURL(p)
		}
		out.Meta = &model.PDFMeta{
			Processing: m.Processing,
			TotalPages: m.TotalPages,
			Pages:      pages,
		}
	}

	return &out
}

func (s *MediaService) ResolveAll(files []*model.PostFile) []*model.PostFile {
	out := make([]*model.PostFile, len(files))
	for i, f := range files {
		out[i] = s.Resolve(f)
	}
	return out
}

func isAbsoluteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func extension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 || len(filename)-i > 6 {
		return ""
	}
	return strings.ToLower(filename[i:])
}
