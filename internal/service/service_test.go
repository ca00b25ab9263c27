package service

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/AKT74/shareulbi-backend/internal/db"
	"github.com/AKT74/shareulbi-backend/internal/markdown"
	"github.com/AKT74/shareulbi-backend/internal/media"
	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/AKT74/shareulbi-backend/internal/repository"
	"github.com/AKT74/shareulbi-backend/internal/storage"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const testMediaURL = "http://cdn.test/media"

type fakeDeriver struct {
	gate       chan struct{} // RenderPDF blocks until closed when set
	videoErr   error
	pdfErr     error
	duration   int
	totalPages int
}

func (d *fakeDeriver) ProbeVideo(ctx context.Context, data []byte) (*media.VideoArtifacts, error) {
	if d.videoErr != nil {
		return nil, d.videoErr
	}
	return &media.VideoArtifacts{DurationSeconds: d.duration, Thumbnail: []byte("jpeg")}, nil
}

func (d *fakeDeriver) RenderPDF(ctx context.Context, data []byte, maxPages int) (*media.PDFArtifacts, error) {
	if d.gate != nil {
		select {
		case <-d.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if d.pdfErr != nil {
		return nil, d.pdfErr
	}

	n := min(d.totalPages, maxPages)
	pages := make([][]byte, n)
	for i := range pages {
		pages[i] = []byte(fmt.Sprintf("png-%d", i+1))
	}
	return &media.PDFArtifacts{TotalPages: d.totalPages, Pages: pages}, nil
}

type recordingLogger struct {
	mu      sync.Mutex
	actions []string
}

func (l *recordingLogger) Log(ctx context.Context, userID, action, description string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actions = append(l.actions, action)
}

func (l *recordingLogger) has(action string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, a := range l.actions {
		if a == action {
			return true
		}
	}
	return false
}

type env struct {
	db       *sqlx.DB
	storage  *storage.LocalStorage
	deriver  *fakeDeriver
	activity *recordingLogger

	userRepo repository.UserRepository

	media        *MediaService
	posts        *PostService
	validation   *ValidationService
	interactions *InteractionService
	reference    *ReferenceService
	moderation   *ModerationService
	auth         *AuthService
	users        *UserService

	admin *model.Identity
}

func newEnv(t *testing.T) *env {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	conn, err := db.Init("sqlite", dsn)
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.RunMigrations(conn.DB, "sqlite"); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store, err := storage.NewLocalStorage(t.TempDir(), testMediaURL)
	if err != nil {
		t.Fatal(err)
	}

	e := &env{
		db:       conn,
		storage:  store,
		deriver:  &fakeDeriver{duration: 42, totalPages: 5},
		activity: &recordingLogger{},
	}

	e.userRepo = repository.NewUserRepository(conn)
	fileRepo := repository.NewFileRepository(conn)
	postRepo := repository.NewPostRepository(conn, fileRepo)
	categoryRepo := repository.NewCategoryRepository(conn)

	e.media = NewMediaService(fileRepo, store, e.deriver, 3, 10*time.Second)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		e.media.Wait(ctx)
	})

	e.posts = NewPostService(postRepo, categoryRepo, e.media, e.activity, markdown.NewParser(), UploadLimits{})
	e.validation = NewValidationService(postRepo, e.media, e.activity)
	e.interactions = NewInteractionService(repository.NewInteractionRepository(conn), postRepo, e.media, e.activity)
	e.reference = NewReferenceService(repository.NewDepartmentRepository(conn), categoryRepo, e.activity)
	e.moderation = NewModerationService(repository.NewTopicRepository(conn), repository.NewReportRepository(conn), postRepo, e.activity)

	emails := NewEmailService("", "noreply@test", "http://app.test", "ShareULBI", true)
	e.auth = NewAuthService(e.userRepo, emails, e.activity, EmailPolicy{}, "test-secret", time.Hour, false)
	e.users = NewUserService(e.userRepo, repository.NewActivityRepository(conn), emails, e.activity)

	e.admin = e.user(t, model.RoleAdmin, "")
	return e
}

func (e *env) user(t *testing.T, role model.Role, departmentID string) *model.Identity {
	t.Helper()
	now := time.Now().UTC()
	u := &model.User{
		ID:               uuid.New().String(),
		Fullname:         "Test " + string(role),
		Email:            uuid.New().String() + "@example.com",
		PasswordHash:     "x",
		Role:             role,
		OnboardingStatus: model.OnboardingApproved,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if departmentID != "" {
		u.DepartmentID = &departmentID
	}
	if err := e.userRepo.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u.Identity()
}

func (e *env) department(t *testing.T, name string) *model.Department {
	t.Helper()
	d, err := e.reference.CreateDepartment(context.Background(), e.admin, name)
	if err != nil {
		t.Fatalf("create department: %v", err)
	}
	return d
}

func (e *env) category(t *testing.T, name string, campus bool, departmentIDs ...string) *model.Category {
	t.Helper()
	c, err := e.reference.CreateCategory(context.Background(), e.admin, CategoryInput{
		Name:              name,
		IsRelatedToCampus: &campus,
		DepartmentIDs:     departmentIDs,
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return c
}

func (e *env) textPost(t *testing.T, author *model.Identity, categoryID string) *model.Post {
	t.Helper()
	p, err := e.posts.Create(context.Background(), author, CreatePostInput{
		Title:       "Pengumuman",
		Description: "Jadwal ujian akhir",
		Type:        model.PostTypePost,
		CategoryID:  categoryID,
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func (e *env) waitMedia(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.media.Wait(ctx); err != nil {
		t.Fatalf("background media did not finish: %v", err)
	}
}

func (e *env) stored(key string) bool {
	_, err := e.storage.Get(context.Background(), key)
	return !errors.Is(err, storage.ErrNotFound)
}

func pdfUpload() *Upload {
	return &Upload{Filename: "skripsi.pdf", Data: []byte("%PDF-1.4\n%test document\n")}
}

// mp4Upload returns bytes sniffed as video/mp4: an ftyp box with an mp4 brand.
func mp4Upload() *Upload {
	data := make([]byte, 64)
	binary.BigEndian.PutUint32(data[0:4], 24)
	copy(data[4:8], "ftyp")
	copy(data[8:12], "mp42")
	copy(data[16:24], "mp42isom")
	return &Upload{Filename: "lecture.mp4", Data: data}
}

func assertKind(t *testing.T, err error, want Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := KindOf(err); got != want {
		t.Fatalf("error kind = %s, want %s (%v)", got, want, err)
	}
}
