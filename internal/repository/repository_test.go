package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/AKT74/shareulbi-backend/internal/db"
	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	conn, err := db.Init("sqlite", dsn)
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	err = db.RunMigrations(conn.DB, "sqlite")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

type fixture struct {
	db         *sqlx.DB
	posts      PostRepository
	files      *fileRepository
	categories CategoryRepository
	users      UserRepository
	inter      InteractionRepository
}

func newFixture(t *testing.T) *fixture {
	conn := newTestDB(t)
	files := NewFileRepository(conn)
	return &fixture{
		db:         conn,
		posts:      NewPostRepository(conn, files),
		files:      files,
		categories: NewCategoryRepository(conn),
		users:      NewUserRepository(conn),
		inter:      NewInteractionRepository(conn),
	}
}

func (f *fixture) user(t *testing.T, role model.Role) *model.User {
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
	err := f.users.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) category(t *testing.T, campus bool) *model.Category {
	t.Helper()
	c := &model.Category{
		ID:                uuid.New().String(),
		Name:              "cat-" + uuid.New().String()[:8],
		IsRelatedToCampus: campus,
		CreatedAt:         time.Now().UTC(),
	}
	err := f.categories.Create(context.Background(), c, nil)
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return c
}

func (f *fixture) post(t *testing.T, owner *model.User, cat *model.Category, file *model.PostFile) *model.Post {
	t.Helper()
	now := time.Now().UTC()
	p := &model.Post{
		ID:          uuid.New().String(),
		UserID:      owner.ID,
		Title:       "A post title",
		Description: "Some description",
		Type:        model.PostTypeWorks,
		Status:      model.InitialStatus(cat.IsRelatedToCampus),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := f.posts.Create(context.Background(), p, cat.ID, file)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func pdfFile() *model.PostFile {
	return &model.PostFile{
		ID:        uuid.New().String(),
		Kind:      model.FileKindPDF,
		MimeType:  "application/pdf",
		URL:       "works/" + uuid.New().String() + ".pdf",
		Size:      128,
		Meta:      model.PendingPDFMeta(),
		CreatedAt: time.Now().UTC(),
	}
}

func count(t *testing.T, conn *sqlx.DB, table, postID string) int {
	t.Helper()
	var n int
	err := conn.Get(&n, `SELECT COUNT(*) FROM `+table+` WHERE post_id = $1`, postID)
	if err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestDeleteRemovesEverythingAttached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, model.RoleStudent)
	lecturer := f.user(t, model.RoleLecturer)
	cat := f.category(t, true)
	file := pdfFile()
	p := f.post(t, owner, cat, file)

	if err := f.inter.InsertLike(ctx, &model.Interaction{ID: uuid.New().String(), UserID: owner.ID, PostID: p.ID, CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatal(err)
	}
	if err := f.inter.InsertBookmark(ctx, &model.Bookmark{ID: uuid.New().String(), UserID: owner.ID, PostID: p.ID, CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatal(err)
	}
	_, err := f.db.Exec(`INSERT INTO post_validations (id, post_id, validator_id, status, created_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), p.ID, lecturer.ID, model.PostStatusRejected, time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}

	removed, err := f.posts.Delete(ctx, p.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(removed) != 1 || removed[0].ID != file.ID {
		t.Errorf("Delete() returned files %+v", removed)
	}

	for _, table := range []string{"post_categories", "post_files", "bookmarks", "interactions", "post_validations"} {
		if n := count(t, f.db, table, p.ID); n != 0 {
			t.Errorf("%s still has %d rows", table, n)
		}
	}
	if _, err := f.posts.ByID(ctx, p.ID); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("ByID() after delete error = %v", err)
	}

	if _, err := f.posts.Delete(ctx, p.ID); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("second Delete() error = %v, want ErrPostNotFound", err)
	}
}

func TestPatchMetaAfterDeleteIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, model.RoleStudent)
	file := pdfFile()
	p := f.post(t, owner, f.category(t, true), file)

	done := &model.PDFMeta{Processing: false, TotalPages: 2, Pages: []string{"a.png", "b.png"}}
	updated, err := f.files.PatchMeta(ctx, p.ID, file.ID, done)
	if err != nil || !updated {
		t.Fatalf("PatchMeta() = %v, %v", updated, err)
	}

	files, err := f.files.ByPostID(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	meta, ok := files[0].PDFMeta()
	if !ok || meta.Processing || meta.TotalPages != 2 {
		t.Errorf("meta after patch = %+v", files[0].Meta)
	}

	if _, err := f.posts.Delete(ctx, p.ID); err != nil {
		t.Fatal(err)
	}

	updated, err = f.files.PatchMeta(ctx, p.ID, file.ID, done)
	if err != nil {
		t.Fatalf("PatchMeta() after delete error = %v", err)
	}
	if updated {
		t.Error("PatchMeta() after delete should report no update")
	}
	if n := count(t, f.db, "post_files", p.ID); n != 0 {
		t.Errorf("patch resurrected %d file rows", n)
	}
}

func TestLikeUniqueness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, model.RoleStudent)
	p := f.post(t, u, f.category(t, false), nil)

	like := func() error {
		return f.inter.InsertLike(ctx, &model.Interaction{ID: uuid.New().String(), UserID: u.ID, PostID: p.ID, CreatedAt: time.Now().UTC()})
	}
	if err := like(); err != nil {
		t.Fatal(err)
	}
	if err := like(); !errors.Is(err, ErrDuplicate) {
		t.Errorf("second like error = %v, want ErrDuplicate", err)
	}

	// Comments are not limited
	for i := 0; i < 2; i++ {
		text := "nice"
		err := f.inter.InsertComment(ctx, &model.Interaction{ID: uuid.New().String(), UserID: u.ID, PostID: p.ID, Content: &text, CreatedAt: time.Now().UTC()})
		if err != nil {
			t.Fatal(err)
		}
	}

	summary, err := f.inter.Summary(ctx, u.ID, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Likes != 1 || summary.Comments != 2 || !summary.Liked || summary.Bookmarked {
		t.Errorf("Summary() = %+v", summary)
	}

	removed, err := f.inter.DeleteLike(ctx, u.ID, p.ID)
	if err != nil || !removed {
		t.Fatalf("DeleteLike() = %v, %v", removed, err)
	}
	removed, err = f.inter.DeleteLike(ctx, u.ID, p.ID)
	if err != nil || removed {
		t.Errorf("second DeleteLike() = %v, %v", removed, err)
	}
}

func TestCategoryNameIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := &model.Category{ID: uuid.New().String(), Name: "Skripsi", IsRelatedToCampus: true, CreatedAt: time.Now().UTC()}
	if err := f.categories.Create(ctx, c, nil); err != nil {
		t.Fatal(err)
	}

	dup := &model.Category{ID: uuid.New().String(), Name: "SKRIPSI", CreatedAt: time.Now().UTC()}
	if err := f.categories.Create(ctx, dup, nil); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Create() duplicate error = %v, want ErrDuplicate", err)
	}
}

func TestCategoryDepartmentLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	depts := NewDepartmentRepository(f.db)

	d := &model.Department{ID: uuid.New().String(), Name: "Informatics", CreatedAt: time.Now().UTC()}
	if err := depts.Create(ctx, d); err != nil {
		t.Fatal(err)
	}

	campus := &model.Category{ID: uuid.New().String(), Name: "Thesis", IsRelatedToCampus: true, CreatedAt: time.Now().UTC()}
	if err := f.categories.Create(ctx, campus, []string{d.ID, d.ID}); err != nil {
		t.Fatal(err)
	}
	got, err := f.categories.ByID(ctx, campus.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Departments) != 1 || got.Departments[0].ID != d.ID {
		t.Errorf("Departments = %+v", got.Departments)
	}

	// Turning the flag off drops the links
	campus.IsRelatedToCampus = false
	if err := f.categories.Update(ctx, campus, []string{d.ID}); err != nil {
		t.Fatal(err)
	}
	got, err = f.categories.ByID(ctx, campus.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Departments) != 0 {
		t.Errorf("non-campus category kept %d departments", len(got.Departments))
	}

	bad := &model.Category{ID: uuid.New().String(), Name: "Lab", IsRelatedToCampus: true, CreatedAt: time.Now().UTC()}
	if err := f.categories.Create(ctx, bad, []string{"missing"}); !errors.Is(err, ErrDepartmentNotFound) {
		t.Errorf("Create() with unknown department error = %v", err)
	}
	if _, err := f.categories.ByID(ctx, bad.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("failed create left a category behind: %v", err)
	}
}
