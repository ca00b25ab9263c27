package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/AKT74/shareulbi-backend/internal/model"
)

func TestCreatePostValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.user(t, model.RoleStudent, "")
	cat := e.category(t, "Umum", false)

	tests := []struct {
		name string
		in   CreatePostInput
	}{
		{"unknown type", CreatePostInput{Title: "Judul", Type: "blog", CategoryID: cat.ID}},
		{"missing title", CreatePostInput{Type: model.PostTypePost, CategoryID: cat.ID}},
		{"missing category", CreatePostInput{Title: "Judul", Type: model.PostTypePost}},
		{"unknown category", CreatePostInput{Title: "Judul", Type: model.PostTypePost, CategoryID: "nope"}},
		{"works without pdf", CreatePostInput{Title: "Skripsi", Description: "Bab satu", Type: model.PostTypeWorks, CategoryID: cat.ID}},
		{"e-learning short description", CreatePostInput{Title: "Kuliah", Description: "abc", Type: model.PostTypeELearning, CategoryID: cat.ID, Media: mp4Upload()}},
		{"works with video", CreatePostInput{Title: "Skripsi", Description: "Bab satu", Type: model.PostTypeWorks, CategoryID: cat.ID, Media: mp4Upload()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.posts.Create(ctx, author, tt.in)
			assertKind(t, err, KindValidation)
		})
	}

	posts, err := e.posts.List(ctx, nil, ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 0 {
		t.Errorf("rejected creates left %d posts", len(posts))
	}
}

func TestCreatePostStatusFollowsCategory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d1 := e.department(t, "Informatika")
	lecturer := e.user(t, model.RoleLecturer, d1.ID)
	author := e.user(t, model.RoleStudent, d1.ID)

	campus := e.category(t, "Akademik", true, d1.ID)
	general := e.category(t, "Hiburan", false)

	published := e.textPost(t, author, campus.ID)
	if published.Status != model.PostStatusPublished {
		t.Errorf("campus post status = %s", published.Status)
	}

	outside := e.textPost(t, author, general.ID)
	if outside.Status != model.PostStatusNotValidatable {
		t.Errorf("non-campus post status = %s", outside.Status)
	}

	queue, err := e.validation.ListValidatable(ctx, lecturer)
	if err != nil {
		t.Fatal(err)
	}
	if len(queue) != 1 || queue[0].ID != published.ID {
		t.Errorf("queue = %v, want only %s", ids(queue), published.ID)
	}

	err = e.validation.Validate(ctx, lecturer, outside.ID, model.DecisionValidated)
	assertKind(t, err, KindForbidden)
}

func TestCreateWorksRendersPreviewsInBackground(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.user(t, model.RoleStudent, "")
	cat := e.category(t, "Karya", false)

	e.deriver.gate = make(chan struct{})

	post, err := e.posts.Create(ctx, author, CreatePostInput{
		Title:       "Skripsi Sistem Informasi",
		Description: "Rancang bangun aplikasi",
		Type:        model.PostTypeWorks,
		CategoryID:  cat.ID,
		Media:       pdfUpload(),
	})
	if err != nil {
		t.Fatal(err)
	}

	detail, err := e.posts.Get(ctx, author, post.ID)
	if err != nil {
		t.Fatal(err)
	}
	meta, ok := detail.File.PDFMeta()
	if !ok {
		t.Fatalf("preferred file kind = %s", detail.File.Kind)
	}
	if !meta.Processing || meta.TotalPages != 0 || len(meta.Pages) != 0 {
		t.Errorf("pending meta = %+v", meta)
	}
	if !strings.HasPrefix(detail.File.URL, testMediaURL+"/works/") {
		t.Errorf("file url not resolved: %s", detail.File.URL)
	}

	close(e.deriver.gate)
	e.waitMedia(t)

	detail, err = e.posts.Get(ctx, author, post.ID)
	if err != nil {
		t.Fatal(err)
	}
	meta, _ = detail.File.PDFMeta()
	if meta.Processing {
		t.Error("still processing after background task finished")
	}
	if meta.TotalPages != 5 {
		t.Errorf("total pages = %d, want 5", meta.TotalPages)
	}
	if len(meta.Pages) != 3 {
		t.Fatalf("preview pages = %d, want 3", len(meta.Pages))
	}
	want := testMediaURL + "/works/" + detail.File.ID + "_page_1.png"
	if meta.Pages[0] != want {
		t.Errorf("page 1 = %s, want %s", meta.Pages[0], want)
	}
	if !e.stored("works/" + detail.File.ID + "_page_3.png") {
		t.Error("page 3 not uploaded")
	}
}

func TestPDFFailureLeavesProcessing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.user(t, model.RoleStudent, "")
	cat := e.category(t, "Karya", false)
	e.deriver.pdfErr = errors.New("pdftoppm crashed")

	post, err := e.posts.Create(ctx, author, CreatePostInput{
		Title:       "Laporan Akhir",
		Description: "Laporan kerja praktik",
		Type:        model.PostTypeWorks,
		CategoryID:  cat.ID,
		Media:       pdfUpload(),
	})
	if err != nil {
		t.Fatal(err)
	}
	e.waitMedia(t)

	detail, err := e.posts.Get(ctx, author, post.ID)
	if err != nil {
		t.Fatal(err)
	}
	meta, _ := detail.File.PDFMeta()
	if !meta.Processing || meta.TotalPages != 0 {
		t.Errorf("meta after failure = %+v", meta)
	}
}

func TestDeleteWhilePDFProcessing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.user(t, model.RoleStudent, "")
	cat := e.category(t, "Karya", false)
	e.deriver.gate = make(chan struct{})

	post, err := e.posts.Create(ctx, author, CreatePostInput{
		Title:       "Tugas Akhir",
		Description: "Dokumen tugas akhir",
		Type:        model.PostTypeWorks,
		CategoryID:  cat.ID,
		Media:       pdfUpload(),
	})
	if err != nil {
		t.Fatal(err)
	}

	detail, err := e.posts.Get(ctx, author, post.ID)
	if err != nil {
		t.Fatal(err)
	}
	fileID := detail.File.ID

	if err := e.posts.Delete(ctx, author, post.ID); err != nil {
		t.Fatal(err)
	}

	close(e.deriver.gate)
	e.waitMedia(t)

	_, err = e.posts.Get(ctx, author, post.ID)
	assertKind(t, err, KindNotFound)

	var files int
	if err := e.db.Get(&files, `SELECT COUNT(*) FROM post_files WHERE id = $1`, fileID); err != nil {
		t.Fatal(err)
	}
	if files != 0 {
		t.Error("background patch recreated the file row")
	}
	if e.stored("works/" + fileID + "_page_1.png") {
		t.Error("orphaned preview page left in storage")
	}
	if e.stored("works/" + fileID + ".pdf") {
		t.Error("raw pdf left in storage")
	}
}

func TestCreateELearningVideo(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.user(t, model.RoleLecturer, "")
	cat := e.category(t, "Materi", false)

	post, err := e.posts.Create(ctx, author, CreatePostInput{
		Title:       "Pertemuan 1",
		Description: "Pengantar basis data",
		Type:        model.PostTypeELearning,
		CategoryID:  cat.ID,
		Media:       mp4Upload(),
	})
	if err != nil {
		t.Fatal(err)
	}

	feed, err := e.posts.List(ctx, nil, ListFilter{Type: model.PostTypeELearning})
	if err != nil {
		t.Fatal(err)
	}
	if len(feed) != 1 || feed[0].ID != post.ID {
		t.Fatalf("feed = %v", ids(feed))
	}

	file := feed[0].File
	meta, ok := file.VideoMeta()
	if !ok {
		t.Fatalf("file kind = %s", file.Kind)
	}
	if meta.Duration != 42 {
		t.Errorf("duration = %d", meta.Duration)
	}
	if !strings.HasPrefix(meta.Thumbnail, testMediaURL+"/thumbnails/") {
		t.Errorf("thumbnail = %s", meta.Thumbnail)
	}
	if !e.stored("videos/" + file.ID + ".mp4") {
		t.Error("video not stored")
	}
}

func TestVideoFailureStoresNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.user(t, model.RoleLecturer, "")
	cat := e.category(t, "Materi", false)
	e.deriver.videoErr = errors.New("ffprobe: invalid data")

	_, err := e.posts.Create(ctx, author, CreatePostInput{
		Title:       "Pertemuan 2",
		Description: "Normalisasi tabel",
		Type:        model.PostTypeELearning,
		CategoryID:  cat.ID,
		Media:       mp4Upload(),
	})
	assertKind(t, err, KindDependency)

	var posts int
	if err := e.db.Get(&posts, `SELECT COUNT(*) FROM posts`); err != nil {
		t.Fatal(err)
	}
	if posts != 0 {
		t.Errorf("posts = %d after failed video create", posts)
	}
}

func TestUpdatePost(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d1 := e.department(t, "Informatika")
	lecturer := e.user(t, model.RoleLecturer, d1.ID)
	author := e.user(t, model.RoleStudent, d1.ID)
	other := e.user(t, model.RoleStudent, d1.ID)

	campus := e.category(t, "Akademik", true, d1.ID)
	general := e.category(t, "Hiburan", false)

	post := e.textPost(t, author, campus.ID)

	_, err := e.posts.Update(ctx, other, post.ID, UpdatePostInput{Title: "Diubah orang", Description: "Tidak boleh", CategoryID: campus.ID})
	assertKind(t, err, KindForbidden)

	_, err = e.posts.Update(ctx, author, post.ID, UpdatePostInput{Title: "abc", Description: "Deskripsi baru", CategoryID: campus.ID})
	assertKind(t, err, KindValidation)

	_, err = e.posts.Update(ctx, author, "missing", UpdatePostInput{Title: "Judul baru", Description: "Deskripsi baru", CategoryID: campus.ID})
	assertKind(t, err, KindNotFound)

	status, err := e.posts.Update(ctx, author, post.ID, UpdatePostInput{Title: "Judul baru", Description: "Deskripsi baru", CategoryID: general.ID})
	if err != nil {
		t.Fatal(err)
	}
	if status != model.PostStatusNotValidatable {
		t.Errorf("status after move to general = %s", status)
	}

	status, err = e.posts.Update(ctx, e.admin, post.ID, UpdatePostInput{Title: "Judul admin", Description: "Deskripsi admin", CategoryID: campus.ID})
	if err != nil {
		t.Fatal(err)
	}
	if status != model.PostStatusPublished {
		t.Errorf("status after move back = %s", status)
	}

	if err := e.validation.Validate(ctx, lecturer, post.ID, model.DecisionValidated); err != nil {
		t.Fatal(err)
	}

	status, err = e.posts.Update(ctx, author, post.ID, UpdatePostInput{Title: "Judul akhir", Description: "Deskripsi akhir", CategoryID: general.ID})
	if err != nil {
		t.Fatal(err)
	}
	if status != model.PostStatusValidated {
		t.Errorf("validated post became %s after edit", status)
	}
}

func TestDeletePostPermissions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.user(t, model.RoleStudent, "")
	other := e.user(t, model.RoleStudent, "")
	cat := e.category(t, "Umum", false)
	post := e.textPost(t, author, cat.ID)

	assertKind(t, e.posts.Delete(ctx, other, post.ID), KindForbidden)
	assertKind(t, e.posts.Delete(ctx, author, "missing"), KindNotFound)

	if err := e.posts.Delete(ctx, e.admin, post.ID); err != nil {
		t.Fatal(err)
	}
	if !e.activity.has("DELETE_POST") {
		t.Error("delete not recorded in activity")
	}
}

func TestGetRendersDescription(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.user(t, model.RoleStudent, "")
	cat := e.category(t, "Umum", false)

	post, err := e.posts.Create(ctx, author, CreatePostInput{
		Title:       "Catatan",
		Description: "**Penting** untuk semua",
		Type:        model.PostTypePost,
		CategoryID:  cat.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	detail, err := e.posts.Get(ctx, nil, post.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(detail.DescriptionHTML, "<strong>Penting</strong>") {
		t.Errorf("description_html = %q", detail.DescriptionHTML)
	}
	if detail.AuthorName != "Test student" {
		t.Errorf("author = %q", detail.AuthorName)
	}
	if detail.File != nil || len(detail.Files) != 0 {
		t.Error("text post should have no files")
	}
}

func ids(posts []*model.PostSummary) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}
