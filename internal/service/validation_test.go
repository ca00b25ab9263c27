package service

import (
	"context"
	"testing"

	"github.com/AKT74/shareulbi-backend/internal/model"
)

func TestValidate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d1 := e.department(t, "Informatika")
	d2 := e.department(t, "Akuntansi")
	lecturer := e.user(t, model.RoleLecturer, d1.ID)
	outsider := e.user(t, model.RoleLecturer, d2.ID)
	student := e.user(t, model.RoleStudent, d1.ID)
	homeless := e.user(t, model.RoleLecturer, "")

	cat := e.category(t, "Akademik", true, d1.ID)
	post := e.textPost(t, student, cat.ID)

	t.Run("not a lecturer", func(t *testing.T) {
		assertKind(t, e.validation.Validate(ctx, student, post.ID, model.DecisionValidated), KindForbidden)
		_, err := e.validation.ListValidatable(ctx, student)
		assertKind(t, err, KindForbidden)
	})

	t.Run("lecturer without department", func(t *testing.T) {
		_, err := e.validation.ListValidatable(ctx, homeless)
		assertKind(t, err, KindForbidden)
	})

	t.Run("other department", func(t *testing.T) {
		queue, err := e.validation.ListValidatable(ctx, outsider)
		if err != nil {
			t.Fatal(err)
		}
		if len(queue) != 0 {
			t.Errorf("outsider queue = %v", ids(queue))
		}
		assertKind(t, e.validation.Validate(ctx, outsider, post.ID, model.DecisionValidated), KindForbidden)
	})

	t.Run("invalid decision", func(t *testing.T) {
		assertKind(t, e.validation.Validate(ctx, lecturer, post.ID, "approved"), KindValidation)
	})

	t.Run("missing post", func(t *testing.T) {
		assertKind(t, e.validation.Validate(ctx, lecturer, "missing", model.DecisionRejected), KindNotFound)
	})

	if err := e.validation.Validate(ctx, lecturer, post.ID, model.DecisionRejected); err != nil {
		t.Fatal(err)
	}

	t.Run("already decided", func(t *testing.T) {
		assertKind(t, e.validation.Validate(ctx, lecturer, post.ID, model.DecisionValidated), KindForbidden)
	})

	history, err := e.validation.History(ctx, post.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Status != model.PostStatusRejected {
		t.Errorf("history = %+v", history)
	}
	if !e.activity.has("VALIDATE_POST") {
		t.Error("validation not recorded in activity")
	}
}

func TestValidationEndToEnd(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d1 := e.department(t, "Sistem Informasi")
	lecturer := e.user(t, model.RoleLecturer, d1.ID)
	student := e.user(t, model.RoleStudent, d1.ID)

	skripsi := e.category(t, "Skripsi", true, d1.ID)
	e.deriver.totalPages = 2

	post, err := e.posts.Create(ctx, student, CreatePostInput{
		Title:       "Analisis Sistem Akademik",
		Description: "Skripsi program studi",
		Type:        model.PostTypeWorks,
		CategoryID:  skripsi.ID,
		Media:       pdfUpload(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if post.Status != model.PostStatusPublished {
		t.Fatalf("status = %s, want published", post.Status)
	}

	queue, err := e.validation.ListValidatable(ctx, lecturer)
	if err != nil {
		t.Fatal(err)
	}
	if len(queue) != 1 || queue[0].ID != post.ID {
		t.Fatalf("queue = %v", ids(queue))
	}

	if err := e.validation.Validate(ctx, lecturer, post.ID, model.DecisionValidated); err != nil {
		t.Fatal(err)
	}

	history, err := e.validation.History(ctx, post.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].ValidatorID != lecturer.UserID {
		t.Fatalf("history = %+v", history)
	}

	status, err := e.posts.Update(ctx, student, post.ID, UpdatePostInput{
		Title:       "Analisis Sistem Akademik Kampus",
		Description: "Skripsi program studi",
		CategoryID:  skripsi.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if status != model.PostStatusValidated {
		t.Errorf("status after edit = %s, want validated", status)
	}

	queue, err = e.validation.ListValidatable(ctx, lecturer)
	if err != nil {
		t.Fatal(err)
	}
	if len(queue) != 0 {
		t.Errorf("validated post still queued: %v", ids(queue))
	}

	e.waitMedia(t)
	detail, err := e.posts.Get(ctx, student, post.ID)
	if err != nil {
		t.Fatal(err)
	}
	meta, _ := detail.File.PDFMeta()
	if meta.Processing || meta.TotalPages != 2 || len(meta.Pages) != 2 {
		t.Errorf("pdf meta = %+v", meta)
	}
}
