package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/xuri/excelize/v2"
)

func TestTopics(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	student := e.user(t, model.RoleStudent, "")

	spam, err := e.moderation.CreateTopic(ctx, TopicInput{Name: "Spam"})
	if err != nil {
		t.Fatal(err)
	}
	if !spam.IsActive {
		t.Error("topics should default to active")
	}

	_, err = e.moderation.CreateTopic(ctx, TopicInput{Name: "  SPAM "})
	assertKind(t, err, KindConflict)

	off := false
	if _, err := e.moderation.CreateTopic(ctx, TopicInput{Name: "Lainnya", IsActive: &off}); err != nil {
		t.Fatal(err)
	}

	all, err := e.moderation.ListTopics(ctx, e.admin)
	if err != nil {
		t.Fatal(err)
	}
	visible, err := e.moderation.ListTopics(ctx, student)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || len(visible) != 1 {
		t.Errorf("admin sees %d topics, student sees %d", len(all), len(visible))
	}

	post := e.textPost(t, student, e.category(t, "Umum", false).ID)
	if _, err := e.moderation.CreateReport(ctx, student, CreateReportInput{TopicID: spam.ID, PostID: post.ID, Description: "Iklan"}); err != nil {
		t.Fatal(err)
	}

	assertKind(t, e.moderation.DeleteTopic(ctx, spam.ID), KindConflict)
	assertKind(t, e.moderation.DeleteTopic(ctx, "missing"), KindNotFound)
}

func TestReportWorkflow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reporter := e.user(t, model.RoleStudent, "")
	post := e.textPost(t, reporter, e.category(t, "Umum", false).ID)

	topic, err := e.moderation.CreateTopic(ctx, TopicInput{Name: "Konten tidak pantas"})
	if err != nil {
		t.Fatal(err)
	}
	off := false
	retired, err := e.moderation.CreateTopic(ctx, TopicInput{Name: "Lama", IsActive: &off})
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.moderation.CreateReport(ctx, reporter, CreateReportInput{TopicID: retired.ID, Description: "x"})
	assertKind(t, err, KindValidation)

	_, err = e.moderation.CreateReport(ctx, reporter, CreateReportInput{TopicID: topic.ID, PostID: "missing", Description: "x"})
	assertKind(t, err, KindNotFound)

	_, err = e.moderation.CreateReport(ctx, reporter, CreateReportInput{TopicID: topic.ID})
	assertKind(t, err, KindValidation)

	report, err := e.moderation.CreateReport(ctx, reporter, CreateReportInput{
		TopicID:     topic.ID,
		PostID:      post.ID,
		Description: "Mengandung kata kasar",
	})
	if err != nil {
		t.Fatal(err)
	}
	if report.Status != model.ReportPending || report.PostTitle == nil || *report.PostTitle != post.Title {
		t.Errorf("report = %+v", report)
	}

	_, err = e.moderation.UpdateReportStatus(ctx, e.admin, report.ID, model.ReportResolved)
	assertKind(t, err, KindValidation)

	report, err = e.moderation.UpdateReportStatus(ctx, e.admin, report.ID, model.ReportInReview)
	if err != nil {
		t.Fatal(err)
	}
	report, err = e.moderation.UpdateReportStatus(ctx, e.admin, report.ID, model.ReportResolved)
	if err != nil {
		t.Fatal(err)
	}
	if report.Status != model.ReportResolved {
		t.Errorf("status = %s", report.Status)
	}

	_, err = e.moderation.UpdateReportStatus(ctx, e.admin, report.ID, model.ReportRejected)
	assertKind(t, err, KindValidation)

	_, err = e.moderation.UpdateReportStatus(ctx, e.admin, "missing", model.ReportInReview)
	assertKind(t, err, KindNotFound)

	pending, err := e.moderation.ListReports(ctx, model.ReportPending)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("pending reports = %d", len(pending))
	}

	// Reports outlive the post they point at
	if err := e.posts.Delete(ctx, reporter, post.ID); err != nil {
		t.Fatal(err)
	}
	report, err = e.moderation.GetReport(ctx, report.ID)
	if err != nil {
		t.Fatal(err)
	}
	if report.PostID != nil {
		t.Errorf("post_id = %v after post delete", *report.PostID)
	}
}

func TestExportReports(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reporter := e.user(t, model.RoleStudent, "")

	topic, err := e.moderation.CreateTopic(ctx, TopicInput{Name: "Bug"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.moderation.CreateReport(ctx, reporter, CreateReportInput{TopicID: topic.ID, Description: "Tombol tidak berfungsi"}); err != nil {
		t.Fatal(err)
	}

	data, err := e.moderation.ExportXLSX(ctx, "")
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(reportSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1", len(rows))
	}
	if rows[1][2] != "Bug" || rows[1][4] != "Tombol tidak berfungsi" || rows[1][5] != "pending" {
		t.Errorf("row = %v", rows[1])
	}

	_, err = e.moderation.ExportXLSX(ctx, "bogus")
	assertKind(t, err, KindValidation)
}
