package model

import "testing"

func TestInitialStatus(t *testing.T) {
	if got := InitialStatus(true); got != PostStatusPublished {
		t.Errorf("InitialStatus(true) = %q, want %q", got, PostStatusPublished)
	}
	if got := InitialStatus(false); got != PostStatusNotValidatable {
		t.Errorf("InitialStatus(false) = %q, want %q", got, PostStatusNotValidatable)
	}
}

func TestAfterEdit(t *testing.T) {
	tests := []struct {
		name          string
		current       PostStatus
		campusRelated bool
		want          PostStatus
	}{
		{"validated stays validated on campus category", PostStatusValidated, true, PostStatusValidated},
		{"validated stays validated on other category", PostStatusValidated, false, PostStatusValidated},
		{"published moved to other category", PostStatusPublished, false, PostStatusNotValidatable},
		{"not validatable moved to campus category", PostStatusNotValidatable, true, PostStatusPublished},
		{"rejected is reopened by campus category", PostStatusRejected, true, PostStatusPublished},
		{"rejected moved to other category", PostStatusRejected, false, PostStatusNotValidatable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.current.AfterEdit(tt.campusRelated); got != tt.want {
				t.Errorf("AfterEdit() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReviewable(t *testing.T) {
	for _, s := range []PostStatus{PostStatusNotValidatable, PostStatusValidated, PostStatusRejected} {
		if s.Reviewable() {
			t.Errorf("%q should not be reviewable", s)
		}
	}
	if !PostStatusPublished.Reviewable() {
		t.Error("published should be reviewable")
	}
}

func TestRequiredMedia(t *testing.T) {
	if PostTypePost.RequiredMedia() != "" {
		t.Error("plain posts should not require media")
	}
	if PostTypeELearning.RequiredMedia() != FileKindVideo {
		t.Error("e-learning should require a video")
	}
	if PostTypeWorks.RequiredMedia() != FileKindPDF {
		t.Error("works should require a pdf")
	}
}

func TestIdentityCanModify(t *testing.T) {
	dept := "d1"
	owner := &Identity{UserID: "u1", Role: RoleStudent, DepartmentID: &dept}
	other := &Identity{UserID: "u2", Role: RoleLecturer, DepartmentID: &dept}
	admin := &Identity{UserID: "a1", Role: RoleAdmin}

	if !owner.CanModify("u1") {
		t.Error("owner should modify own post")
	}
	if other.CanModify("u1") {
		t.Error("non-owner should not modify")
	}
	if !admin.CanModify("u1") {
		t.Error("admin should bypass ownership")
	}
	var nobody *Identity
	if nobody.CanModify("u1") {
		t.Error("anonymous caller should not modify")
	}
}

func TestPreferredFile(t *testing.T) {
	files := []*PostFile{
		{ID: "o", Kind: FileKindOther},
		{ID: "p", Kind: FileKindPDF},
		{ID: "v", Kind: FileKindVideo},
	}
	if got := PreferredFile(files); got.ID != "v" {
		t.Errorf("PreferredFile() = %q, want video", got.ID)
	}
	if got := PreferredFile(files[:2]); got.ID != "p" {
		t.Errorf("PreferredFile() = %q, want pdf", got.ID)
	}
	if PreferredFile(nil) != nil {
		t.Error("PreferredFile(nil) should be nil")
	}
}
