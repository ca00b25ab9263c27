package validation

import (
	"strings"
	"testing"
)

func TestValidateFile(t *testing.T) {
	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")
	mp4 := append([]byte{0, 0, 0, 0x18}, []byte("ftypmp42\x00\x00\x00\x00mp42isom")...)

	tests := []struct {
		name     string
		filename string
		data     []byte
		cons     []FileConstraints
		wantMime string
		wantErr  string
	}{
		{"pdf accepted", "thesis.pdf", pdf, []FileConstraints{DocumentConstraints}, "application/pdf", ""},
		{"pdf with wrong extension", "thesis.doc", pdf, []FileConstraints{DocumentConstraints}, "", "extension"},
		{"text disguised as pdf", "thesis.pdf", []byte("hello world"), []FileConstraints{DocumentConstraints}, "", "invalid file type"},
		{"mp4 accepted", "lecture.mp4", mp4, []FileConstraints{VideoConstraints}, "video/mp4", ""},
		{"pdf or video", "thesis.pdf", pdf, []FileConstraints{VideoConstraints, DocumentConstraints}, "application/pdf", ""},
		{"too large", "thesis.pdf", pdf, []FileConstraints{DocumentConstraints.WithMaxSize(4)}, "", "too large"},
		{"empty", "thesis.pdf", nil, []FileConstraints{DocumentConstraints}, "", "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, err := ValidateFile(tt.filename, tt.data, tt.cons...)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("ValidateFile() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateFile() error = %v", err)
			}
			if mime != tt.wantMime {
				t.Errorf("ValidateFile() mime = %q, want %q", mime, tt.wantMime)
			}
		})
	}
}

func TestValidateEmailDomain(t *testing.T) {
	if err := ValidateEmailDomain("a@std.ulbi.ac.id", "std.ulbi.ac.id"); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	if err := ValidateEmailDomain("A@STD.ULBI.AC.ID", "@std.ulbi.ac.id"); err != nil {
		t.Errorf("domain check should ignore case: %v", err)
	}
	if err := ValidateEmailDomain("a@gmail.com", "std.ulbi.ac.id"); err == nil {
		t.Error("expected domain mismatch")
	}
	if err := ValidateEmailDomain("a@gmail.com", ""); err != nil {
		t.Error("empty policy should accept any domain")
	}
}

func TestCleanName(t *testing.T) {
	if got := CleanName("  Teknik   Informatika \n"); got != "Teknik Informatika" {
		t.Errorf("CleanName() = %q", got)
	}
	if err := ValidateName("   "); err == nil {
		t.Error("blank name should fail")
	}
	if err := ValidateMinLength("title", " abcd ", 5); err == nil {
		t.Error("4 characters should fail a minimum of 5")
	}
	if err := ValidateMinLength("title", "Skripsi", 5); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestStruct(t *testing.T) {
	type input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		Role     string `json:"role" validate:"oneof=student lecturer other"`
	}

	err := Struct(input{Email: "a@b.co", Password: "longenough", Role: "student"})
	if err != nil {
		t.Fatalf("Struct() error = %v", err)
	}

	err = Struct(input{Password: "longenough", Role: "student"})
	if err == nil || err.Error() != "email is required" {
		t.Errorf("Struct() error = %v", err)
	}

	err = Struct(input{Email: "a@b.co", Password: "short", Role: "student"})
	if err == nil || !strings.Contains(err.Error(), "password must be at least 8") {
		t.Errorf("Struct() error = %v", err)
	}

	err = Struct(input{Email: "a@b.co", Password: "longenough", Role: "admin"})
	if err == nil || !strings.Contains(err.Error(), "role must be one of") {
		t.Errorf("Struct() error = %v", err)
	}
}
