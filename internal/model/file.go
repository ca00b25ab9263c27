package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type FileKind string

const (
	FileKindVideo FileKind = "video"
	FileKindPDF   FileKind = "pdf"
	FileKindOther FileKind = "other"
)

func (k FileKind) rank() int {
	switch k {
	case FileKindVideo:
		return 0
	case FileKindPDF:
		return 1
	}
	return 2
}

// FileKindFor maps a sniffed mime type to the file kind stored for it.
func FileKindFor(mimeType string) FileKind {
	switch {
	case mimeType == "application/pdf":
		return FileKindPDF
	case len(mimeType) > 6 && mimeType[:6] == "video/":
		return FileKindVideo
	}
	return FileKindOther
}

type PostFile struct {
	ID        string    `db:"id" json:"id"`
	PostID    string    `db:"post_id" json:"post_id"`
	Kind      FileKind  `db:"file_kind" json:"file_kind"`
	MimeType  string    `db:"mime_type" json:"mime_type"`
	URL       string    `db:"file_url" json:"file_url"` // Storage key or absolute URL
	Size      int64     `db:"file_size" json:"file_size"`
	RawMeta   string    `db:"meta" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	Meta FileMeta `db:"-" json:"meta"`
}

// FileMeta is the kind-specific metadata of a post file.
// Implementations: *VideoMeta, *PDFMeta, *OtherMeta.
type FileMeta interface {
	Kind() FileKind
}

type VideoMeta struct {
	Duration  int    `json:"duration"`
	Thumbnail string `json:"thumbnail"`
}

func (*VideoMeta) Kind() FileKind { return FileKindVideo }

type PDFMeta struct {
	Processing bool     `json:"processing"`
	TotalPages int      `json:"total_pages"`
	Pages      []string `json:"pages"`
}

func (*PDFMeta) Kind() FileKind { return FileKindPDF }

// PendingPDFMeta is stored with a freshly uploaded PDF until its previews exist.
func PendingPDFMeta() *PDFMeta {
	return &PDFMeta{Processing: true, TotalPages: 0, Pages: []string{}}
}

type OtherMeta struct{}

func (*OtherMeta) Kind() FileKind { return FileKindOther }

// DecodeMeta parses stored metadata according to the file kind.
func DecodeMeta(kind FileKind, raw string) (FileMeta, error) {
	var meta FileMeta
	switch kind {
	case FileKindVideo:
		meta = &VideoMeta{}
	case FileKindPDF:
		meta = &PDFMeta{Pages: []string{}}
	case FileKindOther:
		return &OtherMeta{}, nil
	default:
		return nil, fmt.Errorf("unknown file kind %q", kind)
	}

	if raw == "" {
		return meta, nil
	}
	err := json.Unmarshal([]byte(raw), meta)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s meta: %w", kind, err)
	}
	if pdf, ok := meta.(*PDFMeta); ok && pdf.Pages == nil {
		pdf.Pages = []string{}
	}
	return meta, nil
}

func EncodeMeta(meta FileMeta) (string, error) {
	if meta == nil {
		return "{}", nil
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s meta: %w", meta.Kind(), err)
	}
	return string(b), nil
}

// Decode fills Meta from RawMeta after a row has been scanned.
func (f *PostFile) Decode() error {
	meta, err := DecodeMeta(f.Kind, f.RawMeta)
	if err != nil {
		return err
	}
	f.Meta = meta
	return nil
}

func (f *PostFile) VideoMeta() (*VideoMeta, bool) {
	m, ok := f.Meta.(*VideoMeta)
	return m, ok
}

func (f *PostFile) PDFMeta() (*PDFMeta, bool) {
	m, ok := f.Meta.(*PDFMeta)
	return m, ok
}

// StorageKeys lists every blob the file references, derived artifacts included.
func (f *PostFile) StorageKeys() []string {
	keys := []string{f.URL}
	switch m := f.Meta.(type) {
	case *VideoMeta:
		if m.Thumbnail != "" {
			keys = append(keys, m.Thumbnail)
		}
	case *PDFMeta:
		keys = append(keys, m.Pages...)
	}
	return keys
}
