// Package media derives preview artifacts from uploaded videos and PDFs.
package media

import (
	"context"
	"errors"
)

var ErrNoFrame = errors.New("no frame could be extracted")

type VideoArtifacts struct {
	DurationSeconds int
	Thumbnail       []byte // JPEG
}

type PDFArtifacts struct {
	TotalPages int
	Pages      [][]byte // PNG, at most the requested number of pages
}

// Deriver produces preview artifacts from raw media.
type Deriver interface {
	ProbeVideo(ctx context.Context, data []byte) (*VideoArtifacts, error)
	RenderPDF(ctx context.Context, data []byte, maxPages int) (*PDFArtifacts, error)
}
