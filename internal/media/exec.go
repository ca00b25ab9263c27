package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const (
	thumbnailAt   = "2"
	thumbnailSize = "640x360"
	pageDPI       = "100"
)

// ExecDeriver shells out to ffprobe, ffmpeg and pdftoppm.
type ExecDeriver struct {
	FFmpeg   string
	FFprobe  string
	Pdftoppm string
	TempDir  string
}

func NewExecDeriver(ffmpeg, ffprobe, pdftoppm, tempDir string) *ExecDeriver {
	// pdfcpu must not write a config directory into the service user's home
	api.DisableConfigDir()

	return &ExecDeriver{
		FFmpeg:   ffmpeg,
		FFprobe:  ffprobe,
		Pdftoppm: pdftoppm,
		TempDir:  tempDir,
	}
}

func (d *ExecDeriver) ProbeVideo(ctx context.Context, data []byte) (*VideoArtifacts, error) {
	dir, err := os.MkdirTemp(d.TempDir, "video-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input")
	err = os.WriteFile(input, data, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to write video: %w", err)
	}

	out, err := run(ctx, d.FFprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		input,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to probe video: %w", err)
	}
	duration, err := parseDuration(out)
	if err != nil {
		return nil, err
	}

	thumb := filepath.Join(dir, "thumbnail.jpg")
	thumbnail, err := d.frame(ctx, input, thumb, thumbnailAt)
	if err != nil {
		// Clips shorter than the seek offset have no frame there
		slog.Debug("retrying thumbnail from first frame", "error", err)
		thumbnail, err = d.frame(ctx, input, thumb, "0")
	}
	if err != nil {
		return nil, err
	}

	return &VideoArtifacts{DurationSeconds: duration, Thumbnail: thumbnail}, nil
}

func (d *ExecDeriver) frame(ctx context.Context, input, output, at string) ([]byte, error) {
	_, err := run(ctx, d.FFmpeg,
		"-y",
		"-ss", at,
		"-i", input,
		"-frames:v", "1",
		"-s", thumbnailSize,
		output,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to extract thumbnail: %w", err)
	}

	img, err := os.ReadFile(output)
	if err != nil || len(img) == 0 {
		return nil, ErrNoFrame
	}
	return img, nil
}

func (d *ExecDeriver) RenderPDF(ctx context.Context, data []byte, maxPages int) (*PDFArtifacts, error) {
	if maxPages < 1 {
		maxPages = 1
	}

	dir, err := os.MkdirTemp(d.TempDir, "pdf-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.pdf")
	err = os.WriteFile(input, data, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}

	_, err = run(ctx, d.Pdftoppm,
		"-png",
		"-r", pageDPI,
		"-f", "1",
		"-l", strconv.Itoa(maxPages),
		input,
		filepath.Join(dir, "page"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	files, err := renderedPages(dir)
	if err != nil {
		return nil, err
	}

	pages := make([][]byte, 0, len(files))
	for _, f := range files {
		img, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read rendered page: %w", err)
		}
		pages = append(pages, img)
	}

	total, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		slog.Warn("failed to count pdf pages, using rendered count", "error", err)
		total = len(pages)
	}

	return &PDFArtifacts{TotalPages: total, Pages: pages}, nil
}

// renderedPages returns pdftoppm output in page order.
func renderedPages(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		return nil, err
	}
	// Zero padding is uniform within one run, so names sort by page
	sort.Strings(files)
	return files, nil
}

func parseDuration(out []byte) (int, error) {
	value := strings.TrimSpace(string(out))
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(seconds) || seconds < 0 {
		return 0, fmt.Errorf("unexpected duration %q", value)
	}
	return int(math.Floor(seconds)), nil
}

func run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > 500 {
			msg = msg[len(msg)-500:]
		}
		return nil, fmt.Errorf("%s: %w: %s", filepath.Base(name), err, msg)
	}
	return stdout.Bytes(), nil
}
