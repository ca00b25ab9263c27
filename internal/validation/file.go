package validation

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

// FileConstraints defines validation rules for file uploads
type FileConstraints struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
}

var (
	// VideoConstraints gates e-learning uploads
	VideoConstraints = FileConstraints{
		AllowedMimeTypes: map[string]bool{
			"video/mp4":  true,
			"video/webm": true,
		},
		AllowedExtensions: map[string]bool{
			".mp4":  true,
			".webm": true,
		},
		MaxSize: 50 << 20, // 50MB
	}

	// DocumentConstraints gates works uploads
	DocumentConstraints = FileConstraints{
		AllowedMimeTypes: map[string]bool{
			"application/pdf": true,
		},
		AllowedExtensions: map[string]bool{
			".pdf": true,
		},
		MaxSize: 20 << 20, // 20MB
	}

	// ImageConstraints covers attachments on plain posts
	ImageConstraints = FileConstraints{
		AllowedMimeTypes: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
			"image/webp": true,
			"image/gif":  true,
		},
		AllowedExtensions: map[string]bool{
			".jpg":  true,
			".jpeg": true,
			".png":  true,
			".webp": true,
			".gif":  true,
		},
		MaxSize: 5 << 20, // 5MB
	}
)

// WithMaxSize returns a copy of the constraints with a different size cap.
func (c FileConstraints) WithMaxSize(max int64) FileConstraints {
	if max > 0 {
		c.MaxSize = max
	}
	return c
}

// ValidateFile validates uploaded content against one or more constraint sets
// and returns the detected MIME type.
// If multiple constraints are provided, file must match at least one (OR logic)
func ValidateFile(filename string, data []byte, constraints ...FileConstraints) (string, error) {
	if len(constraints) == 0 {
		return "", fmt.Errorf("no file constraints provided")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("file is empty")
	}

	// Detect actual content type from file content (magic numbers)
	// This cannot be faked by just changing Content-Type header
	detectedType := http.DetectContentType(data)

	var lastErr error
	for _, constraint := range constraints {
		err := validateAgainstConstraint(filename, int64(len(data)), detectedType, constraint)
		if err == nil {
			return detectedType, nil
		}
		lastErr = err
	}

	return "", lastErr
}

// validateAgainstConstraint validates a file against a single constraint set
func validateAgainstConstraint(filename string, size int64, detectedType string, constraints FileConstraints) error {
	if size > constraints.MaxSize {
		maxMB := constraints.MaxSize / (1 << 20)
		return fmt.Errorf("file too large: maximum size is %d MB", maxMB)
	}

	// Validate detected type against whitelist
	if !constraints.AllowedMimeTypes[detectedType] {
		return fmt.Errorf("invalid file type (detected: %s)", detectedType)
	}

	// Additional validation: check file extension
	ext := strings.ToLower(filepath.Ext(filename))
	if !constraints.AllowedExtensions[ext] {
		return fmt.Errorf("invalid file extension: %s", ext)
	}

	return nil
}
