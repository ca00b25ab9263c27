package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"

	cfg "github.com/AKT74/shareulbi-backend/internal/config"
)

var ErrNotFound = errors.New("object not found")

// Storage defines the blob store used for uploaded media and derived artifacts
type Storage interface {
	// Save stores an object under the given key
	Save(ctx context.Context, key string, body io.Reader, contentType string) error

	// Get returns the full content of an object
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes an object, missing objects are not an error
	Delete(ctx context.Context, key string) error

	// URL returns the public URL for accessing the object
	URL(key string) string
}

// New creates the storage backend selected by STORAGE_DRIVER
func New(c *cfg.Config) (Storage, error) {
	if c.StorageDriver == "s3" {
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
			PublicURL: c.S3PublicURL,
		})
	}

	slog.Info("initializing local storage", "path", c.LocalStoragePath)
	return NewLocalStorage(c.LocalStoragePath, c.LocalStorageURL)
}
