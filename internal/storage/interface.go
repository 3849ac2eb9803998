package storage

import (
	"context"
	"io"
)

// ObjectStorage is the object store used for candidate documents.
type ObjectStorage interface {
	// Upload stores reader under key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// GetURL returns the URL a client can fetch key from.
	GetURL(key string) string

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// EnsureBucket creates the bucket when the backend allows it.
	EnsureBucket(ctx context.Context) error
}
