package storage

import (
	"context"
	"io"
)

// Storage is the minimal object store used for avatars.
type Storage interface {
	// Put stores reader under key.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// GetURL returns the public URL for key.
	GetURL(key string) string
}
