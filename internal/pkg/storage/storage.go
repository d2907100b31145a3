package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrInvalidPath = errors.New("invalid file path")
)

// FileStorage keeps generated documents such as payslip PDFs.
type FileStorage interface {
	// Put writes the content under key, replacing any previous object, and returns the clean key.
	Put(ctx context.Context, key string, content io.Reader, contentType string) (string, error)

	Open(ctx context.Context, key string) (io.ReadCloser, error)

	Exists(ctx context.Context, key string) (bool, error)

	// URL returns the public address of key.
	URL(key string) string
}
