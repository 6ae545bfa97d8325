package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound is returned by Remove when no object has the name.
	ErrNotFound = errors.New("object not found")
	// ErrInvalidName is returned for names that are not a plain file name.
	ErrInvalidName = errors.New("invalid object name")
)

// Storage persists uploaded objects and returns their public URL.
type Storage interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, name string) error
}

// ValidName reports whether name is a plain, non-hidden file name.
func ValidName(name string) bool {
	return name != "" && name == filepath.Base(name) && !strings.HasPrefix(name, ".") && !strings.ContainsAny(name, `/\`)
}
