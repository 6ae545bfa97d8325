package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local writes uploads to a directory that the HTTP server exposes statically.
type Local struct {
	dir       string
	publicURL string
}

// NewLocal creates dir when missing.
func NewLocal(dir, publicURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (l *Local) Dir() string {
	return l.dir
}

func (l *Local) Put(ctx context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	path, err := l.path(name)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return l.publicURL + "/" + name, nil
}

func (l *Local) Remove(_ context.Context, name string) error {
	path, err := l.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return err
	}
	return nil
}

func (l *Local) path(name string) (string, error) {
	if !ValidName(name) {
		return "", fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return filepath.Join(l.dir, name), nil
}
