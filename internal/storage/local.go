package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps objects as files under a root directory. It is used when
// no bucket is configured.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{root: root}, nil
}

func (l *LocalStore) Root() string {
	return l.root
}

func (l *LocalStore) path(objectName string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(objectName))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || clean == ".." {
		return "", fmt.Errorf("invalid object name %q", objectName)
	}
	return filepath.Join(l.root, clean), nil
}

func (l *LocalStore) UploadFile(ctx context.Context, reader io.Reader, objectName, contentType string) (*UploadResult, error) {
	p, err := l.path(objectName)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create object directory: %w", err)
	}

	f, err := os.Create(p)
	if err != nil {
		return nil, fmt.Errorf("failed to create object file: %w", err)
	}
	size, err := io.Copy(f, reader)
	if err != nil {
		f.Close()
		os.Remove(p)
		return nil, fmt.Errorf("failed to write object file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close object file: %w", err)
	}

	return &UploadResult{ObjectName: objectName, Size: size}, nil
}

func (l *LocalStore) ReadFile(ctx context.Context, objectName string) (io.ReadCloser, error) {
	p, err := l.path(objectName)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	return f, err
}

func (l *LocalStore) DeleteFile(ctx context.Context, objectName string) error {
	p, err := l.path(objectName)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrObjectNotFound
	}
	return err
}

func (l *LocalStore) Close() error {
	return nil
}
