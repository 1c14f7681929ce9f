package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/youruser/therapydeck/internal/util"
)

// BlobScheme prefixes blob URLs: "blob:<id>".
const BlobScheme = "blob"

// FileBlobStore keeps PNG blobs as <uuid>.png files in one directory.
type FileBlobStore struct {
	dir string
}

// NewFileBlobStore creates dir if needed.
func NewFileBlobStore(dir string) (*FileBlobStore, error) {
	if err := util.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &FileBlobStore{dir: dir}, nil
}

func (s *FileBlobStore) path(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("invalid blob id %q: %w", id, ErrNotFound)
	}
	return filepath.Join(s.dir, u.String()+".png"), nil
}

// Put stores data and returns its new id.
func (s *FileBlobStore) Put(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	p, _ := s.path(id)
	if err := util.WriteFileAtomic(p, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to store blob: %w", err)
	}
	return id, nil
}

// Get returns the bytes of blob id.
func (s *FileBlobStore) Get(_ context.Context, id string) ([]byte, error) {
	p, err := s.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("blob %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

// Delete removes blob id. Deleting a missing blob is not an error.
func (s *FileBlobStore) Delete(_ context.Context, id string) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// URL returns the blob URL for id.
func (s *FileBlobStore) URL(id string) string {
	return BlobScheme + ":" + id
}

// Load reads a blob URL. It lets the store act as an image loader.
func (s *FileBlobStore) Load(ctx context.Context, url string) ([]byte, error) {
	id, ok := strings.CutPrefix(url, BlobScheme+":")
	if !ok {
		return nil, fmt.Errorf("not a blob url: %q", url)
	}
	return s.Get(ctx, id)
}
