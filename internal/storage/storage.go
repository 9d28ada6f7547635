// Package storage holds exported quotation documents until their download
// link is used or expires.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/salesops-api/internal/config"
	"go.uber.org/zap"
)

// ErrBlobNotFound is returned when a key has no stored blob
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore stores exported documents under generated keys
type BlobStore interface {
	Put(ctx context.Context, filename, contentType string, data io.Reader) (key string, size int64, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// NewBlobStore creates the store selected by cfg.Mode
func NewBlobStore(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (BlobStore, error) {
	switch cfg.Mode {
	case "local":
		return NewLocalStore(cfg.LocalBasePath)
	case "cloud", "azure":
		if cfg.CloudConnectionString == "" {
			return nil, fmt.Errorf("cloud connection string required for azure storage")
		}
		return NewAzureBlobStore(ctx, cfg.CloudConnectionString, cfg.CloudContainer, logger)
	default:
		return nil, fmt.Errorf("unsupported storage mode: %s", cfg.Mode)
	}
}

// newKey builds "exports/YYYY/MM/<uuid><ext>" so keys never collide and
// sort by creation month
func newKey(filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join("exports", now.UTC().Format("2006"), now.UTC().Format("01"), uuid.NewString()+ext)
}

// LocalStore keeps blobs on the local filesystem
type LocalStore struct {
	basePath string
}

// NewLocalStore creates basePath if needed
func NewLocalStore(basePath string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{basePath: basePath}, nil
}

func (s *LocalStore) fullPath(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid storage key: %s", key)
	}
	return filepath.Join(s.basePath, clean), nil
}

// Put writes data under a new key
func (s *LocalStore) Put(ctx context.Context, filename, contentType string, data io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	key := newKey(filename, time.Now())
	full, err := s.fullPath(key)
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(full)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}
	size, err := io.Copy(file, data)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(full)
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}
	return key, size, nil
}

// Open returns a reader for key
func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	full, err := s.fullPath(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes key; a missing blob is not an error
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	full, err := s.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
