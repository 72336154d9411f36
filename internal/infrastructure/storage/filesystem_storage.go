package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	designerapp "github.com/fulluproar/backoffice/internal/application/designer"
)

var _ designerapp.AssetStore = (*FilesystemAssetStore)(nil)

// FilesystemAssetStore keeps assets as files under a base directory.
// The content type is sniffed from the bytes on read.
type FilesystemAssetStore struct {
	basePath string
	logger   *zap.Logger
}

// NewFilesystemAssetStore creates the base directory if needed
func NewFilesystemAssetStore(basePath string, logger *zap.Logger) (*FilesystemAssetStore, error) {
	if basePath == "" {
		return nil, errors.New("storage base path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid storage base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FilesystemAssetStore{basePath: abs, logger: logger}, nil
}

func (s *FilesystemAssetStore) path(key string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(key))
}

// Put writes data to a temporary file and renames it into place
func (s *FilesystemAssetStore) Put(ctx context.Context, key string, data []byte, _ string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	target := s.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create asset directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write asset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write asset: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to store asset: %w", err)
	}

	s.logger.Debug("Asset stored", zap.String("key", key), zap.Int("size", len(data)))
	return nil
}

// Get reads the file stored under key
func (s *FilesystemAssetStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	if !validKey(key) {
		return nil, "", ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", ErrAssetNotFound
		}
		return nil, "", fmt.Errorf("failed to read asset: %w", err)
	}
	return data, DetectContentType(data), nil
}

// Exists checks if a file is stored under key
func (s *FilesystemAssetStore) Exists(ctx context.Context, key string) (bool, error) {
	if !validKey(key) {
		return false, ErrInvalidKey
	}
	_, err := os.Stat(s.path(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check asset existence: %w", err)
}

// Delete removes the file stored under key
func (s *FilesystemAssetStore) Delete(ctx context.Context, key string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return nil
}

// BasePath returns the absolute root directory
func (s *FilesystemAssetStore) BasePath() string {
	return s.basePath
}
