package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulluproar/backoffice/internal/infrastructure/config"
)

func TestNewAssetStore(t *testing.T) {
	ctx := context.Background()

	t.Run("filesystem", func(t *testing.T) {
		store, err := NewAssetStore(ctx, &config.StorageConfig{
			Driver:   config.StorageFilesystem,
			BasePath: t.TempDir(),
		}, nil)
		require.NoError(t, err)
		assert.IsType(t, &FilesystemAssetStore{}, store)
	})

	t.Run("memory", func(t *testing.T) {
		store, err := NewAssetStore(ctx, &config.StorageConfig{Driver: config.StorageMemory}, nil)
		require.NoError(t, err)
		assert.IsType(t, &MemoryAssetStore{}, store)
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		_, err := NewAssetStore(ctx, &config.StorageConfig{Driver: config.StorageS3}, nil)
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := NewAssetStore(ctx, &config.StorageConfig{Driver: "ftp"}, nil)
		assert.Error(t, err)
	})
}
