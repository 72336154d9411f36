package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	designerapp "github.com/fulluproar/backoffice/internal/application/designer"
	"github.com/fulluproar/backoffice/internal/infrastructure/config"
)

// NewAssetStore builds the asset store selected by cfg.Driver.
// The S3 bucket is created when missing.
func NewAssetStore(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (designerapp.AssetStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Driver {
	case config.StorageS3:
		store, err := NewS3AssetStore(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("Asset store ready", zap.String("driver", cfg.Driver), zap.String("bucket", store.Bucket()))
		return store, nil
	case config.StorageFilesystem:
		store, err := NewFilesystemAssetStore(cfg.BasePath, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Asset store ready", zap.String("driver", cfg.Driver), zap.String("path", store.BasePath()))
		return store, nil
	case config.StorageMemory:
		logger.Warn("Using in-memory asset store; assets are lost on restart")
		return NewMemoryAssetStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
