package cache

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/fulluproar/backoffice/internal/infrastructure/config"
	"github.com/fulluproar/backoffice/internal/infrastructure/fonts"
)

// FontCache is a fonts.ByteCache that holds resources
type FontCache interface {
	fonts.ByteCache
	io.Closer
}

// FontCacheFactory creates font caches based on configuration
type FontCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FontCacheFactoryOption is a functional option for configuring the factory
type FontCacheFactoryOption func(*FontCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FontCacheFactoryOption {
	return func(f *FontCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) FontCacheFactoryOption {
	return func(f *FontCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFontCacheFactory creates a new factory
func NewFontCacheFactory(cfg config.RedisConfig, opts ...FontCacheFactoryOption) *FontCacheFactory {
	f := &FontCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCache returns a Redis cache when Redis is enabled and reachable,
// otherwise an in-memory cache if fallback is allowed
func (f *FontCacheFactory) CreateCache() (FontCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory font cache")
		return NewInMemoryFontCache(), nil
	}

	store, err := NewRedisFontCache(f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis font cache", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for font cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory font cache. "+
		"Each instance will download fonts separately.",
		zap.Error(err),
	)
	return NewInMemoryFontCache(), nil
}

// Ping checks a cache's backing store when it has one
func Ping(ctx context.Context, c FontCache) error {
	if rc, ok := c.(*RedisFontCache); ok {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return rc.client.Ping(ctx).Err()
	}
	return nil
}
