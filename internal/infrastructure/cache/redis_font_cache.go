package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fulluproar/backoffice/internal/infrastructure/config"
	"github.com/fulluproar/backoffice/internal/infrastructure/fonts"
)

const defaultKeyPrefix = "backoffice:"

// RedisFontCache implements fonts.ByteCache using Redis so that every
// instance shares downloaded font files
type RedisFontCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisFontCache connects to Redis and verifies the connection
func NewRedisFontCache(cfg config.RedisConfig) (*RedisFontCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisFontCache{client: client, keyPrefix: defaultKeyPrefix}, nil
}

// NewRedisFontCacheWithClient creates a cache over an existing client.
// This is useful for testing or when sharing a client across components.
func NewRedisFontCacheWithClient(client *redis.Client, keyPrefix string) *RedisFontCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisFontCache{client: client, keyPrefix: keyPrefix}
}

// Get returns the cached bytes for key
func (c *RedisFontCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read font cache: %w", err)
	}
	return data, true, nil
}

// Set stores data under key for ttl (0 means no expiration)
func (c *RedisFontCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write font cache: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisFontCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisFontCache) GetClient() *redis.Client {
	return c.client
}

var _ fonts.ByteCache = (*RedisFontCache)(nil)
