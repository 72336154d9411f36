package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fulluproar/backoffice/internal/infrastructure/config"
)

// unreachableRedis points at a port nothing listens on
var unreachableRedis = config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

func TestFontCacheFactory(t *testing.T) {
	t.Run("disabled redis gives in-memory cache", func(t *testing.T) {
		c, err := NewFontCacheFactory(config.RedisConfig{}).CreateCache()
		require.NoError(t, err)
		defer c.Close()
		assert.IsType(t, &InMemoryFontCache{}, c)
		assert.NoError(t, Ping(context.Background(), c))
	})

	t.Run("falls back when redis is unreachable", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		c, err := NewFontCacheFactory(unreachableRedis, WithLogger(zap.New(core))).CreateCache()
		require.NoError(t, err)
		defer c.Close()
		assert.IsType(t, &InMemoryFontCache{}, c)
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("fails without fallback", func(t *testing.T) {
		_, err := NewFontCacheFactory(unreachableRedis, WithInMemoryFallback(false)).CreateCache()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Redis required")
	})
}

func TestRedisFontCache_WrapsErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewRedisFontCacheWithClient(client, "")
	defer c.Close()

	ctx := context.Background()
	_, ok, err := c.Get(ctx, "k")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "failed to read font cache")

	err = c.Set(ctx, "k", []byte("v"), time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write font cache")

	assert.Equal(t, defaultKeyPrefix, c.keyPrefix)
	assert.Error(t, Ping(ctx, c))
}
