package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryFontCache_GetSet(t *testing.T) {
	c := NewInMemoryFontCache()
	defer c.Close()

	ctx := context.Background()

	t.Run("miss on unknown key", func(t *testing.T) {
		data, ok, err := c.Get(ctx, "fonts:family:unknown")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, data)
	})

	t.Run("hit after set", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "fonts:family:roboto", []byte("ttf"), time.Hour))
		data, ok, err := c.Get(ctx, "fonts:family:roboto")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("ttf"), data)
	})

	t.Run("miss after expiration", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "short", []byte("x"), 10*time.Millisecond))
		time.Sleep(20 * time.Millisecond)
		_, ok, err := c.Get(ctx, "short")
		require.NoError(t, err)
		assert.False(t, ok, "expired entry should miss")
	})

	t.Run("zero ttl does not expire", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "forever", []byte("x"), 0))
		_, ok, err := c.Get(ctx, "forever")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestInMemoryFontCache_Cleanup(t *testing.T) {
	c := NewInMemoryFontCache()
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "short-1", []byte("a"), 10*time.Millisecond))
	require.NoError(t, c.Set(ctx, "short-2", []byte("b"), 10*time.Millisecond))
	require.NoError(t, c.Set(ctx, "long", []byte("c"), time.Hour))
	assert.Equal(t, 3, c.Size())

	time.Sleep(20 * time.Millisecond)
	c.cleanup()

	assert.Equal(t, 1, c.Size())
	_, ok, _ := c.Get(ctx, "long")
	assert.True(t, ok)
}

func TestInMemoryFontCache_CloseIsIdempotent(t *testing.T) {
	c := NewInMemoryFontCache()
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
