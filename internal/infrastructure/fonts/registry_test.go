package fonts

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goitalic"

	"github.com/fulluproar/backoffice/internal/domain/designer"
)

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func waitDone(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("font load did not finish")
	}
}

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	r, err := NewRegistry(opts...)
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func TestRegistry_Builtins(t *testing.T) {
	r := newTestRegistry(t)

	for _, name := range BuiltinFamilyNames() {
		t.Run(name, func(t *testing.T) {
			assert.True(t, r.IsReady(name))
			// already loaded: the channel is closed
			waitDone(t, r.EnsureLoaded(name))

			face, err := r.Face(name, designer.FontWeightNormal, designer.FontStyleNormal, 24)
			require.NoError(t, err)
			assert.Positive(t, face.Metrics().Height.Ceil())
		})
	}

	assert.True(t, r.IsReady("go mono"), "lookups ignore case")
	assert.True(t, r.IsReady("  Go   Mono "), "lookups collapse whitespace")

	infos := r.Families()
	require.Len(t, infos, len(BuiltinFamilyNames()))
	for _, info := range infos {
		assert.Equal(t, SourceBuiltin, info.Source)
		assert.Equal(t, StatusReady, info.Status)
		assert.Contains(t, info.Variants, Regular.String())
	}
}

func TestRegistry_FaceFallsBack(t *testing.T) {
	r := newTestRegistry(t)

	want, err := r.Face(FamilyGo, designer.FontWeightBold, designer.FontStyleNormal, 24)
	require.NoError(t, err)
	got, err := r.Face("Unknown Family", designer.FontWeightBold, designer.FontStyleNormal, 24)
	require.NoError(t, err)

	adv := func(f font.Face) int {
		a, _ := f.GlyphAdvance('W')
		return a.Round()
	}
	assert.Equal(t, adv(want), adv(got))

	// Go Medium has no bold: bold falls back to its regular
	medium, err := r.Face(FamilyGoMedium, designer.FontWeightNormal, designer.FontStyleNormal, 24)
	require.NoError(t, err)
	mediumBold, err := r.Face(FamilyGoMedium, designer.FontWeightBold, designer.FontStyleNormal, 24)
	require.NoError(t, err)
	assert.Equal(t, adv(medium), adv(mediumBold))
}

func TestRegistry_EnsureLoaded(t *testing.T) {
	srv := newFontServer(t)
	cache := newMapCache()
	r := newTestRegistry(t,
		WithFetcher(NewFetcher(srv.URL+"/css2", "", time.Second)),
		WithCache(cache, time.Hour),
	)

	assert.False(t, r.IsReady("Card Sans"))

	// Concurrent requests share one attempt
	chans := make([]<-chan struct{}, 5)
	for i := range chans {
		chans[i] = r.EnsureLoaded("Card Sans")
	}
	for _, ch := range chans {
		waitDone(t, ch)
	}

	assert.True(t, r.IsReady("card sans"))
	assert.Equal(t, int32(2), srv.fileHits.Load())
	assert.Equal(t, 1, cache.sets)

	status, ok := r.Status("Card Sans")
	require.True(t, ok)
	assert.Equal(t, StatusReady, status)

	var found bool
	for _, info := range r.Families() {
		if info.Name == "Card Sans" {
			found = true
			assert.Equal(t, SourceRemote, info.Source)
			assert.ElementsMatch(t, []string{Regular.String(), Bold.String()}, info.Variants)
		}
	}
	assert.True(t, found)
	// Remote families are listed after the built-ins
	infos := r.Families()
	assert.Equal(t, "Card Sans", infos[len(infos)-1].Name)
}

func TestRegistry_EnsureLoadedUsesCache(t *testing.T) {
	srv := newFontServer(t)
	cache := newMapCache()

	first := newTestRegistry(t,
		WithFetcher(NewFetcher(srv.URL+"/css2", "", time.Second)),
		WithCache(cache, time.Hour),
	)
	waitDone(t, first.EnsureLoaded("Card Sans"))
	require.True(t, first.IsReady("Card Sans"))
	hits := srv.stylesheetHits.Load()

	second := newTestRegistry(t,
		WithFetcher(NewFetcher(srv.URL+"/css2", "", time.Second)),
		WithCache(cache, time.Hour),
	)
	waitDone(t, second.EnsureLoaded("Card Sans"))
	assert.True(t, second.IsReady("Card Sans"))
	assert.Equal(t, hits, srv.stylesheetHits.Load(), "second registry reads from cache")
}

func TestRegistry_FailedLoad(t *testing.T) {
	srv := newFontServer(t)
	core, logs := observer.New(zap.WarnLevel)
	r := newTestRegistry(t,
		WithFetcher(NewFetcher(srv.URL+"/css2", "", time.Second)),
		WithFailureTTL(time.Hour),
		WithLogger(zap.New(core)),
	)

	waitDone(t, r.EnsureLoaded("Missing Font"))
	assert.False(t, r.IsReady("Missing Font"))
	status, ok := r.Status("Missing Font")
	require.True(t, ok)
	assert.Equal(t, StatusFailed, status)
	assert.Equal(t, 1, logs.FilterField(zap.String("family", "Missing Font")).Len())

	// Within the failure TTL no new fetch is attempted
	hits := srv.stylesheetHits.Load()
	waitDone(t, r.EnsureLoaded("Missing Font"))
	assert.Equal(t, hits, srv.stylesheetHits.Load())

	// Rendering still works with the fallback
	_, err := r.Face("Missing Font", designer.FontWeightNormal, designer.FontStyleNormal, 12)
	assert.NoError(t, err)
}

func TestRegistry_RetriesAfterFailureTTL(t *testing.T) {
	srv := newFontServer(t)
	r := newTestRegistry(t,
		WithFetcher(NewFetcher(srv.URL+"/css2", "", time.Second)),
		WithFailureTTL(0),
	)

	waitDone(t, r.EnsureLoaded("Missing Font"))
	hits := srv.stylesheetHits.Load()
	waitDone(t, r.EnsureLoaded("Missing Font"))
	assert.Greater(t, srv.stylesheetHits.Load(), hits)
}

func TestRegistry_WithoutFetcher(t *testing.T) {
	r := newTestRegistry(t)
	waitDone(t, r.EnsureLoaded("Anything"))
	assert.False(t, r.IsReady("Anything"))
	waitDone(t, r.EnsureLoaded(""))
}

func TestRegistry_RemoteFamilyLimit(t *testing.T) {
	t.Run("new families are ignored once the limit is reached", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		r := newTestRegistry(t, WithMaxRemoteFamilies(2), WithFailureTTL(time.Hour), WithLogger(zap.New(core)))

		for _, name := range []string{"First", "Second", "Third"} {
			waitDone(t, r.EnsureLoaded(name))
		}
		_, ok := r.Status("Second")
		assert.True(t, ok)
		_, ok = r.Status("Third")
		assert.False(t, ok)
		assert.Equal(t, 1, logs.FilterField(zap.String("family", "Third")).Len())

		// known families and built-ins are unaffected
		waitDone(t, r.EnsureLoaded("First"))
		assert.True(t, r.IsReady(FamilyGo))
		_, err := r.Face("Third", designer.FontWeightNormal, designer.FontStyleNormal, 12)
		assert.NoError(t, err)
	})

	t.Run("expired failures make room", func(t *testing.T) {
		r := newTestRegistry(t, WithMaxRemoteFamilies(2), WithFailureTTL(0))

		for _, name := range []string{"First", "Second", "Third"} {
			waitDone(t, r.EnsureLoaded(name))
		}
		_, ok := r.Status("Third")
		assert.True(t, ok)
		_, ok = r.Status("First")
		assert.False(t, ok)
	})

	t.Run("local families do not count", func(t *testing.T) {
		r := newTestRegistry(t, WithMaxRemoteFamilies(1), WithFailureTTL(time.Hour))
		require.NoError(t, r.Register("House Italic", SourceLocal, map[Variant][]byte{Italic: goitalic.TTF}))

		waitDone(t, r.EnsureLoaded("Remote One"))
		_, ok := r.Status("Remote One")
		assert.True(t, ok)
	})
}

func TestRegistry_RegisterAndUnregister(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.Register("House Italic", SourceLocal, map[Variant][]byte{Italic: goitalic.TTF}))
	assert.True(t, r.IsReady("house italic"))

	// The only variant is used for every request
	_, err := r.Face("House Italic", designer.FontWeightBold, designer.FontStyleNormal, 10)
	assert.NoError(t, err)

	assert.True(t, r.Unregister("House Italic"))
	assert.False(t, r.IsReady("House Italic"))
	assert.False(t, r.Unregister(FamilyGo), "built-ins stay")

	assert.Error(t, r.Register("Broken", SourceLocal, map[Variant][]byte{Regular: []byte("nope")}))
	assert.Error(t, r.Register("Empty", SourceLocal, nil))
}

func TestEncodeDecodeFiles(t *testing.T) {
	files := map[Variant][]byte{Regular: []byte("a"), BoldItalic: []byte("b")}
	raw, err := encodeFiles(files)
	require.NoError(t, err)
	back, err := decodeFiles(raw)
	require.NoError(t, err)
	assert.Equal(t, files, back)

	_, err = decodeFiles([]byte(`{"WEIRD":"YQ=="}`))
	assert.Error(t, err)
	_, err = decodeFiles([]byte(`{}`))
	assert.Error(t, err)
}
