package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulluproar/backoffice/internal/domain/shared"
)

func TestMemoryTemplateRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("lists in save order", func(t *testing.T) {
		repo := NewMemoryTemplateRepository()
		a := newTestTemplate(t, "A", fixedTime(time.Hour))
		b := newTestTemplate(t, "A", fixedTime(0))
		require.NoError(t, repo.Append(ctx, a))
		require.NoError(t, repo.Append(ctx, b))

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, a.ID, list[0].ID)
		assert.Equal(t, b.ID, list[1].ID)
	})

	t.Run("stored copies are isolated from callers", func(t *testing.T) {
		repo := NewMemoryTemplateRepository()
		tmpl := newTestTemplate(t, "Isolated", fixedTime(0))
		require.NoError(t, repo.Append(ctx, tmpl))

		tmpl.Snapshot.Elements[0].Text.Content = "mutated after save"

		found, err := repo.FindByID(ctx, tmpl.ID)
		require.NoError(t, err)
		assert.NotEqual(t, "mutated after save", found.Snapshot.Elements[0].Text.Content)

		found.Snapshot.Elements = nil
		again, err := repo.FindByID(ctx, tmpl.ID)
		require.NoError(t, err)
		assert.Len(t, again.Snapshot.Elements, 2)
	})

	t.Run("rejects a second append of the same id", func(t *testing.T) {
		repo := NewMemoryTemplateRepository()
		tmpl := newTestTemplate(t, "Once", fixedTime(0))
		require.NoError(t, repo.Append(ctx, tmpl))
		assert.Error(t, repo.Append(ctx, tmpl))

		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := NewMemoryTemplateRepository()
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("honors cancelled context", func(t *testing.T) {
		repo := NewMemoryTemplateRepository()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := repo.List(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("concurrent appends", func(t *testing.T) {
		repo := NewMemoryTemplateRepository()
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			tmpl := newTestTemplate(t, "Concurrent", fixedTime(0))
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, repo.Append(ctx, tmpl))
			}()
		}
		wg.Wait()

		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 20)
	})
}
