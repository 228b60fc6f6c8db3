package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/therealhieu/wee/internal/shortener"
	"github.com/therealhieu/wee/internal/store"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("set writes every key", func(t *testing.T) {
		c := store.NewMemoryCache(0)
		expires := shortener.NewDate(2030, time.March, 1)
		url := newURL("1A", "https://a.example.com", "u1", shortener.StringPtr("docs"))
		url.ExpirationDate = &expires

		require.NoError(t, c.Set(ctx, url))

		byShort, err := c.GetByShort(ctx, "1A")
		require.NoError(t, err)
		assert.Equal(t, url, byShort)

		byAlias, err := c.GetByAlias(ctx, "docs")
		require.NoError(t, err)
		assert.Equal(t, url, byAlias)

		byOwner, err := c.GetByOwner(ctx, "u1", "https://a.example.com")
		require.NoError(t, err)
		assert.Equal(t, url, byOwner)

		assert.Equal(t, 3, c.Len())
	})

	t.Run("no alias key without alias", func(t *testing.T) {
		c := store.NewMemoryCache(0)

		require.NoError(t, c.Set(ctx, newURL("1A", "https://a.example.com", "u1", nil)))

		_, err := c.GetByAlias(ctx, "1A")
		require.ErrorIs(t, err, shortener.ErrNotFound)
		assert.Equal(t, 2, c.Len())
	})

	t.Run("misses are not found", func(t *testing.T) {
		c := store.NewMemoryCache(0)

		_, err := c.GetByShort(ctx, "nope")
		require.ErrorIs(t, err, shortener.ErrNotFound)

		_, err = c.GetByOwner(ctx, "u1", "https://a.example.com")
		require.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("evict removes every key", func(t *testing.T) {
		c := store.NewMemoryCache(0)
		url := newURL("1A", "https://a.example.com", "u1", shortener.StringPtr("docs"))

		require.NoError(t, c.Set(ctx, url))
		require.NoError(t, c.Evict(ctx, url))

		assert.Equal(t, 0, c.Len())
	})

	t.Run("returned records are copies", func(t *testing.T) {
		c := store.NewMemoryCache(0)
		require.NoError(t, c.Set(ctx, newURL("1A", "https://a.example.com", "u1", nil)))

		first, err := c.GetByShort(ctx, "1A")
		require.NoError(t, err)

		first.Long = "https://changed.example.com"

		second, err := c.GetByShort(ctx, "1A")
		require.NoError(t, err)
		assert.Equal(t, "https://a.example.com", second.Long)
	})

	t.Run("entries expire after ttl", func(t *testing.T) {
		c := store.NewMemoryCache(20 * time.Millisecond)
		require.NoError(t, c.Set(ctx, newURL("1A", "https://a.example.com", "u1", nil)))

		time.Sleep(40 * time.Millisecond)

		_, err := c.GetByShort(ctx, "1A")
		require.ErrorIs(t, err, shortener.ErrNotFound)
	})
}
