package ratelimit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/therealhieu/wee/internal/ratelimit"
	"github.com/therealhieu/wee/internal/store"
)

type failingStore struct{}

func (failingStore) Record(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("store down")
}

var readScopes = []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeRead}

func TestLimiter(t *testing.T) {
	t.Run("allows requests under limit", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(store.NewRateLimitMemoryStore(), ratelimit.NewPolicy(0, 5, 0, time.Minute))

		for range 5 {
			allowed, exceeded, err := limiter.Allow(context.Background(), "client1", readScopes)

			require.NoError(t, err)
			assert.True(t, allowed)
			assert.Nil(t, exceeded)
		}
	})

	t.Run("denies requests over limit", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(store.NewRateLimitMemoryStore(), ratelimit.NewPolicy(0, 3, 0, time.Minute))

		for range 3 {
			allowed, _, _ := limiter.Allow(context.Background(), "client1", readScopes)
			assert.True(t, allowed)
		}

		allowed, exceeded, err := limiter.Allow(context.Background(), "client1", readScopes)

		require.NoError(t, err)
		assert.False(t, allowed)
		require.NotNil(t, exceeded)
		assert.Equal(t, ratelimit.ScopeRead, exceeded.Scope)
		assert.Equal(t, int64(4), exceeded.Count)
		assert.Equal(t, int64(3), exceeded.Config.Max)
	})

	t.Run("global limit applies across scopes", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(store.NewRateLimitMemoryStore(), ratelimit.NewPolicy(2, 10, 10, time.Minute))
		writeScopes := []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeWrite}

		allowed, _, _ := limiter.Allow(context.Background(), "client1", readScopes)
		assert.True(t, allowed)

		allowed, _, _ = limiter.Allow(context.Background(), "client1", writeScopes)
		assert.True(t, allowed)

		allowed, exceeded, err := limiter.Allow(context.Background(), "client1", writeScopes)

		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, ratelimit.ScopeGlobal, exceeded.Scope)
	})

	t.Run("tracks clients independently", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(store.NewRateLimitMemoryStore(), ratelimit.NewPolicy(0, 1, 0, time.Minute))

		allowed, _, _ := limiter.Allow(context.Background(), "client1", readScopes)
		assert.True(t, allowed)

		allowed, _, _ = limiter.Allow(context.Background(), "client1", readScopes)
		assert.False(t, allowed, "client1 should be rate limited")

		allowed, _, err := limiter.Allow(context.Background(), "client2", readScopes)

		require.NoError(t, err)
		assert.True(t, allowed, "client2 should still be allowed")
	})

	t.Run("scopes without limits are free", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(failingStore{}, ratelimit.NewPolicy(0, 0, 0, time.Minute))

		allowed, _, err := limiter.Allow(context.Background(), "client1", readScopes)

		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("allows requests after window expires", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(store.NewRateLimitMemoryStore(), ratelimit.NewPolicy(0, 1, 0, 50*time.Millisecond))

		allowed, _, _ := limiter.Allow(context.Background(), "client1", readScopes)
		assert.True(t, allowed)

		allowed, _, _ = limiter.Allow(context.Background(), "client1", readScopes)
		assert.False(t, allowed, "should be rate limited")

		time.Sleep(60 * time.Millisecond)

		allowed, _, err := limiter.Allow(context.Background(), "client1", readScopes)

		require.NoError(t, err)
		assert.True(t, allowed, "should be allowed after window expires")
	})

	t.Run("returns store errors", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(failingStore{}, ratelimit.NewPolicy(0, 1, 0, time.Minute))

		allowed, _, err := limiter.Allow(context.Background(), "client1", readScopes)

		require.Error(t, err)
		assert.False(t, allowed)
	})
}

func TestNewPolicy(t *testing.T) {
	policy := ratelimit.NewPolicy(100, 0, 10, time.Minute)

	assert.Len(t, policy.Limits, 2)
	assert.Equal(t, []ratelimit.LimitConfig{{Max: 100, Window: time.Minute}}, policy.Limits[ratelimit.ScopeGlobal])
	assert.Equal(t, []ratelimit.LimitConfig{{Max: 10, Window: time.Minute}}, policy.Limits[ratelimit.ScopeWrite])
	assert.NotContains(t, policy.Limits, ratelimit.ScopeRead)
}
