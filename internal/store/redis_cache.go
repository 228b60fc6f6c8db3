package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/therealhieu/wee/internal/shortener"
)

const (
	shortPrefix = "short:"
	aliasPrefix = "alias:"
)

// userKey is the hash holding a user's URLs, keyed by long URL.
func userKey(userID string) string {
	return "user:" + userID + ":urls"
}

// RedisCache is a Redis implementation of shortener.Cache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed cache. A zero ttl keeps entries until evicted.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisCache) GetByShort(ctx context.Context, short string) (*shortener.URL, error) {
	return r.decode(r.client.Get(ctx, shortPrefix+short).Bytes())
}

func (r *RedisCache) GetByAlias(ctx context.Context, alias string) (*shortener.URL, error) {
	return r.decode(r.client.Get(ctx, aliasPrefix+alias).Bytes())
}

func (r *RedisCache) GetByOwner(ctx context.Context, userID, long string) (*shortener.URL, error) {
	return r.decode(r.client.HGet(ctx, userKey(userID), long).Bytes())
}

// Set writes every key of url in a single MULTI/EXEC.
func (r *RedisCache) Set(ctx context.Context, url *shortener.URL) error {
	data, err := url.Marshal()
	if err != nil {
		return shortener.Internal("encode url", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, shortPrefix+url.Short, data, r.ttl)

		if url.Alias != nil {
			pipe.Set(ctx, aliasPrefix+*url.Alias, data, r.ttl)
		}

		pipe.HSet(ctx, userKey(url.UserID), url.Long, data)

		// The owner hash shares one expiry, refreshed on every write for that user.
		if r.ttl > 0 {
			pipe.Expire(ctx, userKey(url.UserID), r.ttl)
		}

		return nil
	})
	if err != nil {
		return shortener.Transient("redis set", err)
	}

	return nil
}

func (r *RedisCache) Evict(ctx context.Context, url *shortener.URL) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, shortPrefix+url.Short)

		if url.Alias != nil {
			pipe.Del(ctx, aliasPrefix+*url.Alias)
		}

		pipe.HDel(ctx, userKey(url.UserID), url.Long)

		return nil
	})
	if err != nil {
		return shortener.Transient("redis evict", err)
	}

	return nil
}

// Ping checks Redis connectivity.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) decode(data []byte, err error) (*shortener.URL, error) {
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shortener.ErrNotFound
		}

		return nil, shortener.Transient("redis get", err)
	}

	url, err := shortener.UnmarshalURL(data)
	if err != nil {
		return nil, shortener.Internal("decode cached url", err)
	}

	return url, nil
}

// Compile-time check.
var _ shortener.Cache = (*RedisCache)(nil)
