package store

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/therealhieu/wee/internal/shortener"
)

// MemoryCache is an in-process implementation of shortener.Cache.
// Values are kept in their JSON wire form so callers never share a record.
type MemoryCache struct {
	cache *cache.Cache
}

// NewMemoryCache creates an in-process cache. A zero ttl keeps entries until evicted.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	expiration := ttl
	if expiration <= 0 {
		expiration = cache.NoExpiration
	}

	return &MemoryCache{
		cache: cache.New(expiration, 10*time.Minute),
	}
}

func (m *MemoryCache) GetByShort(_ context.Context, short string) (*shortener.URL, error) {
	return m.get(shortPrefix + short)
}

func (m *MemoryCache) GetByAlias(_ context.Context, alias string) (*shortener.URL, error) {
	return m.get(aliasPrefix + alias)
}

func (m *MemoryCache) GetByOwner(_ context.Context, userID, long string) (*shortener.URL, error) {
	return m.get(ownerKey(userID, long))
}

func (m *MemoryCache) Set(_ context.Context, url *shortener.URL) error {
	data, err := url.Marshal()
	if err != nil {
		return shortener.Internal("encode url", err)
	}

	for _, key := range keysOf(url) {
		m.cache.SetDefault(key, data)
	}

	return nil
}

func (m *MemoryCache) Evict(_ context.Context, url *shortener.URL) error {
	for _, key := range keysOf(url) {
		m.cache.Delete(key)
	}

	return nil
}

// Len returns the number of cached keys.
func (m *MemoryCache) Len() int {
	return m.cache.ItemCount()
}

func (m *MemoryCache) get(key string) (*shortener.URL, error) {
	value, ok := m.cache.Get(key)
	if !ok {
		return nil, shortener.ErrNotFound
	}

	data, _ := value.([]byte)

	url, err := shortener.UnmarshalURL(data)
	if err != nil {
		return nil, shortener.Internal("decode cached url", err)
	}

	return url, nil
}

// ownerKey flattens the user hash of RedisCache into a single key space.
func ownerKey(userID, long string) string {
	return userKey(userID) + ":" + long
}

func keysOf(url *shortener.URL) []string {
	keys := []string{shortPrefix + url.Short, ownerKey(url.UserID, url.Long)}

	if url.Alias != nil {
		keys = append(keys, aliasPrefix+*url.Alias)
	}

	return keys
}

// Compile-time check.
var _ shortener.Cache = (*MemoryCache)(nil)
