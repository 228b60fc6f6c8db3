package store

import (
	"context"
	"sync"

	"github.com/therealhieu/wee/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
// It enforces the same uniqueness constraints as the durable stores.
type MemoryStore struct {
	mu   sync.RWMutex
	urls map[string]*shortener.URL // short -> url
}

// NewMemoryStore creates a new in-memory URL store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		urls: make(map[string]*shortener.URL),
	}
}

func (m *MemoryStore) Get(_ context.Context, short string) (*shortener.URL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	url, ok := m.urls[short]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return url.Clone(), nil
}

func (m *MemoryStore) Insert(_ context.Context, url *shortener.URL) error {
	if url.Short == "" || url.Long == "" {
		return shortener.ErrInvalidURL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conflicts(url, "") {
		return shortener.ErrAlreadyExists
	}

	m.urls[url.Short] = url.Clone()

	return nil
}

func (m *MemoryStore) ReplaceIfExists(_ context.Context, previousShort string, url *shortener.URL) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.urls[previousShort]; !ok {
		return shortener.ErrNotFound
	}

	if m.conflicts(url, previousShort) {
		return shortener.ErrAlreadyExists
	}

	delete(m.urls, previousShort)
	m.urls[url.Short] = url.Clone()

	return nil
}

func (m *MemoryStore) Find(_ context.Context, filter shortener.Filter) (*shortener.URL, error) {
	if filter.IsEmpty() {
		return nil, shortener.ErrNotFound
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	// A short code wins over an alias that happens to spell the same code.
	if url, ok := m.urls[filter.Short]; ok && filter.Short != "" {
		return url.Clone(), nil
	}

	for _, url := range m.urls {
		if filter.Matches(url) {
			return url.Clone(), nil
		}
	}

	return nil, shortener.ErrNotFound
}

// Len returns the number of stored URLs.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.urls)
}

// conflicts reports whether url collides with a stored record other than the one under skip.
func (m *MemoryStore) conflicts(url *shortener.URL, skip string) bool {
	unique := shortener.Filter{
		Short:  url.Short,
		Alias:  url.AliasValue(),
		UserID: url.UserID,
		Long:   url.Long,
	}

	for short, existing := range m.urls {
		if short != skip && unique.Matches(existing) {
			return true
		}
	}

	return false
}
