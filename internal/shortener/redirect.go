package shortener

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Source tells where a redirect was resolved from.
type Source string

const (
	SourceCache Source = "cache"
	SourceStore Source = "store"
)

// Resolution is the target of a redirect.
type Resolution struct {
	Long   string
	Source Source
}

// Resolver maps short codes and aliases back to long URLs.
type Resolver struct {
	store  Repository
	cache  Cache
	logger *zap.Logger
}

// NewResolver creates a redirect resolver.
func NewResolver(store Repository, cache Cache, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// Redirect resolves code, which may be a short code or an alias.
// Expired bindings still resolve; expiry only matters when shortening.
func (r *Resolver) Redirect(ctx context.Context, code string) (*Resolution, error) {
	url, err := r.fromCache(ctx, code)
	if err == nil {
		return &Resolution{Long: url.Long, Source: SourceCache}, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	url, err = r.store.Find(ctx, ByCode(code))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("code %s: %w", code, err)
		}

		return nil, err
	}

	// Backfill is on the critical path: a cache failure fails the redirect.
	if err = r.cache.Set(ctx, url); err != nil {
		return nil, err
	}

	r.logger.Debug("redirect served from store", zap.String("code", code))

	return &Resolution{Long: url.Long, Source: SourceStore}, nil
}

func (r *Resolver) fromCache(ctx context.Context, code string) (*URL, error) {
	url, err := r.cache.GetByShort(ctx, code)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return url, err
	}

	return r.cache.GetByAlias(ctx, code)
}
