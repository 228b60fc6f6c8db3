package shortener

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Outcome tells how a shorten request was satisfied.
type Outcome string

const (
	OutcomeCreated  Outcome = "created"
	OutcomeReused   Outcome = "reused"
	OutcomeRecycled Outcome = "recycled"
)

// ShortenParams is a validated shorten request.
type ShortenParams struct {
	URL            string
	UserID         string
	Alias          *string
	ExpirationDate *Date
}

// ShortenResult describes the binding a shorten request resolved to.
type ShortenResult struct {
	Short          string  `json:"short"`
	Alias          *string `json:"alias"`
	ExpirationDate *Date   `json:"expirationDate"`
	Outcome        Outcome `json:"-"`
}

// Service decides whether a shorten request reuses, recycles or mints a binding.
type Service struct {
	ids    IDAllocator
	encode Encoder
	store  Repository
	cache  Cache
	clock  Clock
	logger *zap.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the clock used for timestamps and expiry checks.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		s.clock = clock
	}
}

// NewService creates a shorten service.
func NewService(
	ids IDAllocator,
	encode Encoder,
	store Repository,
	cache Cache,
	logger *zap.Logger,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		ids:    ids,
		encode: encode,
		store:  store,
		cache:  cache,
		clock:  SystemClock{},
		logger: logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Shorten returns the short code bound to params, creating or recycling a binding if needed.
//
// Two requests racing past a cache miss for the same alias or (url, user) pair are
// arbitrated by the store's unique indexes: the loser gets ErrAlreadyExists.
func (s *Service) Shorten(ctx context.Context, params ShortenParams) (*ShortenResult, error) {
	if params.Alias != nil {
		existing, err := s.lookup(ctx, ByAlias(*params.Alias))
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		if existing != nil {
			return s.resolveAlias(ctx, params, existing)
		}
	}

	existing, err := s.lookup(ctx, ByOwner(params.UserID, params.URL))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		if s.expired(existing) {
			return s.recycle(ctx, params, existing)
		}

		s.logger.Debug("long url already shortened for user",
			zap.String("short", existing.Short),
			zap.String("userId", existing.UserID),
		)

		return resultOf(existing, OutcomeReused), nil
	}

	return s.create(ctx, params)
}

func (s *Service) resolveAlias(ctx context.Context, params ShortenParams, existing *URL) (*ShortenResult, error) {
	alias := *params.Alias

	switch {
	case s.expired(existing):
		return s.recycle(ctx, params, existing)
	case existing.AliasValue() != alias:
		return nil, &AliasTakenError{Alias: existing.AliasValue()}
	case existing.Long != params.URL:
		return nil, &URLExistsWithAliasError{Alias: alias}
	default:
		s.logger.Debug("alias already bound to requested url",
			zap.String("short", existing.Short),
			zap.String("alias", alias),
		)

		return resultOf(existing, OutcomeReused), nil
	}
}

// lookup checks the cache first and falls back to the store on a cache miss.
func (s *Service) lookup(ctx context.Context, filter Filter) (*URL, error) {
	var (
		cached *URL
		err    error
	)

	if filter.HasOwner() {
		cached, err = s.cache.GetByOwner(ctx, filter.UserID, filter.Long)
	} else {
		cached, err = s.cache.GetByAlias(ctx, filter.Alias)
	}

	if err == nil {
		return cached, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return s.store.Find(ctx, filter)
}

func (s *Service) create(ctx context.Context, params ShortenParams) (*ShortenResult, error) {
	url, err := s.mint(ctx, params)
	if err != nil {
		return nil, err
	}

	if err = s.store.Insert(ctx, url); err != nil {
		return nil, err
	}

	if err = s.cache.Set(ctx, url); err != nil {
		return nil, err
	}

	s.logger.Info("url shortened",
		zap.String("short", url.Short),
		zap.String("userId", url.UserID),
	)

	return resultOf(url, OutcomeCreated), nil
}

// recycle replaces an expired binding in place with a freshly minted one.
// The stale cache keys go first: if anything after that fails, lookups miss the
// cache and find whatever the store holds.
func (s *Service) recycle(ctx context.Context, params ShortenParams, expired *URL) (*ShortenResult, error) {
	if err := s.cache.Evict(ctx, expired); err != nil {
		return nil, err
	}

	url, err := s.mint(ctx, params)
	if err != nil {
		return nil, err
	}

	if err = s.store.ReplaceIfExists(ctx, expired.Short, url); err != nil {
		return nil, err
	}

	if err = s.cache.Set(ctx, url); err != nil {
		return nil, err
	}

	s.logger.Info("expired url recycled",
		zap.String("previous", expired.Short),
		zap.String("short", url.Short),
		zap.String("userId", url.UserID),
	)

	return resultOf(url, OutcomeRecycled), nil
}

func (s *Service) mint(ctx context.Context, params ShortenParams) (*URL, error) {
	id, err := s.ids.NextID(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC().Truncate(time.Millisecond)

	return &URL{
		Long:           params.URL,
		Short:          s.encode(id),
		Alias:          params.Alias,
		ExpirationDate: params.ExpirationDate,
		CreatedAt:      now,
		UpdatedAt:      now,
		UserID:         params.UserID,
	}, nil
}

func (s *Service) expired(url *URL) bool {
	return url.ExpiredAt(s.clock.Now())
}

func resultOf(url *URL, outcome Outcome) *ShortenResult {
	return &ShortenResult{
		Short:          url.Short,
		Alias:          url.Alias,
		ExpirationDate: url.ExpirationDate,
		Outcome:        outcome,
	}
}
