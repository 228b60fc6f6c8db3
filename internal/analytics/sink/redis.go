package sink

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/therealhieu/wee/internal/analytics"
)

const (
	// KeyRedirects counts redirects per code.
	KeyRedirects = "analytics:redirects"
	// KeyShortens counts shorten requests per outcome.
	KeyShortens = "analytics:shortens"
)

// Redis is an analytics.Sink keeping per-code redirect counters and
// per-outcome shorten counters in Redis hashes.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis counter sink.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) SaveURLShortened(ctx context.Context, event *analytics.URLShortenedEvent) error {
	return r.client.HIncrBy(ctx, KeyShortens, event.Outcome, 1).Err()
}

func (r *Redis) SaveURLRedirected(ctx context.Context, event *analytics.URLRedirectedEvent) error {
	return r.client.HIncrBy(ctx, KeyRedirects, event.Code, 1).Err()
}

// RedirectCount returns how many redirects code has served.
func (r *Redis) RedirectCount(ctx context.Context, code string) (int64, error) {
	n, err := r.client.HGet(ctx, KeyRedirects, code).Int64()
	if err == redis.Nil {
		return 0, nil
	}

	return n, err
}
