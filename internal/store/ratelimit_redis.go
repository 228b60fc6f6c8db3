package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/therealhieu/wee/internal/shortener"
)

// RateLimitRedisStore is a Redis implementation of ratelimit.Store shared by every
// instance. Each key is a sorted set of request timestamps scored in milliseconds.
type RateLimitRedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRateLimitRedisStore creates a Redis-backed rate limit store.
func NewRateLimitRedisStore(client *redis.Client) *RateLimitRedisStore {
	return &RateLimitRedisStore{
		client: client,
		now:    time.Now,
	}
}

func (s *RateLimitRedisStore) Record(ctx context.Context, key string, window time.Duration) (int64, error) {
	now := s.now()
	score := float64(now.UnixNano()) / float64(time.Millisecond)
	cutoff := float64(now.Add(-window).UnixNano()) / float64(time.Millisecond)

	var card *redis.IntCmd

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatFloat(cutoff, 'f', -1, 64))
		pipe.ZAdd(ctx, key, redis.Z{Score: score, Member: strconv.FormatInt(now.UnixNano(), 10)})
		card = pipe.ZCard(ctx, key)
		pipe.PExpire(ctx, key, window)

		return nil
	})
	if err != nil {
		return 0, shortener.Transient("redis rate limit", err)
	}

	return card.Val(), nil
}
