package store

import (
	"context"
	"sync"
	"time"

	"github.com/therealhieu/wee/internal/ratelimit"
	"github.com/therealhieu/wee/internal/shortener"
)

var _ ratelimit.Store = (*RateLimitMemoryStore)(nil)

const sweepInterval = time.Minute

// RateLimitMemoryStore keeps a sliding window log per key in process memory.
// Timestamps are appended in order, so pruning drops a prefix. Keys idle for longer
// than the widest window seen are dropped at most once per sweepInterval.
type RateLimitMemoryStore struct {
	mu        sync.Mutex
	clock     shortener.Clock
	requests  map[string][]time.Time
	maxWindow time.Duration
	lastSweep time.Time
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return NewRateLimitMemoryStoreWithClock(shortener.SystemClock{})
}

// NewRateLimitMemoryStoreWithClock creates a store reading time from clock.
func NewRateLimitMemoryStoreWithClock(clock shortener.Clock) *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		clock:    clock,
		requests: make(map[string][]time.Time),
	}
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()

	if window > s.maxWindow {
		s.maxWindow = window
	}

	if now.Sub(s.lastSweep) >= sweepInterval {
		s.sweep(now.Add(-s.maxWindow))
		s.lastSweep = now
	}

	valid := append(prune(s.requests[key], now.Add(-window)), now)
	s.requests[key] = valid

	return int64(len(valid)), nil
}

// Sweep drops keys with no request newer than window and returns how many it dropped.
func (s *RateLimitMemoryStore) Sweep(window time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sweep(s.clock.Now().Add(-window))
}

func (s *RateLimitMemoryStore) sweep(cutoff time.Time) int {
	dropped := 0

	for key, timestamps := range s.requests {
		if len(prune(timestamps, cutoff)) == 0 {
			delete(s.requests, key)
			dropped++
		}
	}

	return dropped
}

// Keys returns the number of tracked keys.
func (s *RateLimitMemoryStore) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.requests)
}

func prune(timestamps []time.Time, cutoff time.Time) []time.Time {
	start := 0
	for start < len(timestamps) && !timestamps[start].After(cutoff) {
		start++
	}

	return timestamps[start:]
}
