package ratelimit

import (
	"context"
	"fmt"
)

// LimitExceeded describes the limit a rejected request ran into.
type LimitExceeded struct {
	Scope  Scope
	Config LimitConfig
	Count  int64
}

// Limiter enforces a Policy with a sliding window per client, scope and window length.
type Limiter struct {
	store  Store
	policy *Policy
}

// NewLimiter creates a policy-based sliding window limiter.
func NewLimiter(store Store, policy *Policy) *Limiter {
	return &Limiter{
		store:  store,
		policy: policy,
	}
}

// Allow records the request against every limit of scopes and reports whether all of
// them still hold. The first exceeded limit is returned when the request is rejected.
func (l *Limiter) Allow(ctx context.Context, clientKey string, scopes []Scope) (bool, *LimitExceeded, error) {
	for _, scope := range scopes {
		for _, limit := range l.policy.Limits[scope] {
			count, err := l.store.Record(ctx, windowKey(clientKey, scope, limit), limit.Window)
			if err != nil {
				return false, nil, err
			}

			if count > limit.Max {
				return false, &LimitExceeded{Scope: scope, Config: limit, Count: count}, nil
			}
		}
	}

	return true, nil, nil
}

func windowKey(clientKey string, scope Scope, limit LimitConfig) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", clientKey, scope, limit.Window.Milliseconds())
}
