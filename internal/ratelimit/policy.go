package ratelimit

import "time"

// LimitConfig allows at most Max requests per Window.
type LimitConfig struct {
	Max    int64
	Window time.Duration
}

// Policy maps each scope to the limits enforced on it.
type Policy struct {
	Limits map[Scope][]LimitConfig
}

// NewPolicy builds the shortener policy: a global ceiling plus separate budgets for
// redirects (read) and shortening (write). A non-positive max disables that scope.
func NewPolicy(global, read, write int64, window time.Duration) *Policy {
	p := &Policy{Limits: make(map[Scope][]LimitConfig)}

	for scope, max := range map[Scope]int64{ScopeGlobal: global, ScopeRead: read, ScopeWrite: write} {
		if max > 0 {
			p.Limits[scope] = []LimitConfig{{Max: max, Window: window}}
		}
	}

	return p
}
