package ratelimit

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Scope groups requests that share a rate limit budget.
type Scope string

const (
	// ScopeGlobal applies to every request.
	ScopeGlobal Scope = "global"
	// ScopeRead applies to redirects and other safe methods.
	ScopeRead Scope = "read"
	// ScopeWrite applies to shortening and other unsafe methods.
	ScopeWrite Scope = "write"
)

// MetadataKey is the huma operation metadata key holding an EndpointConfig.
const MetadataKey = "rateLimit"

// EndpointConfig overrides rate limiting for a single operation.
type EndpointConfig struct {
	// Scope replaces the method-based scope. Global always applies.
	Scope Scope
	// Disabled skips rate limiting for the operation.
	Disabled bool
}

// EndpointConfigOf returns the EndpointConfig attached to op, if any.
func EndpointConfigOf(op *huma.Operation) (EndpointConfig, bool) {
	if op == nil || op.Metadata == nil {
		return EndpointConfig{}, false
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)

	return cfg, ok
}

// ResolveScopes returns the scopes a request is charged against: global, plus the
// operation's configured scope or, failing that, read for safe methods and write otherwise.
func ResolveScopes(method string, op *huma.Operation) []Scope {
	if cfg, ok := EndpointConfigOf(op); ok && cfg.Scope != "" {
		return []Scope{ScopeGlobal, cfg.Scope}
	}

	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return []Scope{ScopeGlobal, ScopeRead}
	default:
		return []Scope{ScopeGlobal, ScopeWrite}
	}
}
