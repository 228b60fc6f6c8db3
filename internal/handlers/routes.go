package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/therealhieu/wee/internal/ratelimit"
)

// RegisterRoutes registers the shorten and redirect routes.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	// Charged against the write budget.
	huma.Register(api, huma.Operation{
		OperationID: "shorten",
		Method:      http.MethodPost,
		Path:        "/urls",
		Summary:     "Create short URL",
		Description: "Returns the short code bound to the URL for the user, creating or recycling one if needed.",
		Tags:        []string{"URLs"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeWrite},
		},
	}, urlHandler.Shorten)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL bound to the short code or alias.",
		Tags:        []string{"URLs"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeRead},
		},
	}, urlHandler.Redirect)
}
