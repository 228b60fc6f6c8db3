package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/therealhieu/wee/internal/middleware"
)

type testOutput struct {
	Body string `json:"body"`
}

// serveMeta runs one request through RequestMeta and returns the Meta the handler saw.
func serveMeta(t *testing.T, req *http.Request) middleware.Meta {
	t.Helper()

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.RequestMeta(api))

	metas := make(chan middleware.Meta, 1)

	huma.Get(api, "/test", func(ctx context.Context, _ *struct{}) (*testOutput, error) {
		metas <- middleware.MetaFrom(ctx)

		return &testOutput{Body: "ok"}, nil
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	return <-metas
}

func TestRequestMeta(t *testing.T) {
	t.Run("extracts user-agent and referrer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("User-Agent", "TestAgent/1.0")
		req.Header.Set("Referer", "https://example.com")

		meta := serveMeta(t, req)

		assert.Equal(t, "TestAgent/1.0", meta.UserAgent)
		assert.Equal(t, "https://example.com", meta.Referrer)
	})

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "single X-Forwarded-For",
			headers: map[string]string{"X-Forwarded-For": "10.0.0.1"},
			want:    "10.0.0.1",
		},
		{
			name:    "first of several X-Forwarded-For",
			headers: map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2, 10.0.0.3"},
			want:    "10.0.0.1",
		},
		{
			name:    "X-Real-IP without X-Forwarded-For",
			headers: map[string]string{"X-Real-IP": "10.0.0.9"},
			want:    "10.0.0.9",
		},
		{
			name:    "X-Forwarded-For wins over X-Real-IP",
			headers: map[string]string{"X-Forwarded-For": "10.0.0.1", "X-Real-IP": "10.0.0.9"},
			want:    "10.0.0.1",
		},
		{
			name: "remote address without proxy headers",
			want: "192.0.2.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tt.want, serveMeta(t, req).ClientIP)
		})
	}
}

func TestMetaFrom(t *testing.T) {
	assert.Equal(t, middleware.Meta{}, middleware.MetaFrom(context.Background()))

	ctx := middleware.WithMeta(context.Background(), middleware.Meta{ClientIP: "10.0.0.1"})
	assert.Equal(t, "10.0.0.1", middleware.MetaFrom(ctx).ClientIP)
}
