package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-zookeeper/zk"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/therealhieu/wee/internal/health"
	"github.com/therealhieu/wee/internal/shortener"
	"go.uber.org/zap"
)

type mockChecker struct {
	err error
}

func (m *mockChecker) Ping(_ context.Context) error {
	return m.err
}

type fakeAllocator bool

func (f fakeAllocator) Exhausted() bool {
	return bool(f)
}

type fakeConn zk.State

func (f fakeConn) State() zk.State {
	return zk.State(f)
}

func dep(name string, err error, critical bool) health.Dependency {
	return health.Dependency{Name: name, Checker: &mockChecker{err: err}, Critical: critical}
}

func TestHandler_Check(t *testing.T) {
	down := errors.New("connection refused")

	tests := []struct {
		name       string
		deps       []health.Dependency
		wantStatus string
		wantCode   int
		wantDeps   map[string]string
	}{
		{
			name:       "ok when every dependency is healthy",
			deps:       []health.Dependency{dep("redis", nil, false), dep("allocator", nil, true)},
			wantStatus: health.StatusOK,
			wantCode:   http.StatusOK,
			wantDeps:   map[string]string{"redis": "healthy", "allocator": "healthy"},
		},
		{
			name:       "degraded when a non-critical dependency fails",
			deps:       []health.Dependency{dep("redis", down, false), dep("allocator", nil, true)},
			wantStatus: health.StatusDegraded,
			wantCode:   http.StatusOK,
			wantDeps:   map[string]string{"redis": "unhealthy", "allocator": "healthy"},
		},
		{
			name:       "unavailable when a critical dependency fails",
			deps:       []health.Dependency{dep("redis", down, false), dep("allocator", down, true)},
			wantStatus: health.StatusUnavailable,
			wantCode:   http.StatusServiceUnavailable,
			wantDeps:   map[string]string{"redis": "unhealthy", "allocator": "unhealthy"},
		},
		{
			name:       "ok with no dependencies",
			wantStatus: health.StatusOK,
			wantCode:   http.StatusOK,
			wantDeps:   map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := health.NewHandler(time.Second, zap.NewNop(), tt.deps...)

			resp, err := handler.Check(context.Background(), nil)

			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.Status)
			assert.Equal(t, tt.wantStatus, resp.Body.Status)
			assert.Equal(t, tt.wantDeps, resp.Body.Dependencies)
		})
	}

	t.Run("bounds slow checks by the timeout", func(t *testing.T) {
		slow := health.CheckFunc(func(ctx context.Context) error {
			<-ctx.Done()

			return ctx.Err()
		})
		handler := health.NewHandler(10*time.Millisecond, zap.NewNop(),
			health.Dependency{Name: "mongo", Checker: slow})

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, health.StatusDegraded, resp.Body.Status)
	})
}

func TestAllocatorChecker(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, health.AllocatorChecker(fakeAllocator(false)).Ping(ctx))
	require.ErrorIs(t, health.AllocatorChecker(fakeAllocator(true)).Ping(ctx), shortener.ErrRangeExhausted)
}

func TestZooKeeperChecker(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, health.ZooKeeperChecker(fakeConn(zk.StateHasSession)).Ping(ctx))
	require.Error(t, health.ZooKeeperChecker(fakeConn(zk.StateDisconnected)).Ping(ctx))
}

func TestRoutes(t *testing.T) {
	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	health.RegisterRoutes(api, health.NewHandler(time.Second, zap.NewNop(),
		health.Dependency{Name: "allocator", Checker: health.AllocatorChecker(fakeAllocator(true)), Critical: true}))

	t.Run("ping", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Pong!", w.Body.String())
	})

	t.Run("exhausted allocator is unavailable", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var body struct {
			Status       string            `json:"status"`
			Dependencies map[string]string `json:"dependencies"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, health.StatusUnavailable, body.Status)
		assert.Equal(t, map[string]string{"allocator": "unhealthy"}, body.Dependencies)
	})
}

func TestRedisChecker(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", addr, err)
	}

	t.Run("Ping returns nil when redis is available", func(t *testing.T) {
		checker := health.NewRedisChecker(client)

		err := checker.Ping(context.Background())

		assert.NoError(t, err)
	})
}
