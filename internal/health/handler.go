package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-zookeeper/zk"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/therealhieu/wee/internal/ratelimit"
	"github.com/therealhieu/wee/internal/shortener"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	StatusOK          = "ok"
	StatusDegraded    = "degraded"
	StatusUnavailable = "unavailable"

	healthy   = "healthy"
	unhealthy = "unhealthy"
)

// Checker reports whether a dependency is usable.
type Checker interface {
	Ping(ctx context.Context) error
}

// CheckFunc adapts a function to Checker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// RedisChecker adapts redis.Client to Checker.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// ZooKeeperChecker fails unless the session with the ensemble is established.
func ZooKeeperChecker(conn interface{ State() zk.State }) Checker {
	return CheckFunc(func(context.Context) error {
		if state := conn.State(); state != zk.StateHasSession {
			return errors.Errorf("zookeeper session state %s", state)
		}

		return nil
	})
}

// AllocatorChecker fails once the id allocator has used up its range.
func AllocatorChecker(alloc interface{ Exhausted() bool }) Checker {
	return CheckFunc(func(context.Context) error {
		if alloc.Exhausted() {
			return shortener.ErrRangeExhausted
		}

		return nil
	})
}

// Dependency is a named Checker. A failing critical dependency makes the
// service unavailable; any other failure only degrades it.
type Dependency struct {
	Name     string
	Checker  Checker
	Critical bool
}

// Handler handles health check operations.
type Handler struct {
	deps    []Dependency
	timeout time.Duration
	logger  *zap.Logger
}

// NewHandler creates a health handler checking deps, each bounded by timeout.
func NewHandler(timeout time.Duration, logger *zap.Logger, deps ...Dependency) *Handler {
	return &Handler{
		deps:    deps,
		timeout: timeout,
		logger:  logger,
	}
}

// Response is the response for health check endpoint.
type Response struct {
	Status int
	Body   struct {
		Status       string            `json:"status"                 example:"ok"`
		Dependencies map[string]string `json:"dependencies,omitempty"`
	}
}

// Check pings every dependency concurrently.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		g       errgroup.Group
		results = make(map[string]string, len(h.deps))
		status  = StatusOK
	)

	for _, dep := range h.deps {
		g.Go(func() error {
			err := dep.Checker.Ping(ctx)

			mu.Lock()
			defer mu.Unlock()

			if err == nil {
				results[dep.Name] = healthy

				return nil
			}

			h.logger.Warn("dependency unhealthy", zap.String("dependency", dep.Name), zap.Error(err))
			results[dep.Name] = unhealthy

			switch {
			case dep.Critical:
				status = StatusUnavailable
			case status == StatusOK:
				status = StatusDegraded
			}

			return nil
		})
	}

	_ = g.Wait()

	resp := &Response{Status: http.StatusOK}
	resp.Body.Status = status
	resp.Body.Dependencies = results

	if status == StatusUnavailable {
		resp.Status = http.StatusServiceUnavailable
	}

	return resp, nil
}

// PingResponse is the liveness probe body.
type PingResponse struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// Ping answers the liveness probe.
func Ping(_ context.Context, _ *struct{}) (*PingResponse, error) {
	return &PingResponse{ContentType: "text/plain", Body: []byte("Pong!")}, nil
}

// RegisterRoutes registers health check routes. Neither is rate limited.
func RegisterRoutes(api huma.API, h *Handler) {
	unlimited := map[string]any{
		ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true},
	}

	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Dependency health",
		Tags:        []string{"Health"},
		Metadata:    unlimited,
	}, h.Check)

	huma.Register(api, huma.Operation{
		OperationID: "ping",
		Method:      http.MethodGet,
		Path:        "/ping",
		Summary:     "Liveness probe",
		Tags:        []string{"Health"},
		Metadata:    unlimited,
	}, Ping)
}
