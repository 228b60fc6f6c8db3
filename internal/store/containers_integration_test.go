//go:build integration

package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// endpoint starts a container and returns host:port of its mapped port.
// The test is skipped when no container runtime is available.
func endpoint(ctx context.Context, t *testing.T, c testcontainers.Container, err error, port string) string {
	t.Helper()

	if err != nil {
		t.Skipf("container runtime not available: %v", err)
	}

	t.Cleanup(func() {
		_ = c.Terminate(context.Background())
	})

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("get container host: %v", err)
	}

	mapped, err := c.MappedPort(ctx, nat.Port(port))
	if err != nil {
		t.Fatalf("map container port: %v", err)
	}

	return host + ":" + mapped.Port()
}

func startMongo(ctx context.Context, t *testing.T) string {
	c, err := mongodb.RunContainer(ctx, testcontainers.WithImage("mongo:6"))

	return "mongodb://" + endpoint(ctx, t, c, err, "27017")
}

func startRedis(ctx context.Context, t *testing.T) string {
	c, err := tcredis.RunContainer(ctx, testcontainers.WithImage("docker.io/redis:7"))

	return endpoint(ctx, t, c, err, "6379")
}

func startPostgres(ctx context.Context, t *testing.T) string {
	c, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("docker.io/postgres:15.2-alpine"),
		postgres.WithDatabase("wee"),
		postgres.WithUsername("wee"),
		postgres.WithPassword("wee"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)

	return fmt.Sprintf("postgres://wee:wee@%s/wee?sslmode=disable", endpoint(ctx, t, c, err, "5432"))
}
