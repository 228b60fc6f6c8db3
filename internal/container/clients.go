package container

import (
	"context"
	"time"

	"github.com/go-zookeeper/zk"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/therealhieu/wee/internal/idgen"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const connectTimeout = 10 * time.Second

// RedisClient closes the shared Redis client on injector shutdown.
type RedisClient struct {
	*redis.Client
}

func (c *RedisClient) Shutdown() error {
	return c.Close()
}

// MongoClient disconnects from MongoDB on injector shutdown.
type MongoClient struct {
	*mongo.Client
}

func (c *MongoClient) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	return c.Disconnect(ctx)
}

// PostgresPool closes the pgx pool on injector shutdown.
type PostgresPool struct {
	*pgxpool.Pool
}

func (p *PostgresPool) Shutdown() error {
	p.Close()

	return nil
}

// ZooKeeperConn closes the ZooKeeper session on injector shutdown. Sequential
// nodes created by the allocator are persistent and survive it.
type ZooKeeperConn struct {
	*zk.Conn
}

func (c *ZooKeeperConn) Shutdown() error {
	c.Close()

	return nil
}

func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RedisClient, error) {
		opts := do.MustInvoke[*Options](i)

		return &RedisClient{redis.NewClient(&redis.Options{
			Addr: opts.RedisAddr,
			DB:   opts.RedisDB,
		})}, nil
	})
}

func MongoPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*MongoClient, error) {
		opts := do.MustInvoke[*Options](i)

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.MongoURI))
		if err != nil {
			return nil, errors.Wrap(err, "connect to mongodb")
		}

		return &MongoClient{client}, nil
	})
}

func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*PostgresPool, error) {
		opts := do.MustInvoke[*Options](i)

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, errors.Wrap(err, "connect to postgres")
		}

		return &PostgresPool{pool}, nil
	})
}

func ZooKeeperPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*ZooKeeperConn, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		conn, err := idgen.Connect(opts.ZooKeeperHosts(), seconds(opts.ZooKeeperSessionTimeout), logger)
		if err != nil {
			return nil, err
		}

		return &ZooKeeperConn{conn}, nil
	})
}
