package container

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/do"
	"github.com/therealhieu/wee/internal/analytics"
	"github.com/therealhieu/wee/internal/analytics/sink"
	"github.com/therealhieu/wee/internal/handlers"
	"github.com/therealhieu/wee/internal/health"
	"github.com/therealhieu/wee/internal/idgen"
	"github.com/therealhieu/wee/internal/messaging"
	"github.com/therealhieu/wee/internal/metrics"
	"github.com/therealhieu/wee/internal/middleware"
	"github.com/therealhieu/wee/internal/ratelimit"
	"github.com/therealhieu/wee/internal/shortener"
	"github.com/therealhieu/wee/internal/store"
	"go.uber.org/zap"
)

const (
	consumerGroup = "wee-analytics"
	healthTimeout = 2 * time.Second
	setupTimeout  = 30 * time.Second
)

func MetricsPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*metrics.Metrics, error) {
		return metrics.New(), nil
	})
}

// AllocatorPackage provides the id allocator. A ZooKeeper shard that runs out of
// ids flags the exhaustion metric and, unless disabled, stops the process.
func AllocatorPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (shortener.IDAllocator, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		switch opts.Allocator {
		case AllocatorSnowflake:
			return idgen.NewSnowflakeAllocator(int64(opts.SnowflakeNode))
		case AllocatorZooKeeper:
			if opts.ShardID < 0 || opts.ShardStart < 0 || opts.ShardEnd < 0 {
				return nil, errors.Errorf("shard id and range must not be negative: id=%d start=%d end=%d",
					opts.ShardID, opts.ShardStart, opts.ShardEnd)
			}

			conn := do.MustInvoke[*ZooKeeperConn](i)
			m := do.MustInvoke[*metrics.Metrics](i)

			shard := idgen.ShardInfo{
				BasePath: opts.ShardBasePath,
				ID:       uint64(opts.ShardID),
				Start:    uint64(opts.ShardStart),
				End:      uint64(opts.ShardEnd),
			}

			return idgen.NewShardedAllocator(conn.Conn, shard, logger, idgen.OnExhausted(
				func(shard idgen.ShardInfo, attempted uint64) {
					m.Exhausted()

					if opts.ExitOnExhaustion {
						logger.Fatal("id range exhausted, stopping",
							zap.String("shard", shard.Path()),
							zap.Uint64("attempted", attempted),
						)
					}
				},
			))
		default:
			return nil, errors.Errorf("unknown allocator %q", opts.Allocator)
		}
	})
}

func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (shortener.Repository, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
		defer cancel()

		switch opts.Store {
		case StoreMemory:
			return store.NewMemoryStore(), nil
		case StoreMongo:
			client := do.MustInvoke[*MongoClient](i)
			s := store.NewMongoStore(client.Client, opts.MongoDatabase, opts.MongoCollection, logger)

			if err := s.EnsureIndexes(ctx); err != nil {
				return nil, err
			}

			return s, nil
		case StorePostgres:
			pool := do.MustInvoke[*PostgresPool](i)
			s := store.NewPostgresStore(pool.Pool)

			if err := s.EnsureSchema(ctx); err != nil {
				return nil, err
			}

			return s, nil
		default:
			return nil, errors.Errorf("unknown store %q", opts.Store)
		}
	})
}

func CachePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (shortener.Cache, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.Cache {
		case CacheMemory:
			return store.NewMemoryCache(seconds(opts.CacheTTL)), nil
		case CacheRedis:
			return store.NewRedisCache(do.MustInvoke[*RedisClient](i).Client, seconds(opts.CacheTTL)), nil
		default:
			return nil, errors.Errorf("unknown cache %q", opts.Cache)
		}
	})
}

func ServicePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Service, error) {
		return shortener.NewService(
			do.MustInvoke[shortener.IDAllocator](i),
			idgen.Encode,
			do.MustInvoke[shortener.Repository](i),
			do.MustInvoke[shortener.Cache](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	do.Provide(i, func(i *do.Injector) (*shortener.Resolver, error) {
		return shortener.NewResolver(
			do.MustInvoke[shortener.Repository](i),
			do.MustInvoke[shortener.Cache](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}

func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*ratelimit.Limiter, error) {
		opts := do.MustInvoke[*Options](i)

		var rlStore ratelimit.Store

		switch opts.RateLimitStore {
		case "memory":
			rlStore = store.NewRateLimitMemoryStore()
		case "redis":
			rlStore = store.NewRateLimitRedisStore(do.MustInvoke[*RedisClient](i).Client)
		default:
			return nil, errors.Errorf("unknown rate limit store %q", opts.RateLimitStore)
		}

		policy := ratelimit.NewPolicy(
			int64(opts.RateLimitGlobal),
			int64(opts.RateLimitRead),
			int64(opts.RateLimitWrite),
			seconds(opts.RateLimitWindow),
		)

		return ratelimit.NewLimiter(rlStore, policy), nil
	})
}

func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*RedisClient](i)
		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client:     client.Client,
			Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
		}, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, errors.Wrap(err, "create redis stream publisher")
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (*analytics.Publisher, error) {
		opts := do.MustInvoke[*Options](i)
		if !opts.Analytics {
			return nil, nil
		}

		return analytics.NewPublisher(do.MustInvoke[*messaging.PublisherGroup](i).Publisher()), nil
	})
}

func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		client := do.MustInvoke[*RedisClient](i)
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client.Client,
			Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
			ConsumerGroup: consumerGroup,
			Consumer:      "consumer-" + uuid.NewString(),
		}, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, errors.Wrap(err, "create redis stream subscriber")
		}

		var analyticsSink analytics.Sink

		switch opts.AnalyticsSink {
		case SinkLog:
			analyticsSink = sink.NewLog(logger)
		case SinkRedis:
			analyticsSink = sink.NewRedis(client.Client)
		case SinkBoth:
			analyticsSink = sink.Fanout{sink.NewLog(logger), sink.NewRedis(client.Client)}
		default:
			_ = subscriber.Close()

			return nil, errors.Errorf("unknown analytics sink %q", opts.AnalyticsSink)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		analytics.RegisterConsumers(group, analyticsSink, logger)

		return group, nil
	})
}

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		router := chi.NewMux()
		router.Use(chimiddleware.RequestID, chimiddleware.Recoverer)

		return router, nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)
		m := do.MustInvoke[*metrics.Metrics](i)

		// Keep generated docs off the single-segment paths short codes live on.
		config := huma.DefaultConfig("Wee URL Shortener", "1.0.0")
		config.DocsPath = "/api/docs"
		config.OpenAPIPath = "/api/openapi"

		api := humachi.New(router, config)
		api.UseMiddleware(
			m.Middleware,
			middleware.RequestMeta(api),
			middleware.RateLimit(api, do.MustInvoke[*ratelimit.Limiter](i), logger),
		)

		urlHandler := handlers.NewURLHandler(
			do.MustInvoke[*shortener.Service](i),
			do.MustInvoke[*shortener.Resolver](i),
			opts.PublicURL(),
			logger,
			handlers.WithPublisher(do.MustInvoke[*analytics.Publisher](i)),
			handlers.WithRecorder(m),
		)

		handlers.RegisterRoutes(api, urlHandler)
		health.RegisterRoutes(api, health.NewHandler(healthTimeout, logger, healthDependencies(i, opts)...))
		router.Handle("/metrics", m.Handler())

		return api, nil
	})
}

// healthDependencies lists the checks for every backend the options select.
// Only the allocator is critical: without ids nothing can be shortened.
func healthDependencies(i *do.Injector, opts *Options) []health.Dependency {
	var deps []health.Dependency

	if opts.Cache == CacheRedis || opts.RateLimitStore == "redis" || opts.Analytics {
		deps = append(deps, health.Dependency{
			Name:    "redis",
			Checker: health.NewRedisChecker(do.MustInvoke[*RedisClient](i).Client),
		})
	}

	switch opts.Store {
	case StoreMongo:
		client := do.MustInvoke[*MongoClient](i)
		deps = append(deps, health.Dependency{
			Name: "mongo",
			Checker: health.CheckFunc(func(ctx context.Context) error {
				return client.Ping(ctx, nil)
			}),
		})
	case StorePostgres:
		deps = append(deps, health.Dependency{
			Name:    "postgres",
			Checker: do.MustInvoke[*PostgresPool](i),
		})
	}

	if opts.Allocator == AllocatorZooKeeper {
		deps = append(deps, health.Dependency{
			Name:    "zookeeper",
			Checker: health.ZooKeeperChecker(do.MustInvoke[*ZooKeeperConn](i)),
		})
	}

	if alloc, ok := do.MustInvoke[shortener.IDAllocator](i).(interface{ Exhausted() bool }); ok {
		deps = append(deps, health.Dependency{
			Name:     "allocator",
			Checker:  health.AllocatorChecker(alloc),
			Critical: true,
		})
	}

	return deps
}
