// Package app wires together the scheduler's infrastructure: database
// connection, plan cache, event publisher, engine registry, and the
// application services built on top of them. It is the composition
// root consulted by cmd/pacer and by tests that need a fully wired,
// in-memory-or-local stack.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/pacer/internal/engine/builtin"
	"github.com/felixgeelhaar/pacer/internal/engine/registry"
	"github.com/felixgeelhaar/pacer/internal/engine/runtime"
	"github.com/felixgeelhaar/pacer/internal/engine/sdk"
	"github.com/felixgeelhaar/pacer/internal/scheduling/application/services"
	"github.com/felixgeelhaar/pacer/internal/scheduling/domain"
	"github.com/felixgeelhaar/pacer/internal/scheduling/infrastructure/cache"
	"github.com/felixgeelhaar/pacer/internal/scheduling/infrastructure/persistence"
	"github.com/felixgeelhaar/pacer/internal/scheduling/infrastructure/remote"
	"github.com/felixgeelhaar/pacer/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/pacer/internal/shared/infrastructure/database/postgres" // registers the postgres driver
	_ "github.com/felixgeelhaar/pacer/internal/shared/infrastructure/database/sqlite"   // registers the sqlite driver
	"github.com/felixgeelhaar/pacer/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/pacer/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/pacer/pkg/config"
	"github.com/felixgeelhaar/pacer/pkg/observability"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Container holds every long-lived dependency the CLI and its
// subcommands need. Fields are exported so commands can reach into it
// directly, the same shallow-DI style the surrounding CLI already used.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	DBConn      database.Connection
	RedisClient *redis.Client
	EventBus    eventbus.Publisher

	EngineRegistry *registry.Registry
	EngineExecutor *runtime.Executor
	EngineLoader   *registry.Loader

	RunRepository domain.RunRepository
	PlanCache     domain.PlanCache
	RunService    *services.RunService

	GraphClient *remote.GraphClient
	Metrics     observability.Metrics
}

// NewContainer wires a production container: PostgreSQL, Redis, and
// RabbitMQ, all required to be reachable.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := database.NewConnection(ctx, database.Config{
		Driver: database.Driver(cfg.DatabaseDriver),
		URL:    cfg.DatabaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		_ = conn.Close()
		_ = publisher.Close()
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	planCache := domain.PlanCache(cache.NewRedisPlanCache(redisClient))

	return buildContainer(ctx, cfg, logger, conn, redisClient, publisher, planCache)
}

// NewLocalContainer wires a zero-config container for offline/local
// use: SQLite on disk, an in-process plan cache instead of Redis, and
// events logged instead of published to a broker.
func NewLocalContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	return buildContainer(ctx, cfg, logger, conn, nil, eventbus.NewNoopPublisher(logger), newInMemoryPlanCache())
}

func buildContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, conn database.Connection, redisClient *redis.Client, publisher eventbus.Publisher, planCache domain.PlanCache) (*Container, error) {
	if err := migrations.Run(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	engineRegistry := registry.NewRegistry(logger)
	if err := engineRegistry.RegisterBuiltin(builtin.NewDefaultWorkdayProvider()); err != nil {
		return nil, fmt.Errorf("register default workday provider: %w", err)
	}
	if err := engineRegistry.RegisterBuiltin(builtin.NewWorkdayProviderPro()); err != nil {
		return nil, fmt.Errorf("register pro workday provider: %w", err)
	}

	engineLoader := registry.NewLoader(logger)
	if len(cfg.EngineSearchPaths) > 0 {
		discovery := registry.NewDiscovery(cfg.EngineSearchPaths, logger)
		discovered, err := discovery.Discover()
		if err != nil {
			logger.Warn("engine discovery failed", "error", err)
		}
		for _, plugin := range discovered {
			manifest := plugin.Manifest
			logger.Info("discovered external workday engine", "engine_id", manifest.ID, "path", plugin.Path)

			factory := func() (sdk.Engine, error) {
				return engineLoader.Load(ctx, registry.LoadOptions{
					Manifest:   manifest,
					Config:     sdk.NewEngineConfig(manifest.ID, uuid.Nil, nil),
					SecureMode: cfg.EngineSecureMode,
				})
			}
			if err := engineRegistry.RegisterFactory(manifest.ID, factory, manifest); err != nil {
				logger.Warn("failed to register external workday engine",
					"engine_id", manifest.ID,
					"path", plugin.Path,
					"error", err,
				)
			}
		}
	}

	engineExecutor := runtime.NewExecutor(engineRegistry, runtime.NewMetricsCollector(), logger, runtime.DefaultExecutorConfig())

	runRepo := persistence.NewRunRepository(conn)
	metrics := observability.NewInMemoryMetrics()

	breakerSettings := services.DefaultBreakerSettings()
	breakerSettings.Name = "scheduler.solve." + cfg.AppEnv
	runService := services.NewRunService(runRepo, planCache, publisher, breakerSettings, metrics)

	c := &Container{
		Config:         cfg,
		Logger:         logger,
		DBConn:         conn,
		RedisClient:    redisClient,
		EventBus:       publisher,
		EngineRegistry: engineRegistry,
		EngineExecutor: engineExecutor,
		EngineLoader:   engineLoader,
		RunRepository:  runRepo,
		PlanCache:      planCache,
		RunService:     runService,
		Metrics:        metrics,
	}

	if cfg.GraphOAuthTokenURL != "" {
		c.GraphClient = remote.NewGraphClient(ctx, remote.GraphClientConfig{
			TokenURL:     cfg.GraphOAuthTokenURL,
			ClientID:     cfg.GraphOAuthClientID,
			ClientSecret: cfg.GraphOAuthClientSecret,
			Scopes:       cfg.GraphOAuthScopeList(),
		})
	}

	return c, nil
}

// WorkdayPredicate builds the domain.WorkdayPredicate backed by engineID,
// defaulting to the built-in Monday-Friday calendar when engineID is empty.
func (c *Container) WorkdayPredicate(ctx context.Context, engineID string) domain.WorkdayPredicate {
	if engineID == "" {
		return domain.DefaultWorkdayPredicate
	}
	return services.NewEnginePredicate(ctx, c.EngineExecutor, engineID)
}

// Close releases every resource the container opened.
func (c *Container) Close() error {
	var firstErr error
	if c.EngineLoader != nil {
		c.EngineLoader.UnloadAll()
	}
	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			firstErr = err
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.EventBus != nil {
		if err := c.EventBus.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// inMemoryPlanCache backs NewLocalContainer's offline mode, where no
// Redis instance is assumed to be running. It satisfies domain.PlanCache
// with a process-local map and does not survive process restarts.
type inMemoryPlanCache struct {
	mu      sync.Mutex
	entries map[string]inMemoryPlanEntry
}

type inMemoryPlanEntry struct {
	plan      *domain.Plan
	expiresAt time.Time
}

func newInMemoryPlanCache() *inMemoryPlanCache {
	return &inMemoryPlanCache{entries: make(map[string]inMemoryPlanEntry)}
}

func (c *inMemoryPlanCache) Get(_ context.Context, digest string) (*domain.Plan, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[digest]
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, digest)
		return nil, false, nil
	}
	return entry.plan, true, nil
}

func (c *inMemoryPlanCache) Set(_ context.Context, digest string, plan *domain.Plan, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[digest] = inMemoryPlanEntry{plan: plan, expiresAt: time.Now().Add(ttl)}
	return nil
}
