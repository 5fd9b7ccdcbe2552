package main

import (
	"context"
	"fmt"

	"github.com/IgorGrieder/shortlink/internal/config"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/db"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/IgorGrieder/shortlink/internal/storage/memory"
	mongoStorage "github.com/IgorGrieder/shortlink/internal/storage/mongo"
	postgresStorage "github.com/IgorGrieder/shortlink/internal/storage/postgres"
	redisStorage "github.com/IgorGrieder/shortlink/internal/storage/redis"
	"github.com/IgorGrieder/shortlink/internal/storage/upstash"
	"go.uber.org/zap"
)

type storage struct {
	links  links.LinkRepository
	clicks links.ClickRepository
	close  func()
}

func initStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendPostgres:
		return initPostgres(ctx, cfg)
	case config.StorageBackendMongo:
		return initMongo(ctx, cfg)
	default:
		store := memory.NewStore()
		logger.Warn("Storage backend selected, data will not survive a restart", zap.String("backend", "memory"))
		return &storage{links: store, clicks: store, close: func() {}}, nil
	}
}

func initPostgres(ctx context.Context, cfg *config.Config) (*storage, error) {
	pgConn, err := db.ConnectPostgres(ctx, db.PostgresOptions{
		DSN:      cfg.Postgres.DSN,
		MaxConns: int32(cfg.Postgres.MaxConns),
		MinConns: int32(cfg.Postgres.MinConns),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if cfg.Postgres.EnsureSchema {
		if err := postgresStorage.EnsureSchema(ctx, pgConn); err != nil {
			pgConn.Close()
			return nil, fmt.Errorf("ensure postgres schema: %w", err)
		}
	}

	linkRepo, err := postgresStorage.NewLinksRepository(pgConn)
	if err != nil {
		pgConn.Close()
		return nil, fmt.Errorf("init postgres links repository: %w", err)
	}
	clickRepo, err := postgresStorage.NewClicksRepository(pgConn, postgresStorage.ClicksRepositoryOptions{
		Outbox: cfg.Tracking.Outbox,
	})
	if err != nil {
		pgConn.Close()
		return nil, fmt.Errorf("init postgres clicks repository: %w", err)
	}

	logger.Info("Storage backend selected",
		zap.String("backend", "postgres"),
		zap.Bool("outbox", cfg.Tracking.Outbox),
	)
	return &storage{links: linkRepo, clicks: clickRepo, close: pgConn.Close}, nil
}

func initMongo(ctx context.Context, cfg *config.Config) (*storage, error) {
	mongoConn, err := db.ConnectMongo(ctx, db.MongoOptions{
		URI:      cfg.MongoDB.URI,
		Database: cfg.MongoDB.Database,
		AppName:  cfg.App.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	closeFn := func() { _ = mongoConn.Disconnect() }

	linkRepo, err := mongoStorage.NewLinksRepository(mongoConn)
	if err != nil {
		closeFn()
		return nil, fmt.Errorf("init mongo links repository: %w", err)
	}
	clickRepo, err := mongoStorage.NewClicksRepository(mongoConn)
	if err != nil {
		closeFn()
		return nil, fmt.Errorf("init mongo clicks repository: %w", err)
	}

	logger.Info("Storage backend selected", zap.String("backend", "mongo"))
	return &storage{links: linkRepo, clicks: clickRepo, close: closeFn}, nil
}

// initCache never fails startup. Redirects fall back to the store when no
// cache is available.
func initCache(cfg *config.Config) (links.Cache, func()) {
	noop := func() {}

	switch cfg.Cache.Provider {
	case config.CacheProviderRedis:
		client, err := redisStorage.New(redisStorage.Config{
			URL:      cfg.Redis.URL,
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.Cache.Timeout,
		})
		if err != nil {
			logger.Warn("Redis unavailable, continuing without cache", zap.Error(err))
			return nil, noop
		}
		logger.Info("Cache provider selected", zap.String("provider", "redis"))
		return redisStorage.NewLinkCache(client), func() { _ = client.Close() }

	case config.CacheProviderUpstash:
		cache, err := upstash.NewCache(upstash.Config{
			URL:     cfg.Upstash.URL,
			Token:   cfg.Upstash.Token,
			Timeout: cfg.Cache.Timeout,
		})
		if err != nil {
			logger.Warn("Upstash not configured, continuing without cache", zap.Error(err))
			return nil, noop
		}
		logger.Info("Cache provider selected", zap.String("provider", "upstash"))
		return cache, noop

	case config.CacheProviderMemory:
		logger.Info("Cache provider selected", zap.String("provider", "memory"))
		return memory.NewCache(), noop

	default:
		logger.Info("Cache disabled")
		return nil, noop
	}
}
