package cli

import (
	"context"
	"fmt"
	"log"

	"tasktimer/backend/internal/cache"
	"tasktimer/backend/internal/config"
	"tasktimer/backend/internal/database"

	"gorm.io/gorm"
)

// app holds the resources shared by every subcommand.
type app struct {
	config *config.Config
	pool   *database.DatabasePool
	cache  cache.Cache
}

func (a *app) DB() *gorm.DB {
	return a.pool.DB
}

// openApp loads configuration and connects to the database. When withCache
// is set it also builds the summary cache, backed by Redis if enabled.
func openApp(withCache bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	pool, err := database.NewDatabasePool(&database.PoolConfig{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.GetDatabaseDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		LogLevel:        database.ParseLogLevel(cfg.Database.LogLevel),
		SlowThreshold:   database.DefaultPoolConfig().SlowThreshold,
	})
	if err != nil {
		return nil, err
	}

	a := &app{config: cfg, pool: pool}
	if withCache {
		a.cache = newSummaryCache(cfg)
	}
	return a, nil
}

func newSummaryCache(cfg *config.Config) cache.Cache {
	if !cfg.Redis.Enabled {
		return cache.NewMultiLevelCache(nil, nil)
	}

	redisCache := cache.NewRedisCache(&cache.CacheConfig{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err := redisCache.Health(context.Background()); err != nil {
		log.Printf("redis at %s unavailable, summaries served from memory until it recovers: %v", cfg.GetRedisAddr(), err)
	}
	return cache.NewMultiLevelCache(redisCache, cache.DefaultCircuitBreakerConfig())
}

func (a *app) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			log.Printf("failed to close cache: %v", err)
		}
	}
	if err := a.pool.Close(); err != nil {
		log.Printf("failed to close database: %v", err)
	}
}
