package cache

import (
	"github.com/autoparts/storefront/internal/infrastructure/config"
	"github.com/autoparts/storefront/internal/infrastructure/telemetry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Drivers accepted by cache.driver
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// New builds the query cache for cfg. client is nil when Redis could not
// be reached; a redis-configured cache then falls back to memory and
// skips cross-instance invalidation.
func New(cfg config.CacheConfig, client *redis.Client, metrics *telemetry.Metrics, logger *zap.Logger) *QueryCache {
	opts := []Option{
		WithFreshness(cfg.StaleTime, cfg.GCTime),
		WithMetrics(metrics),
		WithLogger(logger.Named("cache")),
	}

	var store Store
	switch {
	case cfg.Driver == DriverRedis && client != nil:
		logger.Info("Using Redis query cache")
		store = NewRedisStore(client, logger)
		opts = append(opts, WithInvalidator(NewRedisInvalidator(client, cfg.InvalidationChannel, logger)))
	case cfg.Driver == DriverRedis:
		logger.Warn("Redis unavailable, falling back to in-memory query cache. " +
			"Invalidations will not reach other instances.")
		store = NewMemoryStore(WithMemoryLogger(logger), WithCleanupInterval(cfg.CleanupInterval))
	default:
		store = NewMemoryStore(WithMemoryLogger(logger), WithCleanupInterval(cfg.CleanupInterval))
	}

	return NewQueryCache(store, opts...)
}
