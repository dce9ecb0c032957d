// Package store provides the profile store drivers.
package store

import (
	"context"
	"fmt"

	"github.com/autoparts/storefront/internal/domain/profile"
	"github.com/autoparts/storefront/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// Drivers accepted by store.driver
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Deps carries the shared resources a driver may need
type Deps struct {
	Redis      redis.Cmdable // required by the redis driver
	GormLogger gormlogger.Interface
	Tracing    bool
	Logger     *zap.Logger
}

// New builds the profile store selected by cfg.Driver
func New(ctx context.Context, cfg config.StoreConfig, deps Deps) (profile.Store, error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	switch cfg.Driver {
	case "", DriverMemory:
		log.Info("Using in-memory profile store", zap.Duration("ttl", cfg.TTL))
		return NewMemoryStore(cfg.TTL), nil

	case DriverRedis:
		if deps.Redis == nil {
			return nil, fmt.Errorf("store driver %q requires a redis client", cfg.Driver)
		}
		log.Info("Using Redis profile store", zap.Duration("ttl", cfg.TTL))
		return NewRedisStore(deps.Redis, cfg.TTL), nil

	case DriverSQLite:
		s, err := OpenSQLite(ctx, SQLiteOptions{
			Path:    cfg.SQLitePath,
			TTL:     cfg.TTL,
			Logger:  deps.GormLogger,
			Tracing: deps.Tracing,
		})
		if err != nil {
			return nil, err
		}
		log.Info("Using SQLite profile store",
			zap.String("path", cfg.SQLitePath),
			zap.Duration("ttl", cfg.TTL),
		)
		return s, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
