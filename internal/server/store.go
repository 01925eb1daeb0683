package server

import (
	"context"
	"fmt"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/config"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/repository"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/repository/memory"
	redisRepo "github.com/Achille2gre/bonvan-wind-dashboard/internal/repository/redis"
	sqliteRepo "github.com/Achille2gre/bonvan-wind-dashboard/internal/repository/sqlite"
)

// OpenStore opens the KeyValueStore selected by cfg.Driver. The caller owns
// the store and must Close it.
func OpenStore(ctx context.Context, cfg config.Storage) (repository.KeyValueStore, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqliteRepo.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return db, nil
	case config.DriverRedis:
		s, err := redisRepo.New(ctx, redisRepo.Options{
			Addr:        cfg.Redis.Addr,
			Username:    cfg.Redis.Username,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			MaxRetries:  cfg.Redis.MaxRetries,
			DialTimeout: cfg.Redis.DialTimeout,
			Timeout:     cfg.Redis.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("opening redis store: %w", err)
		}
		return s, nil
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
