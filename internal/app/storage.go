package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

// pgStore releases the pool along with the store.
type pgStore struct {
	*storage.PostgresStore
	pool *pgxpool.Pool
}

func (s pgStore) Close() error {
	err := s.PostgresStore.Close()
	s.pool.Close()
	return err
}

// OpenStorage opens the local storage backend named by cfg.StorageDriver.
func OpenStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return storage.NewMemoryStore(), nil

	case config.DriverFile:
		s, err := storage.NewFileStore(cfg.StoragePath, logger)
		if err != nil {
			return nil, err
		}
		return s, nil

	case config.DriverRedis:
		s, err := storage.NewRedisStore(ctx, cfg.RedisURL, cfg.StorageNamespace, logger)
		if err != nil {
			return nil, err
		}
		return s, nil

	case config.DriverPostgres:
		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
				return nil, err
			}
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s := storage.NewPostgresStore(pool, storage.DSNListener(cfg.DatabaseDSN), cfg.StorageNamespace, logger)
		return pgStore{PostgresStore: s, pool: pool}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
