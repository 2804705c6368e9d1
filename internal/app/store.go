package app

import (
	"context"
	"fmt"
	"todoKeeper/internal/config"
	"todoKeeper/internal/logger"
	"todoKeeper/internal/storage"
	"todoKeeper/internal/storage/breaker"
	"todoKeeper/internal/storage/inmemory"
	"todoKeeper/internal/storage/mongodb"
	"todoKeeper/internal/storage/postgres"
	"todoKeeper/internal/storage/sqlite"

	"go.uber.org/zap"
)

// OpenStore открывает хранилище по типу из конфига; удалённые хранилища
// оборачиваются предохранителем, если он включён
func OpenStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	var store storage.Store

	switch storage.Type(cfg.Type) {
	case storage.TypeMemory:
		return inmemory.NewStore(), nil

	case storage.TypeSQLite:
		s, err := sqlite.New(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("открытие sqlite: %w", err)
		}
		return s, nil

	case storage.TypePostgres:
		s, err := postgres.New(ctx, cfg.Postgres.URL, postgres.PoolConfig{
			MaxConns:    cfg.Postgres.MaxConnections,
			MinConns:    cfg.Postgres.MinConnections,
			IdleTimeout: cfg.Postgres.IdleTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("подключение к postgres: %w", err)
		}
		store = s

	case storage.TypeMongo:
		s, err := mongodb.New(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err != nil {
			return nil, fmt.Errorf("подключение к mongo: %w", err)
		}
		store = s

	default:
		return nil, fmt.Errorf("неизвестный тип хранилища %q", cfg.Type)
	}

	if !cfg.Breaker.Enabled {
		return store, nil
	}

	logger.Info("App: Хранилище защищено предохранителем",
		zap.String("type", cfg.Type),
		zap.Duration("timeout", cfg.Breaker.Timeout),
		zap.Uint32("consecutive_failures", cfg.Breaker.ConsecutiveFailures))

	return breaker.Wrap(store, breaker.Settings{
		Name:                cfg.Type,
		Timeout:             cfg.Breaker.Timeout,
		ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
	}), nil
}
