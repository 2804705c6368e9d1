package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"
	"todoKeeper/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

type PoolConfig struct {
	MaxConns    int32
	MinConns    int32
	IdleTimeout time.Duration
}

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, connString string, poolCfg PoolConfig) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Store: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5
	if poolCfg.MaxConns > 0 {
		config.MaxConns = poolCfg.MaxConns
	}
	if poolCfg.MinConns > 0 {
		config.MinConns = poolCfg.MinConns
	}
	if poolCfg.IdleTimeout > 0 {
		config.MaxConnIdleTime = poolCfg.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Store: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Store: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	if err := Migrate(connString); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("Store: Успешное создание подключения к PostgreSQL")
	return &Store{pool: pool}, nil
}

// Migrate применяет встроенные миграции схемы kv_items
func Migrate(connString string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("источник миграций: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, toMigrateURL(connString))
	if err != nil {
		return fmt.Errorf("инициализация миграций: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Store: Ошибка применения миграций", err)
		return fmt.Errorf("применение миграций: %w", err)
	}
	return nil
}

// драйвер migrate для pgx/v5 регистрируется под схемой pgx5
func toMigrateURL(connString string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(connString, prefix) {
			return "pgx5://" + strings.TrimPrefix(connString, prefix)
		}
	}
	return connString
}

func (s *Store) Close() error {
	s.pool.Close()
	logger.Info("Store: Закрытие всех соединений PostgreSQL")
	return nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Store: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()

	var value string
	err := s.pool.QueryRow(ctx, `SELECT value FROM kv_items WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		logger.Error("Store: Чтение ключа", err, zap.String("key", key), zap.Duration("ms", time.Since(start)))
		return "", false, fmt.Errorf("чтение ключа %s: %w", key, err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Store: Медленная операция", zap.String("key", key), zap.Duration("ms", time.Since(start)))
	}
	return value, true, nil
}

func (s *Store) SetItem(ctx context.Context, key, value string) error {
	start := time.Now()

	query := `INSERT INTO kv_items (key, value, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO UPDATE
				SET value = EXCLUDED.value,
				updated_at = NOW()`

	if _, err := s.pool.Exec(ctx, query, key, value); err != nil {
		logger.Error("Store: Запись ключа", err, zap.String("key", key), zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("запись ключа %s: %w", key, err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Store: Медленная операция", zap.String("key", key), zap.Duration("ms", time.Since(start)))
	}
	return nil
}
