package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"todoKeeper/internal/logger"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Store - локальный файл SQLite вместо localStorage браузера
type Store struct {
	db *sql.DB
}

func New(ctx context.Context, dbPath string) (*Store, error) {
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("домашний каталог: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("создание каталога: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("открытие sqlite: %w", err)
	}
	// одна запись за раз, sqlite не любит конкурентных писателей
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("миграция sqlite: %w", err)
	}

	logger.Info("Store: SQLite открыт", zap.String("path", dbPath))
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS kv_items (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_items WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("чтение ключа %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) SetItem(ctx context.Context, key, value string) error {
	start := time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_items (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("запись ключа %s: %w", key, err)
	}

	logger.Debug("Store: SQLite запись", zap.String("key", key), zap.Duration("ms", time.Since(start)))
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
