package storage

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("хранилище закрыто")

// Store - строковое key-value хранилище без транзакций, атомарна только запись одного ключа
type Store interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	Close() error
}

type Type string

const TypeMemory Type = "memory"
const TypeSQLite Type = "sqlite"
const TypePostgres Type = "postgres"
const TypeMongo Type = "mongo"
