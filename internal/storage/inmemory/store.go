package inmemory

import (
	"context"
	"sync"
	"todoKeeper/internal/storage"
)

type Store struct {
	items  map[string]string
	mtx    *sync.RWMutex
	closed bool
}

func NewStore() *Store {
	return &Store{
		items: make(map[string]string),
		mtx:   &sync.RWMutex{},
	}
}

func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if s.closed {
		return "", false, storage.ErrClosed
	}
	value, ok := s.items[key]
	return value, ok, nil
}

func (s *Store) SetItem(ctx context.Context, key, value string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.closed {
		return storage.ErrClosed
	}
	s.items[key] = value
	return nil
}

func (s *Store) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.closed = true
	return nil
}
