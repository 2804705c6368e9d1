package breaker

import (
	"context"
	"fmt"
	"time"
	"todoKeeper/internal/logger"
	"todoKeeper/internal/storage"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type Settings struct {
	Name                string
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// Store защищает удалённое хранилище автоматом-предохранителем:
// после серии ошибок запросы сразу отклоняются до истечения Timeout
type Store struct {
	next storage.Store
	cb   *gobreaker.CircuitBreaker
}

func Wrap(next storage.Store, settings Settings) *Store {
	if settings.Name == "" {
		settings.Name = "kv-store"
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 5 * time.Second
	}
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = 3
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Store: Смена состояния предохранителя",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Store{next: next, cb: cb}
}

type getResult struct {
	value string
	ok    bool
}

func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	res, err := s.cb.Execute(func() (interface{}, error) {
		value, ok, err := s.next.GetItem(ctx, key)
		return getResult{value: value, ok: ok}, err
	})
	if err != nil {
		return "", false, fmt.Errorf("предохранитель %s: %w", s.cb.Name(), err)
	}
	r := res.(getResult)
	return r.value, r.ok, nil
}

func (s *Store) SetItem(ctx context.Context, key, value string) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.next.SetItem(ctx, key, value)
	})
	if err != nil {
		return fmt.Errorf("предохранитель %s: %w", s.cb.Name(), err)
	}
	return nil
}

func (s *Store) State() gobreaker.State {
	return s.cb.State()
}

func (s *Store) Close() error {
	return s.next.Close()
}
