package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
	"todoKeeper/internal/logger"
	"todoKeeper/internal/storage"

	"go.uber.org/zap"
)

const DefaultDebounce = 500 * time.Millisecond

type Options struct {
	// 0 - DefaultDebounce
	Debounce  time.Duration
	AfterFunc AfterFunc
}

// Adapter держит значение одного ключа в памяти и отложенно сохраняет его в Store.
// Чтение сразу видит последнее значение, запись в хранилище объединяется debouncer'ом.
// Значение, отданное Value, нельзя менять на месте - только через Set/Update.
type Adapter[T any] struct {
	key       string
	store     storage.Store
	debouncer *Debouncer

	mtx   sync.RWMutex
	value T
	err   error
}

// Load читает ключ из хранилища. При отсутствии ключа или ошибке чтения/разбора
// возвращается адаптер со значением def, ошибка доступна через Err.
func Load[T any](ctx context.Context, store storage.Store, key string, def T, opts Options) *Adapter[T] {
	delay := opts.Debounce
	if delay == 0 {
		delay = DefaultDebounce
	}

	a := &Adapter[T]{
		key:       key,
		store:     store,
		debouncer: NewDebouncer(delay, opts.AfterFunc),
		value:     def,
	}

	raw, ok, err := store.GetItem(ctx, key)
	if err != nil {
		logger.Error("Store: Ошибка чтения ключа", err, zap.String("key", key))
		a.err = fmt.Errorf("чтение %s: %w", key, err)
		return a
	}
	if !ok || raw == "" {
		return a
	}

	var parsed T
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		logger.Error("Store: Повреждённые данные, используется значение по умолчанию", err, zap.String("key", key))
		a.err = fmt.Errorf("разбор %s: %w", key, err)
		return a
	}

	a.value = parsed
	logger.Debug("Store: Ключ загружен", zap.String("key", key), zap.Int("bytes", len(raw)))
	return a
}

func (a *Adapter[T]) Key() string {
	return a.key
}

func (a *Adapter[T]) Value() T {
	a.mtx.RLock()
	defer a.mtx.RUnlock()
	return a.value
}

// Err - последняя ошибка чтения или записи, nil после успешной записи
func (a *Adapter[T]) Err() error {
	a.mtx.RLock()
	defer a.mtx.RUnlock()
	return a.err
}

func (a *Adapter[T]) Set(value T) {
	a.mtx.Lock()
	a.value = value
	a.mtx.Unlock()

	a.debouncer.Schedule(a.persist)
}

// Update атомарно вычисляет новое значение из текущего.
// fn не должна менять переданное значение на месте; changed=false - запись не планируется.
func (a *Adapter[T]) Update(fn func(current T) (next T, changed bool)) bool {
	a.mtx.Lock()
	next, changed := fn(a.value)
	if changed {
		a.value = next
	}
	a.mtx.Unlock()

	if changed {
		a.debouncer.Schedule(a.persist)
	}
	return changed
}

// Flush немедленно выполняет отложенную запись, дожидается начатых
// и возвращает результат последней
func (a *Adapter[T]) Flush() error {
	if !a.debouncer.Flush() {
		return nil
	}
	return a.Err()
}

func (a *Adapter[T]) Pending() bool {
	return a.debouncer.Pending()
}

// пишется текущее значение на момент срабатывания, а не на момент Set.
// Debouncer не запускает persist параллельно, поэтому последней в хранилище
// оказывается самая свежая запись.
func (a *Adapter[T]) persist() {
	start := time.Now()
	value := a.Value()

	data, err := json.Marshal(value)
	if err != nil {
		logger.Error("Store: Ошибка сериализации", err, zap.String("key", a.key))
		a.setErr(fmt.Errorf("сериализация %s: %w", a.key, err))
		return
	}

	if err := a.store.SetItem(context.Background(), a.key, string(data)); err != nil {
		logger.Error("Store: Ошибка записи", err, zap.String("key", a.key))
		a.setErr(fmt.Errorf("запись %s: %w", a.key, err))
		return
	}

	a.setErr(nil)
	logger.Debug("Store: Ключ сохранён",
		zap.String("key", a.key),
		zap.Int("bytes", len(data)),
		zap.Duration("ms", time.Since(start)))
}

func (a *Adapter[T]) setErr(err error) {
	a.mtx.Lock()
	a.err = err
	a.mtx.Unlock()
}
