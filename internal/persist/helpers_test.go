package persist_test

import (
	"context"
	"sync"
	"time"
	"todoKeeper/internal/persist"
	"todoKeeper/internal/storage/inmemory"
)

type fakeTimer struct {
	fn      func()
	delay   time.Duration
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// manualClock - таймеры срабатывают только по FireAll
type manualClock struct {
	mtx    sync.Mutex
	timers []*fakeTimer
}

func (c *manualClock) AfterFunc(d time.Duration, fn func()) persist.Timer {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	t := &fakeTimer{fn: fn, delay: d}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Active() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (c *manualClock) FireAll() {
	c.mtx.Lock()
	var ready []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			ready = append(ready, t)
		}
	}
	c.mtx.Unlock()

	for _, t := range ready {
		t.fn()
	}
}

// recordingStore считает записи и умеет отказывать
type recordingStore struct {
	*inmemory.Store
	mtx    sync.Mutex
	writes []string
	setErr error
	getErr error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Store: inmemory.NewStore()}
}

func (s *recordingStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	s.mtx.Lock()
	err := s.getErr
	s.mtx.Unlock()
	if err != nil {
		return "", false, err
	}
	return s.Store.GetItem(ctx, key)
}

func (s *recordingStore) SetItem(ctx context.Context, key, value string) error {
	s.mtx.Lock()
	err := s.setErr
	s.writes = append(s.writes, value)
	s.mtx.Unlock()
	if err != nil {
		return err
	}
	return s.Store.SetItem(ctx, key, value)
}

func (s *recordingStore) failWith(err error) {
	s.mtx.Lock()
	s.setErr = err
	s.mtx.Unlock()
}

func (s *recordingStore) Writes() []string {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return append([]string(nil), s.writes...)
}

// gatedStore задерживает первую запись до закрытия release
type gatedStore struct {
	*inmemory.Store
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		Store:   inmemory.NewStore(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *gatedStore) SetItem(ctx context.Context, key, value string) error {
	s.once.Do(func() {
		close(s.entered)
		<-s.release
	})
	return s.Store.SetItem(ctx, key, value)
}
