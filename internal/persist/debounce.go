package persist

import (
	"sync"
	"time"
)

// Timer - отложенный вызов, который можно отменить
type Timer interface {
	Stop() bool
}

// AfterFunc планирует f через d; по умолчанию time.AfterFunc
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer хранит не более одной отложенной записи.
// Новый Schedule отменяет предыдущую и перезапускает отсчёт.
// Запуски fn никогда не пересекаются: каждый следующий начинается после завершения предыдущего.
type Debouncer struct {
	mtx     sync.Mutex
	delay   time.Duration
	after   AfterFunc
	pending Timer
	fn      func()
	gen     uint64

	runMtx  sync.Mutex
	running int // снятые с ожидания, но ещё не завершённые запуски
	idle    *sync.Cond
}

func NewDebouncer(delay time.Duration, after AfterFunc) *Debouncer {
	if after == nil {
		after = realAfterFunc
	}
	d := &Debouncer{delay: delay, after: after}
	d.idle = sync.NewCond(&d.mtx)
	return d
}

func (d *Debouncer) Schedule(fn func()) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.pending != nil {
		d.pending.Stop()
	}
	d.gen++
	gen := d.gen
	d.fn = fn
	d.pending = d.after(d.delay, func() {
		d.fire(gen)
	})
}

func (d *Debouncer) fire(gen uint64) {
	d.mtx.Lock()
	// таймер мог сработать одновременно со Stop - устаревший запуск пропускаем
	if gen != d.gen || d.fn == nil {
		d.mtx.Unlock()
		return
	}
	fn := d.take()
	d.mtx.Unlock()

	d.run(fn)
}

// Flush выполняет отложенную запись немедленно и дожидается уже начатых.
// Возвращает false, если ждать было нечего.
func (d *Debouncer) Flush() bool {
	d.mtx.Lock()
	var fn func()
	if d.fn != nil {
		if d.pending != nil {
			d.pending.Stop()
		}
		d.gen++
		fn = d.take()
	}
	waited := fn != nil || d.running > 0
	d.mtx.Unlock()

	if fn != nil {
		d.run(fn)
	}

	d.mtx.Lock()
	for d.running > 0 {
		d.idle.Wait()
	}
	d.mtx.Unlock()
	return waited
}

// take вызывается под mtx
func (d *Debouncer) take() func() {
	fn := d.fn
	d.fn = nil
	d.pending = nil
	d.running++
	return fn
}

func (d *Debouncer) run(fn func()) {
	d.runMtx.Lock()
	fn()
	d.runMtx.Unlock()

	d.mtx.Lock()
	d.running--
	if d.running == 0 {
		d.idle.Broadcast()
	}
	d.mtx.Unlock()
}

func (d *Debouncer) Pending() bool {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	return d.fn != nil
}
