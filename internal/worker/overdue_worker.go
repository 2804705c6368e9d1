package worker

import (
	"context"
	"sync"
	"time"
	"todoKeeper/internal/logger"
	"todoKeeper/internal/models/task"

	"go.uber.org/zap"
)

const DefaultInterval = time.Minute

// OverdueSource - то, что умеет отдавать просроченные задачи
type OverdueSource interface {
	Overdue(now time.Time) []task.Task
}

type OverdueWorker struct {
	source   OverdueSource
	interval time.Duration
	now      func() time.Time
	notify   func(task.Task)

	mtx      sync.Mutex
	reported map[string]struct{}
}

type Option func(*OverdueWorker)

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) Option {
	return func(w *OverdueWorker) {
		w.now = now
	}
}

// WithNotify вызывается один раз для каждой задачи, ставшей просроченной
func WithNotify(fn func(task.Task)) Option {
	return func(w *OverdueWorker) {
		w.notify = fn
	}
}

func NewOverdueWorker(source OverdueSource, interval time.Duration, options ...Option) *OverdueWorker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	w := &OverdueWorker{
		source:   source,
		interval: interval,
		now:      time.Now,
		reported: make(map[string]struct{}),
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *OverdueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Check(ctx)
	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая проверка останавливается")
			return
		}
	}
}

// Check возвращает задачи, ставшие просроченными с прошлой проверки
func (w *OverdueWorker) Check(ctx context.Context) []task.Task {
	if ctx.Err() != nil {
		return nil
	}
	start := w.now()
	overdue := w.source.Overdue(start)

	w.mtx.Lock()
	current := make(map[string]struct{}, len(overdue))
	var fresh []task.Task
	for _, t := range overdue {
		current[t.ID] = struct{}{}
		if _, seen := w.reported[t.ID]; !seen {
			fresh = append(fresh, t)
		}
	}
	// выполненные, удалённые и перенесённые задачи забываются
	w.reported = current
	w.mtx.Unlock()

	for _, t := range fresh {
		logger.Warn("Worker: Задача просрочена",
			zap.String("task_id", t.ID),
			zap.String("text", t.Text),
			zap.Time("due_date", *t.DueDate),
		)
		if w.notify != nil {
			w.notify(t)
		}
	}

	logger.Debug(
		"Worker: Завершение проверки задач",
		zap.Duration("ms", time.Since(start)),
		zap.Int("overdue", len(overdue)),
		zap.Int("new", len(fresh)),
	)
	return fresh
}
