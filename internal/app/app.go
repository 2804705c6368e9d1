package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"todoKeeper/internal/config"
	"todoKeeper/internal/handlers"
	"todoKeeper/internal/logger"
	"todoKeeper/internal/models/folder"
	"todoKeeper/internal/models/task"
	"todoKeeper/internal/persist"
	"todoKeeper/internal/repository/folders"
	"todoKeeper/internal/repository/tasks"
	"todoKeeper/internal/service"
	"todoKeeper/internal/storage"
	"todoKeeper/internal/worker"

	"go.uber.org/zap"
)

type App struct {
	config      *config.Config
	store       storage.Store
	coordinator *service.Coordinator
	handler     http.Handler
	server      *http.Server
	worker      *worker.OverdueWorker
	shutdowns   []func() // выполняются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

// Init поднимает логгер, хранилище, репозитории и координатор
func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(logger.Options{
		Development: a.config.Logging.Development,
		Level:       a.config.Logging.Level,
		File:        a.config.Logging.File,
	}); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: Завершение работы логгирования...")
		logger.Sync()
	})

	store, err := OpenStore(ctx, a.config.Storage)
	if err != nil {
		a.Shutdown()
		return nil, err
	}
	a.store = store

	a.shutdowns = append(a.shutdowns, func() {
		if err := a.store.Close(); err != nil {
			logger.Error("App: Ошибка закрытия хранилища", err)
		}
	})

	opts := persist.Options{Debounce: a.config.Persistence.Debounce}
	taskData := persist.Load(ctx, store, a.config.Persistence.TasksKey, []task.Task{}, opts)
	folderData := persist.Load(ctx, store, a.config.Persistence.FoldersKey, []folder.Folder{}, opts)

	a.coordinator = service.NewCoordinator(tasks.New(taskData), folders.New(folderData))

	// отложенные записи должны уйти до закрытия хранилища
	a.shutdowns = append(a.shutdowns, func() {
		if err := a.coordinator.Flush(); err != nil {
			logger.Error("App: Не удалось сохранить изменения", err)
		}
	})

	if err := a.coordinator.PersistenceErrors(); err != nil {
		logger.Warn("App: Данные загружены с ошибками, используются значения по умолчанию", zap.Error(err))
	}

	logger.Info("App: Инициализация завершена",
		zap.String("storage", a.config.Storage.Type),
		zap.Int("tasks", len(a.coordinator.Tasks())),
		zap.Int("folders", len(a.coordinator.Folders())))

	return a, nil
}

// InitHTTP собирает роутер, сервер и фоновую проверку сроков
func (a *App) InitHTTP() *App {
	h := handlers.NewHandler(a.coordinator)
	a.handler = handlers.NewRouter(h, handlers.RouterOptions{
		AllowedOrigins: a.config.Server.AllowedOrigins,
		RateLimit:      a.config.Server.RateLimit,
	})

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if a.config.Worker.Enabled {
		a.worker = worker.NewOverdueWorker(a.coordinator, a.config.Worker.Interval)
	}
	return a
}

func (a *App) Coordinator() *service.Coordinator {
	return a.coordinator
}

func (a *App) Handler() http.Handler {
	return a.handler
}

// Run блокируется до отмены ctx или ошибки сервера
func (a *App) Run(ctx context.Context) error {
	if a.server == nil {
		return errors.New("HTTP не инициализирован")
	}

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	if a.worker != nil {
		go a.worker.Start(workerCtx)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("App: Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("сервер: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("App: Остановка сервера")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("остановка сервера: %w", err)
	}
	return nil
}

// Shutdown сохраняет изменения, закрывает хранилище и логгер
func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
