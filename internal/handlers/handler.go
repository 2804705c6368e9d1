package handlers

import (
	"net/http"
	"time"
	"todoKeeper/internal/logger"

	"go.uber.org/zap"
)

type Handler struct {
	Service Service
	now     func() time.Time
}

type Option func(*Handler)

// WithClock нужен для вычисления isOverdue в тестах
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

func NewHandler(svc Service, options ...Option) *Handler {
	h := &Handler{
		Service: svc,
		now:     time.Now,
	}
	for _, opt := range options {
		opt(h)
	}
	return h
}

// HealthCheck сообщает о последних ошибках хранилища
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.Service.PersistenceErrors(); err != nil {
		logger.Warn("HTTP: Хранилище недоступно", zap.Error(err))
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "degraded"),
			toPayload("service", "todo-keeper"),
			toPayload("error", err.Error()),
		)
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", "todo-keeper"),
	)
}
