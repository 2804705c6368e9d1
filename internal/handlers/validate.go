package handlers

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"
	"time"
	"todoKeeper/internal/logger"
	"todoKeeper/internal/models/task"

	"go.uber.org/zap"
)

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// decodeJSON проверяет Content-Type и читает тело; при ошибке ответ уже записан
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return false
	}

	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warn("HTTP: Ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return false
	}
	return true
}

// parseDueDate: пустая строка снимает срок, нераспознанная дата - ошибка
func parseDueDate(raw *string) (*time.Time, bool) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, true
	}
	due := task.ReviveDate(*raw)
	return due, due != nil
}
