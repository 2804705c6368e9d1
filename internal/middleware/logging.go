package middleware

import (
	"net/http"
	"strings"
	"time"
	"todoKeeper/internal/logger"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// statusRecorder запоминает код и размер ответа
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status != 0 {
		return
	}
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.WriteHeader(http.StatusOK)
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// Logging пишет одну строку на запрос: ресурс, маршрут, id сущности и итог.
// Чтение логируется на Debug, изменение задач и папок на Info.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		fields := []zap.Field{
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("resource", resourceOf(r.URL.Path)),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("ms", time.Since(start)),
		}
		// маршрут известен только после того, как chi разобрал путь
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				fields = append(fields, zap.String("route", pattern))
			}
			if id := rctx.URLParam("id"); id != "" {
				fields = append(fields, zap.String("entity_id", id))
			}
		}

		logger.Log(levelFor(r.Method, rec.status), "API: "+outcome(rec.status), fields...)
	})
}

// resourceOf - первый сегмент пути: tasks, folders, session, health
func resourceOf(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "root"
	}
	return path
}

func levelFor(method string, status int) zapcore.Level {
	switch {
	case status >= 500:
		return zap.ErrorLevel
	case status >= 400:
		return zap.WarnLevel
	case method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions:
		return zap.DebugLevel
	}
	return zap.InfoLevel
}

func outcome(status int) string {
	switch {
	case status >= 500:
		return "Сбой обработки запроса"
	case status >= 400:
		return "Запрос отклонён"
	}
	return "Запрос выполнен"
}
