package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
	"todoKeeper/internal/logger"

	"go.uber.org/zap"
)

const CodeRateLimited = "RATE_LIMITED"

// window - счётчик запросов клиента в текущей минуте
type window struct {
	used    int
	resetAt time.Time
}

// limiter - фиксированное окно на адрес клиента
type limiter struct {
	mtx       sync.Mutex
	limit     int
	period    time.Duration
	clients   map[string]*window
	nextSweep time.Time
}

func newLimiter(limit int, period time.Duration) *limiter {
	return &limiter{limit: limit, period: period, clients: make(map[string]*window)}
}

// take расходует один запрос из окна клиента; ok=false - окно исчерпано
func (l *limiter) take(client string, now time.Time) (left int, resetAt time.Time, ok bool) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	l.sweep(now)

	win := l.clients[client]
	if win == nil || !now.Before(win.resetAt) {
		win = &window{resetAt: now.Add(l.period)}
		l.clients[client] = win
	}
	if win.used >= l.limit {
		return 0, win.resetAt, false
	}
	win.used++
	return l.limit - win.used, win.resetAt, true
}

// истёкшие окна выбрасываются не чаще раза в период
func (l *limiter) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for client, win := range l.clients {
		if !now.Before(win.resetAt) {
			delete(l.clients, client)
		}
	}
	l.nextSweep = now.Add(l.period)
}

// RateLimit ограничивает число запросов в минуту с одного адреса.
// Проверка здоровья в лимит не входит.
func RateLimit(rpm int) func(http.Handler) http.Handler {
	l := newLimiter(rpm, time.Minute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			now := time.Now()
			client := clientAddr(r)
			left, resetAt, ok := l.take(client, now)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rpm))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(left))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if !ok {
				rejectRateLimited(w, r, client, resetAt.Sub(now))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ответ в том же виде, что и бизнес-ошибки API
func rejectRateLimited(w http.ResponseWriter, r *http.Request, client string, wait time.Duration) {
	retryAfter := int(wait.Round(time.Second) / time.Second)
	if retryAfter < 1 {
		retryAfter = 1
	}

	logger.Warn("API: Превышен лимит запросов",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.String("client", client),
		zap.Int("retry_after", retryAfter))

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"error":   CodeRateLimited,
		"message": "Слишком много запросов, повторите позже",
		"details": map[string]any{"retryAfter": retryAfter},
	}); err != nil {
		logger.Error("API: Ошибка записи ответа", err)
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
