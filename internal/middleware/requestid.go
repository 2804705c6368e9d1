package middleware

import (
	"context"
	"net/http"
	"unicode"

	"github.com/google/uuid"
)

type ctxKey struct{}

const HeaderRequestID = "X-Request-ID"

// клиентский id длиннее этого заменяется своим
const maxRequestIDLen = 64

// RequestID берёт id из заголовка клиента или выдаёт новый.
// id возвращается в ответе и доступен дальше через GetRequestID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if !validRequestID(id) {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// id попадает в логи как есть, поэтому пропускаем только печатные символы
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, c := range id {
		if c > unicode.MaxASCII || !unicode.IsPrint(c) || c == ' ' {
			return false
		}
	}
	return true
}
