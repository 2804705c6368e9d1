package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// CORS разрешает браузерному клиенту с указанных адресов ходить в API
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", HeaderRequestID},
		ExposedHeaders:   []string{HeaderRequestID, "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// Tracing оборачивает запрос в span OpenTelemetry
func Tracing(operation string) func(http.Handler) http.Handler {
	return otelhttp.NewMiddleware(operation)
}
