package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vitalis/turnos/pkg/logger"
)

// RequestIDHeader заголовок с идентификатором запроса
const RequestIDHeader = "X-Request-ID"

// RequestLogger присваивает запросу идентификатор и логирует начало и конец обработки
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := r.Header.Get(RequestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, reqID)

			ctx := logger.ContextWithRequestID(r.Context(), reqID)
			r = r.WithContext(ctx)
			reqLog := log.WithContext(ctx)

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			reqLog.Debug("HTTP request started",
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.String("remote_ip", RemoteHost(r)),
				logger.String("user_agent", r.UserAgent()),
			)

			next.ServeHTTP(wrapped, r)

			reqLog.Info("HTTP request completed",
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Int("status_code", wrapped.statusCode),
				logger.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

// SecurityHeaders добавляет заголовки безопасности
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}
