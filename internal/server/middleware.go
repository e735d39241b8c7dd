package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/region23/calendar/internal/middleware"
	"github.com/region23/calendar/pkg/logger"
)

// loggingMiddleware логирует HTTP запросы
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriterWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		fields := []logger.Field{
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status_code", wrapped.statusCode),
			logger.Duration("duration", time.Since(start)),
			logger.String("remote_addr", middleware.ClientIP(r)),
		}

		// /health и /metrics опрашиваются часто
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			s.logger.Debug("HTTP request completed", fields...)
			return
		}
		if wrapped.statusCode >= http.StatusInternalServerError {
			s.logger.Error("HTTP request failed", fields...)
			return
		}
		s.logger.Info("HTTP request completed", fields...)
	})
}

// securityHeadersMiddleware добавляет заголовки безопасности
func (s *Server) securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")

		next.ServeHTTP(w, r)
	})
}

// requestValidationMiddleware отклоняет слишком большие запросы и POST без JSON
func (s *Server) requestValidationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > maxBodyBytes {
			s.logger.Warn("Request too large",
				logger.Int64("content_length", r.ContentLength),
				logger.String("remote_addr", middleware.ClientIP(r)),
			)
			http.Error(w, "Request too large", http.StatusRequestEntityTooLarge)
			return
		}

		if r.Method == http.MethodPost {
			contentType := r.Header.Get("Content-Type")
			if !strings.HasPrefix(contentType, "application/json") {
				s.logger.Warn("Unsupported Content-Type",
					logger.String("path", r.URL.Path),
					logger.String("content_type", contentType),
				)
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// responseWriterWrapper оборачивает ResponseWriter для захвата status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader перехватывает status code
func (rw *responseWriterWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
