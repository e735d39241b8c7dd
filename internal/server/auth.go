package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/region23/calendar/internal/middleware"
	"github.com/region23/calendar/pkg/logger"
	"github.com/region23/calendar/pkg/metrics"
)

// SecretTokenHeader заголовок, в котором Telegram передает секрет webhook
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// webhookAuthMiddleware проверяет секрет webhook, если он задан в конфигурации
func (s *Server) webhookAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.verifySecretToken(r) {
			metrics.RecordError("webhook", "unauthorized")
			s.logger.Warn("Invalid webhook secret token",
				logger.String("remote_addr", middleware.ClientIP(r)),
				logger.String("user_agent", r.UserAgent()),
			)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// verifySecretToken сравнивает заголовок с секретом за постоянное время
func (s *Server) verifySecretToken(r *http.Request) bool {
	secret := s.config.Telegram.SecretToken
	if secret == "" {
		return true
	}

	got := r.Header.Get(SecretTokenHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(secret)) == 1
}
