package scheduler

import (
	"context"
	"time"

	"github.com/region23/calendar/internal/storage/models"
)

// SessionExpirer планирует удаление неактивных сессий календаря
type SessionExpirer interface {
	// Touch переносит истечение сессии на expireAt
	Touch(ctx context.Context, chatID int64, expireAt time.Time) error

	// Cancel отменяет запланированное истечение
	Cancel(ctx context.Context, chatID int64) error

	// ReschedulePending восстанавливает таймеры для сохраненных сессий
	ReschedulePending(ctx context.Context, sessions SessionLister, ttl time.Duration) error

	// Start запускает планировщик
	Start(ctx context.Context) error

	// Stop останавливает планировщик
	Stop() error
}

// ExpiryHandler обрабатывает истечение сессии
type ExpiryHandler interface {
	// ExpireSession удаляет сессию и сообщает пользователю о потере черновиков
	ExpireSession(ctx context.Context, chatID int64) error
}

// SessionLister источник сохраненных сессий
type SessionLister interface {
	ListSessions(ctx context.Context) ([]*models.Session, error)
}
