package storage

import (
	"context"
	"time"

	"github.com/region23/calendar/internal/storage/models"
)

// SessionRepository хранит состояние календаря каждого чата
type SessionRepository interface {
	// GetSession возвращает сессию чата; false, если сессии нет
	GetSession(ctx context.Context, chatID int64) (*models.Session, bool, error)
	SaveSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, chatID int64) error
	ListSessions(ctx context.Context) ([]*models.Session, error)
	DeleteIdleSessions(ctx context.Context, before time.Time) (int64, error)
	CountSessions(ctx context.Context) (int, error)
}

// Storage объединяет репозитории в единый интерфейс
type Storage interface {
	SessionRepository
	Close() error
	Ping(ctx context.Context) error
}
