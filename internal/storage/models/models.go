package models

import (
	"time"

	"github.com/region23/calendar/internal/calendar"
)

// Session состояние календаря одного чата. Хранит только UI состояние:
// черновики форм, окно дат и id сообщения с клавиатурой.
type Session struct {
	ChatID    int64          `json:"chat_id" db:"chat_id"`
	MessageID int            `json:"message_id" db:"message_id"`
	State     calendar.State `json:"state" db:"state"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// HasMessage проверяет, отправлено ли уже сообщение с календарем
func (s *Session) HasMessage() bool {
	return s.MessageID != 0
}

// IdleSince возвращает время простоя сессии на момент now
func (s *Session) IdleSince(now time.Time) time.Duration {
	return now.Sub(s.UpdatedAt)
}
