// Package booking отправляет закрытия ресурса во внешний сервис бронирования.
// Закрытия локально не хранятся.
package booking

import (
	"context"
	"time"

	"github.com/region23/calendar/internal/calendar"
)

// Статусы квитанции
const (
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Receipt ответ сервиса на принятое закрытие
type Receipt struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// ClosureBackend сервис бронирования, принимающий закрытия
type ClosureBackend interface {
	// SubmitClosure вызывается ровно один раз на каждую отправку формы
	SubmitClosure(ctx context.Context, req calendar.ClosureRequest) (Receipt, error)
}
