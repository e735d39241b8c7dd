package calendar

import (
	"strings"
	"time"

	"github.com/region23/calendar/pkg/errors"
)

// Поля формы закрытия, которые может отклонить валидация
const (
	FieldResource = "resource"
	FieldReason   = "reason"
	FieldRange    = "range"
)

// ClosureRequest состояние формы "дни закрытия" для одного ресурса.
// Key ключ идемпотентности черновика: повторная отправка той же формы
// приходит в сервис бронирования с тем же ключом.
type ClosureRequest struct {
	Resource string    `json:"resource"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Reason   string    `json:"reason"`
	Key      string    `json:"key,omitempty"`
}

// NewClosureRequest создает черновик формы со значениями по умолчанию
func NewClosureRequest(resource string, now time.Time) ClosureRequest {
	return ClosureRequest{
		Resource: resource,
		Start:    Day(now),
		End:      Day(now),
	}
}

// Range возвращает период закрытия
func (c ClosureRequest) Range() DateRange {
	return NewDateRange(c.Start, c.End)
}

// Validate проверяет форму перед отправкой. Прошедшие даты допустимы.
// Возвращает ErrValidation, в контексте которого список отклоненных полей.
func (c ClosureRequest) Validate() error {
	var fields []string

	if strings.TrimSpace(c.Resource) == "" {
		fields = append(fields, FieldResource)
	}
	if strings.TrimSpace(c.Reason) == "" {
		fields = append(fields, FieldReason)
	}
	if c.Start.IsZero() || c.End.IsZero() || DaysBetween(c.Start, c.End) < 0 {
		fields = append(fields, FieldRange)
	}

	if len(fields) > 0 {
		return errors.ErrValidation.WithContext(fields)
	}
	return nil
}

// InvalidFields извлекает список полей из ошибки валидации
func InvalidFields(err error) []string {
	ce, ok := errors.GetCalendarError(err)
	if !ok || ce.Code != errors.ErrValidation.Code {
		return nil
	}
	fields, _ := ce.Context.([]string)
	return fields
}
