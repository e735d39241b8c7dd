package errors

import "fmt"

// CalendarError представляет ошибку календаря с кодом и контекстом
type CalendarError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Err     error       `json:"-"`
	Context interface{} `json:"context,omitempty"`
}

// Error реализует интерфейс error
func (e *CalendarError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap позволяет использовать errors.Is и errors.As
func (e *CalendarError) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по коду, поэтому копии из WithContext/WithError
// совпадают с предопределенными значениями
func (e *CalendarError) Is(target error) bool {
	t, ok := target.(*CalendarError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithContext добавляет контекст к ошибке
func (e *CalendarError) WithContext(ctx interface{}) *CalendarError {
	return &CalendarError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Context: ctx,
	}
}

// WithError добавляет underlying ошибку
func (e *CalendarError) WithError(err error) *CalendarError {
	return &CalendarError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
		Context: e.Context,
	}
}

// Предопределенные ошибки
var (
	// Ошибки окна календаря
	ErrInvalidRange = &CalendarError{
		Code:    "INVALID_RANGE",
		Message: "end date is before start date",
	}

	ErrRangeTooLong = &CalendarError{
		Code:    "RANGE_TOO_LONG",
		Message: "date range exceeds the maximum window",
	}

	ErrUnknownPreset = &CalendarError{
		Code:    "UNKNOWN_PRESET",
		Message: "unknown date filter preset",
	}

	// Ошибки слотов
	ErrInvalidSlot = &CalendarError{
		Code:    "INVALID_SLOT",
		Message: "slot is outside the visible window",
	}

	ErrInvalidHour = &CalendarError{
		Code:    "INVALID_HOUR",
		Message: "hour must be between 0 and 23",
	}

	// Ошибки формы закрытия
	ErrValidation = &CalendarError{
		Code:    "VALIDATION_FAILED",
		Message: "closure request is invalid",
	}

	ErrSubmissionFailed = &CalendarError{
		Code:    "SUBMISSION_FAILED",
		Message: "booking backend rejected the closure request",
	}

	ErrDialogClosed = &CalendarError{
		Code:    "DIALOG_CLOSED",
		Message: "dialog is not open",
	}

	// Ошибки ввода
	ErrInvalidDate = &CalendarError{
		Code:    "INVALID_DATE",
		Message: "invalid date",
	}

	ErrInvalidCallback = &CalendarError{
		Code:    "INVALID_CALLBACK",
		Message: "invalid callback data",
	}

	ErrInvalidResource = &CalendarError{
		Code:    "INVALID_RESOURCE",
		Message: "unknown resource",
	}

	ErrNoPendingInput = &CalendarError{
		Code:    "NO_PENDING_INPUT",
		Message: "no input is awaited",
	}

	// Системные ошибки
	ErrSessionNotFound = &CalendarError{
		Code:    "SESSION_NOT_FOUND",
		Message: "calendar session not found",
	}

	ErrDatabaseConnection = &CalendarError{
		Code:    "DATABASE_CONNECTION",
		Message: "database connection failed",
	}

	ErrConfigurationInvalid = &CalendarError{
		Code:    "CONFIGURATION_INVALID",
		Message: "invalid configuration",
	}

	ErrTelegramAPI = &CalendarError{
		Code:    "TELEGRAM_API",
		Message: "telegram api error",
	}

	ErrSchedulerUnavailable = &CalendarError{
		Code:    "SCHEDULER_UNAVAILABLE",
		Message: "scheduler is stopped",
	}
)

// New создает новую ошибку календаря
func New(code, message string) *CalendarError {
	return &CalendarError{
		Code:    code,
		Message: message,
	}
}

// Wrap оборачивает обычную ошибку в CalendarError
func Wrap(err error, code, message string) *CalendarError {
	return &CalendarError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsCalendarError проверяет, является ли ошибка CalendarError
func IsCalendarError(err error) bool {
	_, ok := GetCalendarError(err)
	return ok
}

// GetCalendarError извлекает CalendarError из цепочки ошибок
func GetCalendarError(err error) (*CalendarError, bool) {
	for err != nil {
		if ce, ok := err.(*CalendarError); ok {
			return ce, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// HasCode сообщает, содержит ли цепочка ошибку с указанным кодом
func HasCode(err error, code string) bool {
	for err != nil {
		if ce, ok := err.(*CalendarError); ok && ce.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
