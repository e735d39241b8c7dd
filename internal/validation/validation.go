package validation

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/region23/calendar/internal/calendar"
	"github.com/region23/calendar/pkg/errors"
)

// MaxReasonLength ограничение длины причины закрытия в символах
const MaxReasonLength = 200

var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateDate валидирует дату в формате YYYY-MM-DD. Прошедшие даты допустимы.
func ValidateDate(dateStr string, loc *time.Location) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, errors.ErrInvalidDate.WithContext("дата не может быть пустой")
	}

	if !dateRegex.MatchString(dateStr) {
		return time.Time{}, errors.ErrInvalidDate.WithContext(map[string]interface{}{
			"date":   dateStr,
			"reason": "дата должна быть в формате YYYY-MM-DD",
		})
	}

	if loc == nil {
		loc = time.Local
	}
	date, err := time.ParseInLocation(calendar.DateLayout, dateStr, loc)
	if err != nil {
		return time.Time{}, errors.ErrInvalidDate.WithError(err).WithContext(map[string]interface{}{
			"date": dateStr,
		})
	}

	return date, nil
}

// ValidateDateRange разбирает обе границы и проверяет окно
func ValidateDateRange(startStr, endStr string, loc *time.Location) (calendar.DateRange, error) {
	start, err := ValidateDate(startStr, loc)
	if err != nil {
		return calendar.DateRange{}, err
	}
	end, err := ValidateDate(endStr, loc)
	if err != nil {
		return calendar.DateRange{}, err
	}

	r := calendar.NewDateRange(start, end)
	if err := r.Validate(); err != nil {
		return calendar.DateRange{}, err
	}
	return r, nil
}

// ValidateHour валидирует час ячейки 0..23
func ValidateHour(hourStr string) (int, error) {
	hour, err := strconv.Atoi(strings.TrimSpace(hourStr))
	if err != nil {
		return 0, errors.ErrInvalidHour.WithError(err).WithContext(map[string]interface{}{
			"input": hourStr,
		})
	}

	if hour < 0 || hour >= calendar.HoursPerDay {
		return 0, errors.ErrInvalidHour.WithContext(map[string]interface{}{
			"input": hourStr,
		})
	}

	return hour, nil
}

// ValidateResource проверяет, что ресурс есть в списке
func ValidateResource(resource string, allowed []string) error {
	if resource == "" {
		return errors.ErrInvalidResource.WithContext("ресурс не может быть пустым")
	}

	for _, r := range allowed {
		if r == resource {
			return nil
		}
	}

	return errors.ErrInvalidResource.WithContext(map[string]interface{}{
		"resource": resource,
		"allowed":  allowed,
	})
}

// ResourceByIndex возвращает ресурс по номеру из callback данных
func ResourceByIndex(idxStr string, allowed []string) (string, error) {
	idx, err := strconv.Atoi(idxStr)
	if err != nil || idx < 0 || idx >= len(allowed) {
		return "", errors.ErrInvalidResource.WithContext(map[string]interface{}{
			"index": idxStr,
		})
	}
	return allowed[idx], nil
}

// ValidateReason проверяет длину причины закрытия. Пустая причина
// отклоняется при отправке формы, а не при вводе.
func ValidateReason(reason string) error {
	if utf8.RuneCountInString(reason) > MaxReasonLength {
		return errors.ErrValidation.WithContext([]string{calendar.FieldReason})
	}
	return nil
}

// ValidatePreset проверяет идентификатор пресета фильтра
func ValidatePreset(id string) (calendar.PresetID, error) {
	for _, p := range calendar.Presets {
		if string(p) == id {
			return p, nil
		}
	}
	return "", errors.ErrUnknownPreset.WithContext(id)
}

// ValidateChatID валидирует Telegram Chat ID
func ValidateChatID(chatID int64) error {
	if chatID == 0 {
		return errors.New("INVALID_CHAT_ID", "chat id must not be zero")
	}

	// отрицательные id принадлежат группам
	return nil
}
