package calendar

import (
	"time"

	"github.com/region23/calendar/pkg/errors"
)

// PresetID идентификатор быстрого фильтра
type PresetID string

const (
	PresetToday     PresetID = "today"
	PresetThisWeek  PresetID = "week"
	PresetThisMonth PresetID = "month"
)

// Presets порядок отображения быстрых фильтров
var Presets = []PresetID{PresetToday, PresetThisWeek, PresetThisMonth}

// Today: начало и конец окна совпадают с текущим моментом.
// Время суток сохраняется, от него зависит отмеченный час.
func Today(now time.Time) DateRange {
	return DateRange{Start: now, End: now}
}

// ThisWeek возвращает неделю, начинающуюся в последний weekStart не позже now
func ThisWeek(now time.Time, weekStart time.Weekday) DateRange {
	offset := (int(now.Weekday()) - int(weekStart) + 7) % 7
	start := now.AddDate(0, 0, -offset)
	return DateRange{Start: start, End: start.AddDate(0, 0, 6)}
}

// ThisMonth возвращает окно с первого по последний день текущего месяца
func ThisMonth(now time.Time) DateRange {
	y, m, _ := now.Date()
	h, mi, s := now.Clock()
	start := time.Date(y, m, 1, h, mi, s, now.Nanosecond(), now.Location())
	// нулевой день следующего месяца: последний день текущего
	end := time.Date(y, m+1, 0, h, mi, s, now.Nanosecond(), now.Location())
	return DateRange{Start: start, End: end}
}

// ResolvePreset вычисляет окно быстрого фильтра по идентификатору
func ResolvePreset(id PresetID, now time.Time, weekStart time.Weekday) (DateRange, error) {
	switch id {
	case PresetToday:
		return Today(now), nil
	case PresetThisWeek:
		return ThisWeek(now, weekStart), nil
	case PresetThisMonth:
		return ThisMonth(now), nil
	default:
		return DateRange{}, errors.ErrUnknownPreset.WithContext(string(id))
	}
}
