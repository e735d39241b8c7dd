// Package calendar содержит модель окна дат и выбора слотов календаря ресурса.
// Все функции пакета чистые: состояние передается и возвращается по значению.
package calendar

import (
	"time"

	"github.com/region23/calendar/pkg/errors"
)

const (
	// HoursPerDay размер часовой оси сетки
	HoursPerDay = 24

	// MaxWindowDays ограничивает число дней в окне
	MaxWindowDays = 366

	// DateLayout формат дат в callback данных, API и хранилище
	DateLayout = "2006-01-02"
)

// DateRange включительные границы видимого окна
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange создает окно из двух моментов, приводя их к началу дня
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: Day(start), End: Day(end)}
}

// Day приводит момент к полуночи того же календарного дня
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay сообщает, относятся ли моменты к одному календарному дню
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DaysBetween возвращает число целых календарных дней от a до b.
// Считается по гражданским датам, поэтому переходы на летнее время не влияют.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ca := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	cb := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(cb.Sub(ca) / (24 * time.Hour))
}

// Days возвращает количество дней в окне или ошибку для перевернутого окна
func (r DateRange) Days() (int, error) {
	n := DaysBetween(r.Start, r.End)
	if n < 0 {
		return 0, errors.ErrInvalidRange.WithContext(map[string]string{
			"start": r.Start.Format(DateLayout),
			"end":   r.End.Format(DateLayout),
		})
	}
	return n + 1, nil
}

// Contains сообщает, попадает ли день в окно
func (r DateRange) Contains(t time.Time) bool {
	return DaysBetween(r.Start, t) >= 0 && DaysBetween(t, r.End) >= 0
}

// Validate проверяет порядок границ и длину окна
func (r DateRange) Validate() error {
	n, err := r.Days()
	if err != nil {
		return err
	}
	if n > MaxWindowDays {
		return errors.ErrRangeTooLong.WithContext(map[string]int{
			"days": n,
			"max":  MaxWindowDays,
		})
	}
	return nil
}

// DatesInRange возвращает дни от start до end включительно.
// Число дней вычисляется заранее: перевернутое окно дает ErrInvalidRange,
// слишком длинное: ErrRangeTooLong.
func DatesInRange(start, end time.Time) ([]time.Time, error) {
	r := NewDateRange(start, end)
	if err := r.Validate(); err != nil {
		return nil, err
	}

	n, _ := r.Days()
	dates := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, r.Start.AddDate(0, 0, i))
	}
	return dates, nil
}

// ShiftWindow сдвигает обе границы на deltaDays дней, сохраняя длину окна
func ShiftWindow(r DateRange, deltaDays int) DateRange {
	return DateRange{
		Start: r.Start.AddDate(0, 0, deltaDays),
		End:   r.End.AddDate(0, 0, deltaDays),
	}
}

// Hours возвращает фиксированную часовую ось 0..23
func Hours() []int {
	hours := make([]int, HoursPerDay)
	for i := range hours {
		hours[i] = i
	}
	return hours
}
