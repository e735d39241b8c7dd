package service

import (
	"time"

	"github.com/region23/calendar/internal/calendar"
	"github.com/region23/calendar/internal/view"
	"github.com/region23/calendar/pkg/errors"
)

// Операции без сессии для JSON API. Окно и выбор здесь не сохраняются.

// Days возвращает дни окна start..end включительно
func (s *Service) Days(start, end time.Time) ([]time.Time, error) {
	return calendar.DatesInRange(start, end)
}

// Preset вычисляет окно быстрого фильтра на текущий момент
func (s *Service) Preset(id calendar.PresetID) (calendar.DateRange, error) {
	return calendar.ResolvePreset(id, s.clock(), s.settings.Locale.WeekStart())
}

// Grid строит сетку для окна; отмечена ячейка начала окна в час момента start
func (s *Service) Grid(start, end time.Time) (view.Grid, error) {
	st, err := calendar.NewState(s.clock()).ApplyFilter(start, end)
	if err != nil {
		return view.Grid{}, err
	}
	return view.BuildGrid(st, s.settings.Resource, s.settings.Options, s.settings.Locale)
}

// Slot возвращает детали ячейки
func (s *Service) Slot(date time.Time, hour int) (view.Detail, error) {
	if hour < 0 || hour >= calendar.HoursPerDay {
		return view.Detail{}, errors.ErrInvalidHour.WithContext(hour)
	}
	return view.SlotDetail(calendar.Slot{Date: calendar.Day(date), Hour: hour}, s.settings.Locale), nil
}
