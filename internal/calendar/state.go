package calendar

import (
	"strings"
	"time"

	"github.com/region23/calendar/pkg/errors"
)

// Dialog какое модальное окно сейчас открыто
type Dialog int

const (
	DialogNone Dialog = iota
	DialogSlot
	DialogFilter
	DialogClosure
)

// String возвращает имя диалога для логов и метрик
func (d Dialog) String() string {
	switch d {
	case DialogSlot:
		return "slot"
	case DialogFilter:
		return "filter"
	case DialogClosure:
		return "closure"
	default:
		return "none"
	}
}

// InputField поле, ожидающее текстового ввода от пользователя
type InputField string

const (
	InputNone          InputField = ""
	InputFilterStart   InputField = "filter_start"
	InputFilterEnd     InputField = "filter_end"
	InputClosureStart  InputField = "closure_start"
	InputClosureEnd    InputField = "closure_end"
	InputClosureReason InputField = "closure_reason"
)

// Dialog возвращает диалог, которому принадлежит поле
func (f InputField) Dialog() Dialog {
	switch f {
	case InputFilterStart, InputFilterEnd:
		return DialogFilter
	case InputClosureStart, InputClosureEnd, InputClosureReason:
		return DialogClosure
	default:
		return DialogNone
	}
}

// IsDate сообщает, ожидает ли поле дату
func (f InputField) IsDate() bool {
	return f != InputNone && f != InputClosureReason
}

// Slot ячейка сетки: день и час
type Slot struct {
	Date time.Time `json:"date"`
	Hour int       `json:"hour"`
}

// Equal сравнивает слоты по календарному дню и часу
func (s Slot) Equal(o Slot) bool {
	return s.Hour == o.Hour && SameDay(s.Date, o.Date)
}

// State состояние контроллера календаря. Переходы: чистые функции,
// возвращающие новое состояние; исходное значение не меняется.
type State struct {
	Window   DateRange      `json:"window"`
	Marker   Slot           `json:"marker"`
	Focus    time.Time      `json:"focus"`
	Dialog   Dialog         `json:"dialog"`
	Selected Slot           `json:"selected"`
	Filter   DateRange      `json:"filter"`
	Closure  ClosureRequest `json:"closure"`
	Awaiting InputField     `json:"awaiting,omitempty"`
}

// NewState создает начальное состояние: окно "сегодня и завтра",
// отмеченная ячейка: текущий час сегодняшнего дня
func NewState(now time.Time) State {
	today := Day(now)
	return State{
		Window: DateRange{Start: today, End: today.AddDate(0, 0, 1)},
		Marker: Slot{Date: today, Hour: now.Hour()},
		Focus:  today,
	}
}

// HasSelection сообщает, открыто ли окно деталей слота
func (s State) HasSelection() bool {
	return s.Dialog == DialogSlot
}

// Days возвращает дни текущего окна
func (s State) Days() ([]time.Time, error) {
	return DatesInRange(s.Window.Start, s.Window.End)
}

// ApplyFilter заменяет окно целиком. Час начала окна становится отмеченным часом.
// Перевернутое или слишком длинное окно отклоняется, состояние не меняется.
func (s State) ApplyFilter(start, end time.Time) (State, error) {
	r := NewDateRange(start, end)
	if err := r.Validate(); err != nil {
		return s, err
	}

	s.Window = r
	s.Marker = Slot{Date: r.Start, Hour: start.Hour()}
	s.Focus = r.Start
	if s.Dialog == DialogFilter {
		s.Dialog = DialogNone
	}
	s.Awaiting = InputNone
	return s, nil
}

// Shift сдвигает окно, отмеченную ячейку и фокус на deltaDays дней
func (s State) Shift(deltaDays int) State {
	s.Window = ShiftWindow(s.Window, deltaDays)
	s.Marker.Date = s.Marker.Date.AddDate(0, 0, deltaDays)
	s.Focus = s.Focus.AddDate(0, 0, deltaDays)
	return s
}

// Previous сдвигает окно на день назад
func (s State) Previous() State {
	return s.Shift(-1)
}

// Next сдвигает окно на день вперед
func (s State) Next() State {
	return s.Shift(1)
}

// FocusDay выбирает день окна, часы которого показываются в компактной сетке
func (s State) FocusDay(day time.Time) (State, error) {
	if !s.Window.Contains(day) {
		return s, errors.ErrInvalidSlot.WithContext(day.Format(DateLayout))
	}
	s.Focus = Day(day)
	return s, nil
}

// SelectSlot переводит Idle -> SlotSelected. Доступен любой из 24 часов
// любого отображаемого дня; рабочие часы не проверяются.
func (s State) SelectSlot(date time.Time, hour int) (State, error) {
	if hour < 0 || hour >= HoursPerDay {
		return s, errors.ErrInvalidHour.WithContext(hour)
	}
	if !s.Window.Contains(date) {
		return s, errors.ErrInvalidSlot.WithContext(date.Format(DateLayout))
	}

	s.Selected = Slot{Date: Day(date), Hour: hour}
	s.Dialog = DialogSlot
	s.Awaiting = InputNone
	return s, nil
}

// CloseSlot закрывает окно деталей: SlotSelected -> Idle
func (s State) CloseSlot() State {
	if s.Dialog == DialogSlot {
		s.Dialog = DialogNone
	}
	s.Selected = Slot{}
	return s
}

// OpenFilter открывает выбор дат с черновиком, равным текущему окну
func (s State) OpenFilter() State {
	s.Dialog = DialogFilter
	s.Filter = s.Window
	s.Awaiting = InputNone
	return s
}

// SetFilterStart меняет начало черновика ручного фильтра
func (s State) SetFilterStart(t time.Time) (State, error) {
	if s.Dialog != DialogFilter {
		return s, errors.ErrDialogClosed.WithContext(DialogFilter.String())
	}
	s.Filter.Start = Day(t)
	s.Awaiting = InputNone
	return s, nil
}

// SetFilterEnd меняет конец черновика ручного фильтра
func (s State) SetFilterEnd(t time.Time) (State, error) {
	if s.Dialog != DialogFilter {
		return s, errors.ErrDialogClosed.WithContext(DialogFilter.String())
	}
	s.Filter.End = Day(t)
	s.Awaiting = InputNone
	return s, nil
}

// ApplyFilterDraft применяет введенные вручную даты тем же путем, что и пресеты
func (s State) ApplyFilterDraft() (State, error) {
	if s.Dialog != DialogFilter {
		return s, errors.ErrDialogClosed.WithContext(DialogFilter.String())
	}
	return s.ApplyFilter(s.Filter.Start, s.Filter.End)
}

// CloseFilter закрывает выбор дат без изменения окна
func (s State) CloseFilter() State {
	if s.Dialog == DialogFilter {
		s.Dialog = DialogNone
	}
	s.Filter = DateRange{}
	s.Awaiting = InputNone
	return s
}

// OpenClosureDialog открывает форму закрытия с чистым черновиком
func (s State) OpenClosureDialog(defaultResource string, now time.Time) State {
	s.Dialog = DialogClosure
	s.Closure = NewClosureRequest(defaultResource, now)
	s.Awaiting = InputNone
	return s
}

func (s State) requireClosure() error {
	if s.Dialog != DialogClosure {
		return errors.ErrDialogClosed.WithContext(DialogClosure.String())
	}
	return nil
}

// SetClosureResource выбирает ресурс в форме закрытия
func (s State) SetClosureResource(resource string) (State, error) {
	if err := s.requireClosure(); err != nil {
		return s, err
	}
	s.Closure.Resource = resource
	return s, nil
}

// SetClosureStart меняет дату начала закрытия
func (s State) SetClosureStart(t time.Time) (State, error) {
	if err := s.requireClosure(); err != nil {
		return s, err
	}
	s.Closure.Start = Day(t)
	s.Awaiting = InputNone
	return s, nil
}

// SetClosureEnd меняет дату окончания закрытия
func (s State) SetClosureEnd(t time.Time) (State, error) {
	if err := s.requireClosure(); err != nil {
		return s, err
	}
	s.Closure.End = Day(t)
	s.Awaiting = InputNone
	return s, nil
}

// SetClosureReason меняет причину закрытия
func (s State) SetClosureReason(reason string) (State, error) {
	if err := s.requireClosure(); err != nil {
		return s, err
	}
	s.Closure.Reason = strings.TrimSpace(reason)
	s.Awaiting = InputNone
	return s, nil
}

// PendingClosure возвращает форму для отправки
func (s State) PendingClosure() (ClosureRequest, error) {
	if err := s.requireClosure(); err != nil {
		return ClosureRequest{}, err
	}
	return s.Closure, nil
}

// CloseClosureDialog закрывает форму и отбрасывает черновик.
// Используется и после успешной отправки, и при отмене.
func (s State) CloseClosureDialog() State {
	if s.Dialog == DialogClosure {
		s.Dialog = DialogNone
	}
	s.Closure = ClosureRequest{}
	s.Awaiting = InputNone
	return s
}

// AwaitInput помечает поле, в которое попадет следующий текст пользователя
func (s State) AwaitInput(field InputField) (State, error) {
	if field.Dialog() != s.Dialog {
		return s, errors.ErrDialogClosed.WithContext(field.Dialog().String())
	}
	s.Awaiting = field
	return s, nil
}

// FillDate записывает дату в ожидающее поле
func (s State) FillDate(t time.Time) (State, error) {
	switch s.Awaiting {
	case InputFilterStart:
		return s.SetFilterStart(t)
	case InputFilterEnd:
		return s.SetFilterEnd(t)
	case InputClosureStart:
		return s.SetClosureStart(t)
	case InputClosureEnd:
		return s.SetClosureEnd(t)
	default:
		return s, errors.ErrDialogClosed.WithContext(string(s.Awaiting))
	}
}
