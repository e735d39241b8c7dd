package keyboard

import (
	"strings"

	"github.com/region23/calendar/pkg/errors"
)

// MaxCallbackData ограничение Telegram на размер callback_data в байтах
const MaxCallbackData = 64

// Действия callback данных
const (
	ActionNav     = "NAV"
	ActionFocus   = "FOCUS"
	ActionCell    = "CELL"
	ActionSlot    = "SLOT"
	ActionFilter  = "FLT"
	ActionPreset  = "PRESET"
	ActionClosure = "CLS"
	ActionRes     = "RES"
	ActionIcon    = "ICON"
	ActionNoop    = "NOOP"
)

// Аргументы действий
const (
	NavPrev = "prev"
	NavNext = "next"

	StepOpen   = "OPEN"
	StepClose  = "CLOSE"
	StepStart  = "START"
	StepEnd    = "END"
	StepApply  = "APPLY"
	StepReason = "REASON"
	StepSubmit = "SUBMIT"
	StepCancel = "CANCEL"
)

const separator = ":"

// Callback разобранные callback данные вида ACTION:arg:arg
type Callback struct {
	Action string
	Args   []string
}

// Arg возвращает аргумент по номеру или пустую строку
func (c Callback) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// Encode собирает callback данные
func Encode(action string, args ...string) string {
	return strings.Join(append([]string{action}, args...), separator)
}

// Decode разбирает callback данные и проверяет число аргументов для действия
func Decode(data string) (Callback, error) {
	if data == "" || len(data) > MaxCallbackData {
		return Callback{}, errors.ErrInvalidCallback.WithContext(data)
	}

	parts := strings.Split(data, separator)
	cb := Callback{Action: parts[0], Args: parts[1:]}

	want, ok := arity[cb.Action]
	if !ok || len(cb.Args) != want {
		return Callback{}, errors.ErrInvalidCallback.WithContext(data)
	}
	for _, a := range cb.Args {
		if a == "" {
			return Callback{}, errors.ErrInvalidCallback.WithContext(data)
		}
	}

	return cb, nil
}

var arity = map[string]int{
	ActionNav:     1,
	ActionFocus:   1,
	ActionCell:    2,
	ActionSlot:    1,
	ActionFilter:  1,
	ActionPreset:  1,
	ActionClosure: 1,
	ActionRes:     1,
	ActionIcon:    1,
	ActionNoop:    0,
}
