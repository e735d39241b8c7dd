// Package view строит модель отображения сетки календаря из состояния контроллера.
package view

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/region23/calendar/internal/calendar"
	"github.com/region23/calendar/internal/locale"
)

// Alignment выравнивание подписей дней
type Alignment string

const (
	AlignCenter Alignment = "center"
	AlignLeft   Alignment = "left"
)

// ParseAlignment разбирает значение из конфигурации; неизвестное значение дает AlignCenter
func ParseAlignment(s string) Alignment {
	if Alignment(strings.ToLower(strings.TrimSpace(s))) == AlignLeft {
		return AlignLeft
	}
	return AlignCenter
}

// Options параметры оформления. Два варианта виджета отличаются только ими.
type Options struct {
	AccentColor        string    `json:"accent_color"`
	HeaderIconsVisible bool      `json:"header_icons_visible"`
	DateLabelAlignment Alignment `json:"date_label_alignment"`
}

// DefaultOptions основной вариант: бирюзовый акцент, без иконок, подписи по центру
func DefaultOptions() Options {
	return Options{
		AccentColor:        "teal",
		HeaderIconsVisible: false,
		DateLabelAlignment: AlignCenter,
	}
}

// EmeraldOptions второй вариант: изумрудный акцент, иконки в заголовке, подписи слева
func EmeraldOptions() Options {
	return Options{
		AccentColor:        "emerald",
		HeaderIconsVisible: true,
		DateLabelAlignment: AlignLeft,
	}
}

// HeaderIcon иконка в заголовке сетки
type HeaderIcon struct {
	Name  string `json:"name"`
	Glyph string `json:"glyph"`
}

// Имена иконок заголовка
const (
	IconSettings = "settings"
	IconSearch   = "search"
)

var headerIcons = []HeaderIcon{
	{Name: IconSettings, Glyph: "⚙️"},
	{Name: IconSearch, Glyph: "🔍"},
}

var accentMarkers = map[string]string{
	"teal":    "🔷",
	"emerald": "🟩",
	"blue":    "🟦",
}

// AccentMarker возвращает значок отмеченной ячейки для цвета акцента
func AccentMarker(color string) string {
	if m, ok := accentMarkers[strings.ToLower(color)]; ok {
		return m
	}
	return "🔸"
}

// SelectedMarker значок выбранной ячейки
const SelectedMarker = "✅"

// Cell часовая ячейка дня
type Cell struct {
	Hour     int    `json:"hour"`
	Label    string `json:"label"`
	Marker   bool   `json:"marker"`
	Selected bool   `json:"selected"`
}

// Column день окна с 24 ячейками
type Column struct {
	Date      time.Time `json:"date"`
	Label     string    `json:"label"`
	Alignment Alignment `json:"alignment"`
	Focused   bool      `json:"focused"`
	Cells     []Cell    `json:"cells"`
}

// Grid модель сетки: заголовок окна, строка ресурса, колонки дней
type Grid struct {
	Title          string       `json:"title"`
	ResourceHeader string       `json:"resource_header"`
	Resource       string       `json:"resource"`
	AccentColor    string       `json:"accent_color"`
	HeaderIcons    []HeaderIcon `json:"header_icons,omitempty"`
	Columns        []Column     `json:"columns"`
}

// BuildGrid строит сетку по окну состояния. Отмеченная ячейка сравнивается
// по полной дате, поэтому в окне длиннее месяца она не повторяется.
func BuildGrid(state calendar.State, resource string, opts Options, loc locale.Provider) (Grid, error) {
	days, err := state.Days()
	if err != nil {
		return Grid{}, err
	}

	g := Grid{
		Title:          loc.WindowTitle(state.Window),
		ResourceHeader: loc.Label(locale.LabelResources),
		Resource:       resource,
		AccentColor:    opts.AccentColor,
		Columns:        make([]Column, 0, len(days)),
	}
	if opts.HeaderIconsVisible {
		g.HeaderIcons = append([]HeaderIcon(nil), headerIcons...)
	}

	width := 0
	for _, d := range days {
		if n := utf8.RuneCountInString(loc.DayButton(d)); n > width {
			width = n
		}
	}

	marker := AccentMarker(opts.AccentColor)
	for _, d := range days {
		col := Column{
			Date:      d,
			Label:     AlignLabel(loc.DayButton(d), width, opts.DateLabelAlignment),
			Alignment: opts.DateLabelAlignment,
			Focused:   calendar.SameDay(d, state.Focus),
			Cells:     make([]Cell, 0, calendar.HoursPerDay),
		}
		for _, h := range calendar.Hours() {
			slot := calendar.Slot{Date: d, Hour: h}
			cell := Cell{
				Hour:     h,
				Marker:   slot.Equal(state.Marker),
				Selected: state.HasSelection() && slot.Equal(state.Selected),
			}
			cell.Label = cellLabel(h, cell, marker)
			col.Cells = append(col.Cells, cell)
		}
		g.Columns = append(g.Columns, col)
	}

	return g, nil
}

// Column возвращает колонку дня или false, если день вне сетки
func (g Grid) Column(day time.Time) (Column, bool) {
	for _, c := range g.Columns {
		if calendar.SameDay(c.Date, day) {
			return c, true
		}
	}
	return Column{}, false
}

func cellLabel(hour int, c Cell, marker string) string {
	label := hourLabel(hour)
	switch {
	case c.Selected:
		return SelectedMarker + " " + label
	case c.Marker:
		return marker + " " + label
	default:
		return label
	}
}

func hourLabel(hour int) string {
	return fmt.Sprintf("%02dh", hour)
}

// AlignLabel дополняет подпись пробелами до width символов
func AlignLabel(label string, width int, align Alignment) string {
	pad := width - utf8.RuneCountInString(label)
	if pad <= 0 {
		return label
	}
	if align == AlignLeft {
		return label + strings.Repeat(" ", pad)
	}
	left := pad / 2
	return strings.Repeat(" ", left) + label + strings.Repeat(" ", pad-left)
}

// Detail содержимое окна деталей слота
type Detail struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// SlotDetail строит заголовок и текст окна деталей
func SlotDetail(slot calendar.Slot, loc locale.Provider) Detail {
	return Detail{
		Title: loc.SlotTitle(slot),
		Body:  loc.SlotBody(slot),
	}
}
