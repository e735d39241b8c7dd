package keyboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/region23/calendar/internal/calendar"
	"github.com/region23/calendar/internal/locale"
	"github.com/region23/calendar/internal/view"
)

const (
	// DaysPerRow кнопок дней в ряду
	DaysPerRow = 7

	// DaysPerPage дней на одной странице клавиатуры; Telegram ограничивает
	// inline клавиатуру сотней кнопок
	DaysPerPage = 28

	// HoursPerRow кнопок часов в ряду
	HoursPerRow = 6

	// ResourcesPerRow кнопок ресурсов в ряду
	ResourcesPerRow = 3
)

const (
	prevGlyph    = "◀"
	nextGlyph    = "▶"
	focusedGlyph = "•"
	checkedGlyph = "✓"
	inputGlyph   = "✏️"
)

// Screen текст и клавиатура сообщения календаря
type Screen struct {
	Text   string
	Markup *models.InlineKeyboardMarkup
}

// Render строит экран для текущего диалога состояния
func Render(state calendar.State, grid view.Grid, resources []string, loc locale.Provider) Screen {
	switch state.Dialog {
	case calendar.DialogSlot:
		return DetailScreen(view.SlotDetail(state.Selected, loc), loc)
	case calendar.DialogFilter:
		return FilterScreen(state, loc)
	case calendar.DialogClosure:
		return ClosureScreen(state, resources, loc)
	default:
		return CalendarScreen(state, grid, loc)
	}
}

// CalendarScreen сетка: навигация, кнопка закрытия, дни окна и часы выбранного дня
func CalendarScreen(state calendar.State, grid view.Grid, loc locale.Provider) Screen {
	var rows [][]models.InlineKeyboardButton

	if len(grid.HeaderIcons) > 0 {
		var icons []models.InlineKeyboardButton
		for _, icon := range grid.HeaderIcons {
			icons = append(icons, button(icon.Glyph, Encode(ActionIcon, icon.Name)))
		}
		rows = append(rows, icons)
	}

	rows = append(rows, []models.InlineKeyboardButton{
		button(prevGlyph, Encode(ActionNav, NavPrev)),
		button(grid.Title, Encode(ActionFilter, StepOpen)),
		button(nextGlyph, Encode(ActionNav, NavNext)),
	})
	rows = append(rows, []models.InlineKeyboardButton{
		button(loc.Label(locale.LabelAddClosure), Encode(ActionClosure, StepOpen)),
	})

	rows = append(rows, dayRows(state, grid)...)

	if col, ok := grid.Column(state.Focus); ok {
		rows = append(rows, hourRows(col)...)
	}

	text := strings.Join([]string{
		grid.Title,
		fmt.Sprintf("%s : %s", grid.ResourceHeader, grid.Resource),
		loc.LongDate(state.Focus),
	}, "\n")

	return Screen{
		Text:   text,
		Markup: &models.InlineKeyboardMarkup{InlineKeyboard: rows},
	}
}

// dayRows кнопки дней страницы, содержащей выбранный день
func dayRows(state calendar.State, grid view.Grid) [][]models.InlineKeyboardButton {
	cols := grid.Columns
	if len(cols) == 0 {
		return nil
	}

	focusIdx := 0
	for i, c := range cols {
		if c.Focused {
			focusIdx = i
			break
		}
	}
	page := focusIdx / DaysPerPage
	from := page * DaysPerPage
	to := from + DaysPerPage
	if to > len(cols) {
		to = len(cols)
	}

	var rows [][]models.InlineKeyboardButton
	var row []models.InlineKeyboardButton
	for _, c := range cols[from:to] {
		label := strings.TrimSpace(c.Label)
		if c.Focused {
			label = focusedGlyph + " " + label
		}
		row = append(row, button(label, Encode(ActionFocus, c.Date.Format(calendar.DateLayout))))
		if len(row) == DaysPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	if len(cols) > DaysPerPage {
		var pager []models.InlineKeyboardButton
		if from > 0 {
			pager = append(pager, button("«", Encode(ActionFocus, cols[from-DaysPerPage].Date.Format(calendar.DateLayout))))
		}
		if to < len(cols) {
			pager = append(pager, button("»", Encode(ActionFocus, cols[to].Date.Format(calendar.DateLayout))))
		}
		rows = append(rows, pager)
	}

	return rows
}

// hourRows 24 часа выбранного дня, по HoursPerRow в ряду
func hourRows(col view.Column) [][]models.InlineKeyboardButton {
	date := col.Date.Format(calendar.DateLayout)

	var rows [][]models.InlineKeyboardButton
	var row []models.InlineKeyboardButton
	for _, cell := range col.Cells {
		row = append(row, button(cell.Label, Encode(ActionCell, date, strconv.Itoa(cell.Hour))))
		if len(row) == HoursPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

// DetailScreen окно деталей слота
func DetailScreen(detail view.Detail, loc locale.Provider) Screen {
	return Screen{
		Text: detail.Title + "\n\n" + detail.Body,
		Markup: &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
			{button(loc.Label(locale.LabelClose), Encode(ActionSlot, StepClose))},
		}},
	}
}

var presetLabels = map[calendar.PresetID]locale.Key{
	calendar.PresetToday:     locale.LabelToday,
	calendar.PresetThisWeek:  locale.LabelThisWeek,
	calendar.PresetThisMonth: locale.LabelThisMonth,
}

// FilterScreen выбор окна дат: пресеты и ручной ввод границ
func FilterScreen(state calendar.State, loc locale.Provider) Screen {
	var presets []models.InlineKeyboardButton
	for _, id := range calendar.Presets {
		presets = append(presets, button(loc.Label(presetLabels[id]), Encode(ActionPreset, string(id))))
	}

	from := fmt.Sprintf("%s : %s", loc.Label(locale.LabelFrom), shortDate(state.Filter.Start, loc))
	to := fmt.Sprintf("%s : %s", loc.Label(locale.LabelTo), shortDate(state.Filter.End, loc))

	rows := [][]models.InlineKeyboardButton{
		presets,
		{button(from, Encode(ActionFilter, StepStart))},
		{button(to, Encode(ActionFilter, StepEnd))},
		{
			button(loc.Label(locale.LabelApply), Encode(ActionFilter, StepApply)),
			button(loc.Label(locale.LabelCancel), Encode(ActionFilter, StepClose)),
		},
	}

	lines := []string{fmt.Sprintf("%s %s %s", from, loc.Label(locale.LabelTo), shortDate(state.Filter.End, loc))}
	if state.Awaiting.Dialog() == calendar.DialogFilter {
		lines = append(lines, inputGlyph+" "+loc.Label(locale.MsgEnterDate))
	}

	return Screen{
		Text:   strings.Join(lines, "\n"),
		Markup: &models.InlineKeyboardMarkup{InlineKeyboard: rows},
	}
}

// ClosureScreen форма дней закрытия
func ClosureScreen(state calendar.State, resources []string, loc locale.Provider) Screen {
	draft := state.Closure

	var rows [][]models.InlineKeyboardButton
	var row []models.InlineKeyboardButton
	for i, r := range resources {
		label := r
		if r == draft.Resource {
			label = checkedGlyph + " " + r
		}
		row = append(row, button(label, Encode(ActionRes, strconv.Itoa(i))))
		if len(row) == ResourcesPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	reason := draft.Reason
	if reason == "" {
		reason = loc.Label(locale.LabelReasonHint)
	}

	rows = append(rows,
		[]models.InlineKeyboardButton{
			button(fmt.Sprintf("%s : %s", loc.Label(locale.LabelFrom), shortDate(draft.Start, loc)), Encode(ActionClosure, StepStart)),
			button(fmt.Sprintf("%s : %s", loc.Label(locale.LabelTo), shortDate(draft.End, loc)), Encode(ActionClosure, StepEnd)),
		},
		[]models.InlineKeyboardButton{
			button(fmt.Sprintf("%s : %s", loc.Label(locale.LabelReason), reason), Encode(ActionClosure, StepReason)),
		},
		[]models.InlineKeyboardButton{
			button(loc.Label(locale.LabelCreateClosure), Encode(ActionClosure, StepSubmit)),
			button(loc.Label(locale.LabelCancel), Encode(ActionClosure, StepCancel)),
		},
	)

	lines := []string{
		loc.Label(locale.LabelAddClosure),
		fmt.Sprintf("%s : %s", loc.Label(locale.LabelResource), draft.Resource),
		fmt.Sprintf("%s %s %s %s", loc.Label(locale.LabelFrom), shortDate(draft.Start, loc), loc.Label(locale.LabelTo), shortDate(draft.End, loc)),
		fmt.Sprintf("%s : %s", loc.Label(locale.LabelReason), draft.Reason),
	}
	switch state.Awaiting {
	case calendar.InputClosureStart, calendar.InputClosureEnd:
		lines = append(lines, inputGlyph+" "+loc.Label(locale.MsgEnterDate))
	case calendar.InputClosureReason:
		lines = append(lines, inputGlyph+" "+loc.Label(locale.MsgEnterReason))
	}

	return Screen{
		Text:   strings.Join(lines, "\n"),
		Markup: &models.InlineKeyboardMarkup{InlineKeyboard: rows},
	}
}

// ExpiredScreen сообщение истекшей сессии без клавиатуры
func ExpiredScreen(loc locale.Provider) Screen {
	return Screen{
		Text:   loc.Label(locale.MsgSessionExpired),
		Markup: &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{}},
	}
}

func shortDate(t time.Time, loc locale.Provider) string {
	if t.IsZero() {
		return "—"
	}
	return loc.ShortDate(t)
}

func button(text, data string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: data}
}
