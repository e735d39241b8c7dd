// Package locale форматирует даты и подписи интерфейса календаря.
package locale

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/region23/calendar/internal/calendar"
	"github.com/region23/calendar/pkg/errors"
)

// Key идентификатор подписи интерфейса
type Key string

const (
	LabelToday          Key = "today"
	LabelThisWeek       Key = "this_week"
	LabelThisMonth      Key = "this_month"
	LabelFrom           Key = "from"
	LabelTo             Key = "to"
	LabelApply          Key = "apply"
	LabelAddClosure     Key = "add_closure"
	LabelCreateClosure  Key = "create_closure"
	LabelCancel         Key = "cancel"
	LabelClose          Key = "close"
	LabelResource       Key = "resource"
	LabelResources      Key = "resources"
	LabelReason         Key = "reason"
	LabelReasonHint     Key = "reason_hint"
	LabelSettings       Key = "settings"
	LabelSearch         Key = "search"
	MsgEnterDate        Key = "enter_date"
	MsgEnterReason      Key = "enter_reason"
	MsgInvalidDate      Key = "invalid_date"
	MsgInvalidRange     Key = "invalid_range"
	MsgRangeTooLong     Key = "range_too_long"
	MsgValidation       Key = "validation"
	MsgSubmitted        Key = "submitted"
	MsgSubmissionFailed Key = "submission_failed"
	MsgSessionExpired   Key = "session_expired"
	MsgUseStart         Key = "use_start"
	MsgInternalError    Key = "internal_error"
	MsgUnknownAction    Key = "unknown_action"
)

// Provider локализует даты и подписи календаря
type Provider interface {
	Tag() language.Tag
	WeekStart() time.Weekday
	LongDate(t time.Time) string
	ShortDate(t time.Time) string
	DayButton(t time.Time) string
	SlotTitle(s calendar.Slot) string
	SlotBody(s calendar.Slot) string
	WindowTitle(r calendar.DateRange) string
	FieldName(field string) string
	Label(key Key) string
	ParseDate(s string, loc *time.Location) (time.Time, error)
}

// table реализация Provider на статических таблицах
type table struct {
	tag        language.Tag
	weekStart  time.Weekday
	months     [12]string
	weekdays   [7]string
	longDate   func(day int, month string, year int) string
	shortDate  string
	dateInputs []string
	slotTitle  string
	slotBody   string
	window     string
	fields     map[string]string
	labels     map[Key]string
}

var supported = []language.Tag{language.French, language.English}

var matcher = language.NewMatcher(supported)

// New подбирает локаль по BCP 47 тегу (например "fr-FR" или "en-GB").
// Неизвестные языки получают французскую локаль.
func New(tag string) Provider {
	requested, _, err := language.ParseAcceptLanguage(tag)
	if err != nil || len(requested) == 0 {
		return French()
	}

	_, idx, _ := matcher.Match(requested...)
	if supported[idx] == language.English {
		return English()
	}
	return French()
}

// French локаль исходного виджета: "14 octobre 2024", недели с воскресенья
func French() Provider {
	return &table{
		tag:       language.French,
		weekStart: time.Sunday,
		months: [12]string{"janvier", "février", "mars", "avril", "mai", "juin",
			"juillet", "août", "septembre", "octobre", "novembre", "décembre"},
		weekdays: [7]string{"dim.", "lun.", "mar.", "mer.", "jeu.", "ven.", "sam."},
		longDate: func(day int, month string, year int) string {
			return fmt.Sprintf("%d %s %d", day, month, year)
		},
		shortDate:  "02/01/2006",
		dateInputs: []string{calendar.DateLayout, "02/01/2006", "2/1/2006"},
		slotTitle:  "%s - %dh00",
		slotBody:   "Vous avez sélectionné le créneau de %dh00 le %s",
		window:     "Du : %s au : %s",
		fields: map[string]string{
			calendar.FieldResource: "ressource",
			calendar.FieldReason:   "motif",
			calendar.FieldRange:    "période",
		},
		labels: map[Key]string{
			LabelToday:          "Aujourd'hui",
			LabelThisWeek:       "Cette semaine",
			LabelThisMonth:      "Ce mois",
			LabelFrom:           "À partir de",
			LabelTo:             "au",
			LabelApply:          "Appliquer",
			LabelAddClosure:     "Ajouter des jours de fermeture",
			LabelCreateClosure:  "Créer des jours de fermeture",
			LabelCancel:         "Annuler",
			LabelClose:          "Fermer",
			LabelResource:       "Ressource",
			LabelResources:      "Ressources",
			LabelReason:         "Motif",
			LabelReasonHint:     "par ex. Inventaire et valorisation des stocks",
			LabelSettings:       "Paramètres",
			LabelSearch:         "Rechercher",
			MsgEnterDate:        "Saisissez une date (AAAA-MM-JJ ou JJ/MM/AAAA) :",
			MsgEnterReason:      "Saisissez le motif de fermeture :",
			MsgInvalidDate:      "Date invalide. Utilisez AAAA-MM-JJ ou JJ/MM/AAAA.",
			MsgInvalidRange:     "La date de fin est antérieure à la date de début.",
			MsgRangeTooLong:     "La période sélectionnée est trop longue.",
			MsgValidation:       "Champs invalides : %s",
			MsgSubmitted:        "Jours de fermeture créés pour %s du %s au %s.",
			MsgSubmissionFailed: "Le service de réservation a refusé la demande. Réessayez plus tard.",
			MsgSessionExpired:   "Session expirée, les saisies non enregistrées ont été perdues. Tapez /start.",
			MsgUseStart:         "Tapez /start pour ouvrir le calendrier.",
			MsgInternalError:    "Une erreur est survenue. Réessayez.",
			MsgUnknownAction:    "Action inconnue",
		},
	}
}

// English локаль: "October 14, 2024", недели с понедельника
func English() Provider {
	return &table{
		tag:       language.English,
		weekStart: time.Monday,
		months: [12]string{"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December"},
		weekdays: [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"},
		longDate: func(day int, month string, year int) string {
			return fmt.Sprintf("%s %d, %d", month, day, year)
		},
		shortDate:  "01/02/2006",
		dateInputs: []string{calendar.DateLayout, "01/02/2006", "1/2/2006"},
		slotTitle:  "%s - %d:00",
		slotBody:   "You selected the %d:00 slot on %s",
		window:     "From: %s to: %s",
		fields: map[string]string{
			calendar.FieldResource: "resource",
			calendar.FieldReason:   "reason",
			calendar.FieldRange:    "period",
		},
		labels: map[Key]string{
			LabelToday:          "Today",
			LabelThisWeek:       "This week",
			LabelThisMonth:      "This month",
			LabelFrom:           "From",
			LabelTo:             "to",
			LabelApply:          "Apply",
			LabelAddClosure:     "Add closure days",
			LabelCreateClosure:  "Create closure days",
			LabelCancel:         "Cancel",
			LabelClose:          "Close",
			LabelResource:       "Resource",
			LabelResources:      "Resources",
			LabelReason:         "Reason",
			LabelReasonHint:     "e.g. Stock inventory",
			LabelSettings:       "Settings",
			LabelSearch:         "Search",
			MsgEnterDate:        "Enter a date (YYYY-MM-DD or MM/DD/YYYY):",
			MsgEnterReason:      "Enter the closure reason:",
			MsgInvalidDate:      "Invalid date. Use YYYY-MM-DD or MM/DD/YYYY.",
			MsgInvalidRange:     "The end date is before the start date.",
			MsgRangeTooLong:     "The selected period is too long.",
			MsgValidation:       "Invalid fields: %s",
			MsgSubmitted:        "Closure days created for %s from %s to %s.",
			MsgSubmissionFailed: "The booking service rejected the request. Try again later.",
			MsgSessionExpired:   "Session expired, unsaved input was discarded. Send /start.",
			MsgUseStart:         "Send /start to open the calendar.",
			MsgInternalError:    "Something went wrong. Try again.",
			MsgUnknownAction:    "Unknown action",
		},
	}
}

func (t *table) Tag() language.Tag {
	return t.tag
}

func (t *table) WeekStart() time.Weekday {
	return t.weekStart
}

func (t *table) LongDate(d time.Time) string {
	return t.longDate(d.Day(), t.months[d.Month()-1], d.Year())
}

func (t *table) ShortDate(d time.Time) string {
	return d.Format(t.shortDate)
}

// DayButton короткая подпись дня для кнопок: "Lun. 14"
func (t *table) DayButton(d time.Time) string {
	return fmt.Sprintf("%s %d", cases.Title(t.tag).String(t.weekdays[d.Weekday()]), d.Day())
}

func (t *table) SlotTitle(s calendar.Slot) string {
	return fmt.Sprintf(t.slotTitle, t.LongDate(s.Date), s.Hour)
}

func (t *table) SlotBody(s calendar.Slot) string {
	return fmt.Sprintf(t.slotBody, s.Hour, t.LongDate(s.Date))
}

func (t *table) WindowTitle(r calendar.DateRange) string {
	return fmt.Sprintf(t.window, t.ShortDate(r.Start), t.ShortDate(r.End))
}

func (t *table) FieldName(field string) string {
	if name, ok := t.fields[field]; ok {
		return name
	}
	return field
}

// Label возвращает подпись; для неизвестного ключа: сам ключ
func (t *table) Label(key Key) string {
	if label, ok := t.labels[key]; ok {
		return label
	}
	return string(key)
}

// ParseDate принимает ISO дату и локальный формат
func (t *table) ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range t.dateInputs {
		if d, err := time.ParseInLocation(layout, s, loc); err == nil {
			return d, nil
		}
	}
	return time.Time{}, errors.ErrInvalidDate.WithContext(s)
}
