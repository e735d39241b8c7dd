package calendar

import (
	"reflect"
	"testing"
	"time"

	"github.com/region23/calendar/pkg/errors"
)

func TestNewState(t *testing.T) {
	now := time.Date(2024, 10, 14, 14, 30, 0, 0, time.UTC)
	s := NewState(now)

	days, err := s.Days()
	if err != nil {
		t.Fatalf("Days returned error: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected today and tomorrow, got %d days", len(days))
	}
	if !s.Marker.Equal(Slot{Date: date(2024, 10, 14), Hour: 14}) {
		t.Errorf("unexpected marker %+v", s.Marker)
	}
	if s.Dialog != DialogNone {
		t.Errorf("new state must be idle, got %s", s.Dialog)
	}
}

func TestApplyFilter_ScenarioOctober(t *testing.T) {
	s := NewState(time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC))

	s, err := s.ApplyFilter(date(2024, 10, 14), date(2024, 10, 15))
	if err != nil {
		t.Fatalf("ApplyFilter returned error: %v", err)
	}

	days, _ := s.Days()
	want := []time.Time{date(2024, 10, 14), date(2024, 10, 15)}
	if !reflect.DeepEqual(days, want) {
		t.Errorf("days = %v, want %v", days, want)
	}

	s, err = s.SelectSlot(date(2024, 10, 14), 14)
	if err != nil {
		t.Fatalf("SelectSlot returned error: %v", err)
	}
	if !s.HasSelection() {
		t.Error("detail dialog must be open after a cell click")
	}
	if !s.Selected.Equal(Slot{Date: date(2024, 10, 14), Hour: 14}) {
		t.Errorf("unexpected selection %+v", s.Selected)
	}

	s = s.CloseSlot()
	if s.Dialog != DialogNone || s.HasSelection() {
		t.Error("closing the detail dialog must return to idle")
	}
}

func TestApplyFilter_ReplacesWholesale(t *testing.T) {
	s := NewState(time.Date(2024, 10, 14, 10, 0, 0, 0, time.UTC))
	s = s.Next().Next()

	s, err := s.ApplyFilter(time.Date(2024, 11, 3, 16, 0, 0, 0, time.UTC), date(2024, 11, 9))
	if err != nil {
		t.Fatalf("ApplyFilter returned error: %v", err)
	}

	if !s.Window.Start.Equal(date(2024, 11, 3)) || !s.Window.End.Equal(date(2024, 11, 9)) {
		t.Errorf("unexpected window %v..%v", s.Window.Start, s.Window.End)
	}
	if !s.Marker.Equal(Slot{Date: date(2024, 11, 3), Hour: 16}) {
		t.Errorf("marker must follow the start instant, got %+v", s.Marker)
	}
	if !s.Focus.Equal(date(2024, 11, 3)) {
		t.Errorf("focus must move to the new start, got %v", s.Focus)
	}
}

func TestApplyFilter_InvalidRangeKeepsState(t *testing.T) {
	s := NewState(time.Date(2024, 10, 14, 10, 0, 0, 0, time.UTC))

	next, err := s.ApplyFilter(date(2024, 10, 20), date(2024, 10, 10))
	if !errors.HasCode(err, errors.ErrInvalidRange.Code) {
		t.Fatalf("expected INVALID_RANGE, got %v", err)
	}
	if !reflect.DeepEqual(next, s) {
		t.Error("rejected filter must not change the state")
	}
}

func TestPreviousNext_RoundTrip(t *testing.T) {
	s := NewState(time.Date(2024, 10, 14, 10, 0, 0, 0, time.UTC))

	back := s.Next().Previous()
	if !reflect.DeepEqual(back, s) {
		t.Errorf("Next then Previous must restore the state:\n got %+v\nwant %+v", back, s)
	}

	moved := s.Next()
	if !moved.Window.Start.Equal(date(2024, 10, 15)) || !moved.Window.End.Equal(date(2024, 10, 16)) {
		t.Errorf("unexpected window after Next: %v..%v", moved.Window.Start, moved.Window.End)
	}
}

func TestSelectSlot_AnyHourOfRenderedDay(t *testing.T) {
	s := NewState(time.Date(2024, 10, 14, 10, 0, 0, 0, time.UTC))

	for _, hour := range []int{0, 3, 23} {
		if _, err := s.SelectSlot(date(2024, 10, 15), hour); err != nil {
			t.Errorf("hour %d must be selectable: %v", hour, err)
		}
	}

	if _, err := s.SelectSlot(date(2024, 10, 15), 24); !errors.HasCode(err, errors.ErrInvalidHour.Code) {
		t.Errorf("expected INVALID_HOUR, got %v", err)
	}
	if _, err := s.SelectSlot(date(2024, 10, 20), 10); !errors.HasCode(err, errors.ErrInvalidSlot.Code) {
		t.Errorf("expected INVALID_SLOT for a day outside the window, got %v", err)
	}
}

func TestFilterDraft(t *testing.T) {
	s := NewState(time.Date(2024, 10, 14, 10, 0, 0, 0, time.UTC))

	if _, err := s.SetFilterStart(date(2024, 11, 1)); !errors.HasCode(err, errors.ErrDialogClosed.Code) {
		t.Errorf("draft edits need an open popover, got %v", err)
	}

	s = s.OpenFilter()
	s, _ = s.AwaitInput(InputFilterStart)
	s, err := s.FillDate(date(2024, 11, 1))
	if err != nil {
		t.Fatalf("FillDate returned error: %v", err)
	}
	s, _ = s.AwaitInput(InputFilterEnd)
	s, err = s.FillDate(date(2024, 11, 3))
	if err != nil {
		t.Fatalf("FillDate returned error: %v", err)
	}

	s, err = s.ApplyFilterDraft()
	if err != nil {
		t.Fatalf("ApplyFilterDraft returned error: %v", err)
	}
	if s.Dialog != DialogNone {
		t.Error("applying the filter must close the popover")
	}
	if !s.Window.Start.Equal(date(2024, 11, 1)) || !s.Window.End.Equal(date(2024, 11, 3)) {
		t.Errorf("unexpected window %v..%v", s.Window.Start, s.Window.End)
	}
	if s.Marker.Hour != 0 {
		t.Errorf("manual dates start at midnight, marker hour = %d", s.Marker.Hour)
	}
}

func TestClosureDialog_Lifecycle(t *testing.T) {
	now := time.Date(2024, 10, 14, 10, 0, 0, 0, time.UTC)
	s := NewState(now).OpenClosureDialog("Ressource1", now)

	if s.Dialog != DialogClosure {
		t.Fatalf("expected closure dialog, got %s", s.Dialog)
	}
	if s.Closure.Resource != "Ressource1" || !s.Closure.Start.Equal(date(2024, 10, 14)) {
		t.Errorf("unexpected defaults %+v", s.Closure)
	}

	var err error
	s, err = s.SetClosureResource("Ressource2")
	if err != nil {
		t.Fatal(err)
	}
	s, _ = s.SetClosureStart(date(2024, 11, 1))
	s, _ = s.SetClosureEnd(date(2024, 11, 3))
	s, _ = s.AwaitInput(InputClosureReason)
	if s.Awaiting != InputClosureReason {
		t.Errorf("expected awaiting reason, got %q", s.Awaiting)
	}
	s, _ = s.SetClosureReason("  Inventaire ")

	req, err := s.PendingClosure()
	if err != nil {
		t.Fatal(err)
	}
	want := ClosureRequest{Resource: "Ressource2", Start: date(2024, 11, 1), End: date(2024, 11, 3), Reason: "Inventaire"}
	if !reflect.DeepEqual(req, want) {
		t.Errorf("request = %+v, want %+v", req, want)
	}

	s = s.CloseClosureDialog()
	if s.Dialog != DialogNone || s.Closure != (ClosureRequest{}) {
		t.Error("closing the dialog must discard the draft")
	}

	reopened := s.OpenClosureDialog("Ressource1", now)
	if reopened.Closure.Reason != "" {
		t.Error("a reopened dialog must start from a clean draft")
	}
}

func TestAwaitInput_RequiresOwningDialog(t *testing.T) {
	s := NewState(time.Date(2024, 10, 14, 10, 0, 0, 0, time.UTC))

	if _, err := s.AwaitInput(InputClosureReason); !errors.HasCode(err, errors.ErrDialogClosed.Code) {
		t.Errorf("expected DIALOG_CLOSED, got %v", err)
	}
	if _, err := s.FillDate(date(2024, 1, 1)); err == nil {
		t.Error("FillDate without an awaited field must fail")
	}
}

func TestFocusDay(t *testing.T) {
	s := NewState(time.Date(2024, 10, 14, 10, 0, 0, 0, time.UTC))

	s, err := s.FocusDay(date(2024, 10, 15))
	if err != nil {
		t.Fatal(err)
	}
	if !s.Focus.Equal(date(2024, 10, 15)) {
		t.Errorf("unexpected focus %v", s.Focus)
	}
	if _, err := s.FocusDay(date(2024, 10, 30)); err == nil {
		t.Error("focus outside the window must fail")
	}
}
