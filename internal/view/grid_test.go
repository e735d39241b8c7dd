package view

import (
	"testing"
	"time"

	"github.com/region23/calendar/internal/calendar"
	"github.com/region23/calendar/internal/locale"
	"github.com/region23/calendar/pkg/errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildGrid_OctoberWindow(t *testing.T) {
	s := calendar.NewState(time.Date(2024, 10, 14, 14, 0, 0, 0, time.UTC))
	loc := locale.French()

	g, err := BuildGrid(s, "Fatoum20", DefaultOptions(), loc)
	if err != nil {
		t.Fatalf("BuildGrid returned error: %v", err)
	}

	if g.Title != "Du : 14/10/2024 au : 15/10/2024" {
		t.Errorf("unexpected title %q", g.Title)
	}
	if g.ResourceHeader != "Ressources" || g.Resource != "Fatoum20" {
		t.Errorf("unexpected resource row %q / %q", g.ResourceHeader, g.Resource)
	}
	if len(g.Columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(g.Columns))
	}
	if len(g.HeaderIcons) != 0 {
		t.Error("default variant has no header icons")
	}

	markers := 0
	for _, col := range g.Columns {
		if len(col.Cells) != calendar.HoursPerDay {
			t.Errorf("column %s has %d cells", col.Date.Format(calendar.DateLayout), len(col.Cells))
		}
		for _, c := range col.Cells {
			if c.Marker {
				markers++
				if !calendar.SameDay(col.Date, date(2024, 10, 14)) || c.Hour != 14 {
					t.Errorf("marker at %s %dh", col.Date.Format(calendar.DateLayout), c.Hour)
				}
			}
			if c.Selected {
				t.Error("nothing is selected in a fresh state")
			}
		}
	}
	if markers != 1 {
		t.Errorf("expected exactly one marked cell, got %d", markers)
	}
	if !g.Columns[0].Focused || g.Columns[1].Focused {
		t.Error("first day must be focused")
	}
}

func TestBuildGrid_MarkerNotRepeatedAcrossMonths(t *testing.T) {
	s := calendar.NewState(time.Date(2024, 10, 14, 9, 0, 0, 0, time.UTC))
	s, err := s.ApplyFilter(time.Date(2024, 10, 14, 9, 0, 0, 0, time.UTC), date(2024, 12, 20))
	if err != nil {
		t.Fatal(err)
	}

	g, err := BuildGrid(s, "Fatoum20", DefaultOptions(), locale.French())
	if err != nil {
		t.Fatal(err)
	}

	markers := 0
	for _, col := range g.Columns {
		for _, c := range col.Cells {
			if c.Marker {
				markers++
			}
		}
	}
	if markers != 1 {
		t.Errorf("marker must appear once in a multi-month window, got %d", markers)
	}
}

func TestBuildGrid_Selection(t *testing.T) {
	s := calendar.NewState(time.Date(2024, 10, 14, 9, 0, 0, 0, time.UTC))
	s, err := s.SelectSlot(date(2024, 10, 15), 3)
	if err != nil {
		t.Fatal(err)
	}

	g, err := BuildGrid(s, "Fatoum20", EmeraldOptions(), locale.French())
	if err != nil {
		t.Fatal(err)
	}

	col, ok := g.Column(date(2024, 10, 15))
	if !ok {
		t.Fatal("column for 2024-10-15 is missing")
	}
	if !col.Cells[3].Selected || col.Cells[3].Label != SelectedMarker+" 03h" {
		t.Errorf("unexpected selected cell %+v", col.Cells[3])
	}
	if len(g.HeaderIcons) != 2 {
		t.Errorf("emerald variant shows header icons, got %d", len(g.HeaderIcons))
	}
	if col.Alignment != AlignLeft {
		t.Errorf("emerald variant aligns labels left, got %s", col.Alignment)
	}
}

func TestBuildGrid_InvalidWindow(t *testing.T) {
	s := calendar.NewState(time.Date(2024, 10, 14, 9, 0, 0, 0, time.UTC))
	s.Window = calendar.DateRange{Start: date(2024, 10, 20), End: date(2024, 10, 10)}

	if _, err := BuildGrid(s, "Fatoum20", DefaultOptions(), locale.French()); !errors.HasCode(err, errors.ErrInvalidRange.Code) {
		t.Errorf("expected INVALID_RANGE, got %v", err)
	}
}

func TestSlotDetail(t *testing.T) {
	d := SlotDetail(calendar.Slot{Date: date(2024, 10, 14), Hour: 14}, locale.French())

	if d.Title != "14 octobre 2024 - 14h00" {
		t.Errorf("unexpected title %q", d.Title)
	}
	if d.Body != "Vous avez sélectionné le créneau de 14h00 le 14 octobre 2024" {
		t.Errorf("unexpected body %q", d.Body)
	}
}

func TestAlignLabel(t *testing.T) {
	tests := []struct {
		label string
		width int
		align Alignment
		want  string
	}{
		{"Lun. 7", 8, AlignLeft, "Lun. 7  "},
		{"Lun. 7", 8, AlignCenter, " Lun. 7 "},
		{"Lun. 7", 9, AlignCenter, " Lun. 7  "},
		{"Mer. 14", 4, AlignCenter, "Mer. 14"},
	}

	for _, tt := range tests {
		if got := AlignLabel(tt.label, tt.width, tt.align); got != tt.want {
			t.Errorf("AlignLabel(%q, %d, %s) = %q, want %q", tt.label, tt.width, tt.align, got, tt.want)
		}
	}
}

func TestParseAlignment(t *testing.T) {
	if ParseAlignment(" LEFT ") != AlignLeft {
		t.Error("left must be recognised case-insensitively")
	}
	if ParseAlignment("justify") != AlignCenter {
		t.Error("unknown alignment falls back to center")
	}
}

func TestAccentMarker(t *testing.T) {
	if AccentMarker("Teal") != "🔷" {
		t.Error("teal marker mismatch")
	}
	if AccentMarker("purple") == "" {
		t.Error("unknown colors still get a marker")
	}
}
