package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/region23/calendar/internal/calendar"
	"github.com/region23/calendar/pkg/errors"
)

func TestValidateDate(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"2024-10-14", false},
		{"2001-01-01", false},
		{"2024-02-29", false},
		{"2023-02-29", true},
		{"14/10/2024", true},
		{"2024-1-4", true},
		{"", true},
	}

	for _, tt := range tests {
		got, err := ValidateDate(tt.input, time.UTC)
		if tt.wantErr {
			if !errors.HasCode(err, errors.ErrInvalidDate.Code) {
				t.Errorf("ValidateDate(%q): expected INVALID_DATE, got %v", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ValidateDate(%q) returned error: %v", tt.input, err)
			continue
		}
		if got.Format(calendar.DateLayout) != tt.input {
			t.Errorf("ValidateDate(%q) = %s", tt.input, got.Format(calendar.DateLayout))
		}
	}
}

func TestValidateDateRange(t *testing.T) {
	r, err := ValidateDateRange("2024-10-14", "2024-10-15", time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, _ := r.Days(); n != 2 {
		t.Errorf("expected 2 days, got %d", n)
	}

	if _, err := ValidateDateRange("2024-10-15", "2024-10-14", time.UTC); !errors.HasCode(err, errors.ErrInvalidRange.Code) {
		t.Errorf("expected INVALID_RANGE, got %v", err)
	}
	if _, err := ValidateDateRange("2020-01-01", "2024-01-01", time.UTC); !errors.HasCode(err, errors.ErrRangeTooLong.Code) {
		t.Errorf("expected RANGE_TOO_LONG, got %v", err)
	}
}

func TestValidateHour(t *testing.T) {
	for _, in := range []string{"0", "14", "23", " 7 "} {
		if _, err := ValidateHour(in); err != nil {
			t.Errorf("ValidateHour(%q) returned error: %v", in, err)
		}
	}
	for _, in := range []string{"-1", "24", "x", ""} {
		if _, err := ValidateHour(in); !errors.HasCode(err, errors.ErrInvalidHour.Code) {
			t.Errorf("ValidateHour(%q): expected INVALID_HOUR, got %v", in, err)
		}
	}
}

func TestValidateResource(t *testing.T) {
	allowed := []string{"Ressource1", "Ressource2", "Ressource3"}

	if err := ValidateResource("Ressource2", allowed); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateResource("Ressource9", allowed); !errors.HasCode(err, errors.ErrInvalidResource.Code) {
		t.Errorf("expected INVALID_RESOURCE, got %v", err)
	}
	if err := ValidateResource("", allowed); err == nil {
		t.Error("empty resource must fail")
	}

	if r, err := ResourceByIndex("2", allowed); err != nil || r != "Ressource3" {
		t.Errorf("ResourceByIndex(2) = %q, %v", r, err)
	}
	if _, err := ResourceByIndex("3", allowed); err == nil {
		t.Error("out of range index must fail")
	}
}

func TestValidateReason(t *testing.T) {
	if err := ValidateReason("Inventaire et valorisation des stocks"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateReason(strings.Repeat("é", MaxReasonLength+1)); !errors.HasCode(err, errors.ErrValidation.Code) {
		t.Errorf("expected VALIDATION_FAILED, got %v", err)
	}
}

func TestValidatePreset(t *testing.T) {
	if p, err := ValidatePreset("week"); err != nil || p != calendar.PresetThisWeek {
		t.Errorf("ValidatePreset(week) = %q, %v", p, err)
	}
	if _, err := ValidatePreset("year"); !errors.HasCode(err, errors.ErrUnknownPreset.Code) {
		t.Errorf("expected UNKNOWN_PRESET, got %v", err)
	}
}

func TestValidateChatID(t *testing.T) {
	if err := ValidateChatID(0); err == nil {
		t.Error("zero chat id must fail")
	}
	if err := ValidateChatID(-100123); err != nil {
		t.Errorf("group chat ids are valid: %v", err)
	}
}
