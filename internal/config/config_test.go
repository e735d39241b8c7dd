package config

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/region23/calendar/pkg/errors"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("WEBHOOK_URL", "https://example.org/webhook")
}

func TestFromViper_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromViper(viper.New())
	if err != nil {
		t.Fatalf("FromViper returned error: %v", err)
	}

	if cfg.Calendar.Locale != "fr-FR" || cfg.Calendar.Resource != "Fatoum20" {
		t.Errorf("unexpected calendar defaults %+v", cfg.Calendar)
	}
	want := []string{"Ressource1", "Ressource2", "Ressource3"}
	if !reflect.DeepEqual(cfg.Calendar.Resources, want) {
		t.Errorf("resources = %v, want %v", cfg.Calendar.Resources, want)
	}
	if cfg.Calendar.SessionTTL != 30*time.Minute {
		t.Errorf("unexpected session ttl %v", cfg.Calendar.SessionTTL)
	}
	if cfg.Booking.Backend != BackendMemory {
		t.Errorf("unexpected backend %q", cfg.Booking.Backend)
	}
	if cfg.Server.Port != "8080" || cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("unexpected server defaults %+v", cfg.Server)
	}
}

func TestFromViper_EnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("CALENDAR_RESOURCES", " Salle A , ,Salle B")
	t.Setenv("CALENDAR_HEADER_ICONS", "true")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("BOOKING_BACKEND", "HTTP")
	t.Setenv("BOOKING_BASE_URL", "https://booking.example.org/api")

	cfg, err := FromViper(viper.New())
	if err != nil {
		t.Fatalf("FromViper returned error: %v", err)
	}

	if !reflect.DeepEqual(cfg.Calendar.Resources, []string{"Salle A", "Salle B"}) {
		t.Errorf("unexpected resources %v", cfg.Calendar.Resources)
	}
	if !cfg.Calendar.HeaderIconsVisible {
		t.Error("header icons must be enabled")
	}
	if cfg.Calendar.SessionTTL != 5*time.Minute {
		t.Errorf("unexpected ttl %v", cfg.Calendar.SessionTTL)
	}
	if cfg.Booking.Backend != BackendHTTP {
		t.Errorf("backend must be normalised, got %q", cfg.Booking.Backend)
	}
}

func TestFromViper_ConfigFile(t *testing.T) {
	setRequired(t)

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader("calendar_resource: Fatoum21\nlog_level: debug\n")); err != nil {
		t.Fatal(err)
	}

	cfg, err := FromViper(v)
	if err != nil {
		t.Fatalf("FromViper returned error: %v", err)
	}
	if cfg.Calendar.Resource != "Fatoum21" || cfg.Log.Level != "debug" {
		t.Errorf("config file values ignored: %+v %+v", cfg.Calendar, cfg.Log)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing token", map[string]string{"TELEGRAM_TOKEN": ""}},
		{"missing webhook", map[string]string{"WEBHOOK_URL": ""}},
		{"http without url", map[string]string{"BOOKING_BACKEND": "http"}},
		{"unknown backend", map[string]string{"BOOKING_BACKEND": "grpc"}},
		{"empty resources", map[string]string{"CALENDAR_RESOURCES": " , "}},
		{"zero ttl", map[string]string{"SESSION_TTL": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := FromViper(viper.New())
			if !errors.HasCode(err, errors.ErrConfigurationInvalid.Code) {
				t.Errorf("expected CONFIGURATION_INVALID, got %v", err)
			}
		})
	}
}
