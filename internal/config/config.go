package config

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/region23/calendar/pkg/errors"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Calendar CalendarConfig `json:"calendar"`
	Booking  BookingConfig  `json:"booking"`
	Log      LogConfig      `json:"log"`
}

// TelegramConfig содержит настройки Telegram бота
type TelegramConfig struct {
	Token       string `json:"-"`
	WebhookURL  string `json:"webhook_url"`
	SecretToken string `json:"-"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port            string        `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	RateLimitPerMin int           `json:"rate_limit_per_min"`
	RateLimitBurst  int           `json:"rate_limit_burst"`
}

// DatabaseConfig содержит настройки базы данных
type DatabaseConfig struct {
	Path string `json:"path"`
}

// CalendarConfig содержит настройки отображения календаря
type CalendarConfig struct {
	Locale             string        `json:"locale"`
	Resource           string        `json:"resource"`
	Resources          []string      `json:"resources"`
	AccentColor        string        `json:"accent_color"`
	HeaderIconsVisible bool          `json:"header_icons_visible"`
	DateLabelAlignment string        `json:"date_label_alignment"`
	SessionTTL         time.Duration `json:"session_ttl"`
}

// BookingConfig содержит настройки сервиса бронирования
type BookingConfig struct {
	Backend  string        `json:"backend"`
	BaseURL  string        `json:"base_url"`
	APIToken string        `json:"-"`
	Timeout  time.Duration `json:"timeout"`
}

// LogConfig содержит настройки логирования
type LogConfig struct {
	Level string `json:"level"`
	Env   string `json:"env"`
}

// Бэкенды бронирования
const (
	BackendHTTP   = "http"
	BackendMemory = "memory"
)

// Load загружает .env, затем переменные окружения и необязательный config.yaml
func Load() (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, errors.ErrConfigurationInvalid.WithError(err)
		}
	}

	return FromViper(v)
}

// FromViper собирает конфигурацию из готового экземпляра viper
func FromViper(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Telegram: TelegramConfig{
			Token:       v.GetString("TELEGRAM_TOKEN"),
			WebhookURL:  v.GetString("WEBHOOK_URL"),
			SecretToken: v.GetString("WEBHOOK_SECRET"),
		},
		Server: ServerConfig{
			Port:            v.GetString("PORT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:     v.GetDuration("SERVER_IDLE_TIMEOUT"),
			RateLimitPerMin: v.GetInt("RATE_LIMIT_PER_MIN"),
			RateLimitBurst:  v.GetInt("RATE_LIMIT_BURST"),
		},
		Database: DatabaseConfig{
			Path: v.GetString("DB_FILE"),
		},
		Calendar: CalendarConfig{
			Locale:             v.GetString("CALENDAR_LOCALE"),
			Resource:           v.GetString("CALENDAR_RESOURCE"),
			Resources:          splitList(v.GetString("CALENDAR_RESOURCES")),
			AccentColor:        v.GetString("CALENDAR_ACCENT_COLOR"),
			HeaderIconsVisible: v.GetBool("CALENDAR_HEADER_ICONS"),
			DateLabelAlignment: v.GetString("CALENDAR_DATE_ALIGNMENT"),
			SessionTTL:         v.GetDuration("SESSION_TTL"),
		},
		Booking: BookingConfig{
			Backend:  strings.ToLower(v.GetString("BOOKING_BACKEND")),
			BaseURL:  v.GetString("BOOKING_BASE_URL"),
			APIToken: v.GetString("BOOKING_API_TOKEN"),
			Timeout:  v.GetDuration("BOOKING_TIMEOUT"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
			Env:   v.GetString("ENV"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("SERVER_READ_TIMEOUT", 30*time.Second)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30*time.Second)
	v.SetDefault("SERVER_IDLE_TIMEOUT", 120*time.Second)
	v.SetDefault("RATE_LIMIT_PER_MIN", 120)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("DB_FILE", "calendar.db")
	v.SetDefault("CALENDAR_LOCALE", "fr-FR")
	v.SetDefault("CALENDAR_RESOURCE", "Fatoum20")
	v.SetDefault("CALENDAR_RESOURCES", "Ressource1,Ressource2,Ressource3")
	v.SetDefault("CALENDAR_ACCENT_COLOR", "teal")
	v.SetDefault("CALENDAR_HEADER_ICONS", false)
	v.SetDefault("CALENDAR_DATE_ALIGNMENT", "center")
	v.SetDefault("SESSION_TTL", 30*time.Minute)
	v.SetDefault("BOOKING_BACKEND", BackendMemory)
	v.SetDefault("BOOKING_BASE_URL", "")
	v.SetDefault("BOOKING_API_TOKEN", "")
	v.SetDefault("BOOKING_TIMEOUT", 10*time.Second)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ENV", "production")
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return errors.ErrConfigurationInvalid.WithContext("TELEGRAM_TOKEN is required")
	}
	if c.Telegram.WebhookURL == "" {
		return errors.ErrConfigurationInvalid.WithContext("WEBHOOK_URL is required")
	}

	if c.Server.RateLimitPerMin <= 0 || c.Server.RateLimitBurst <= 0 {
		return errors.ErrConfigurationInvalid.WithContext("RATE_LIMIT_PER_MIN and RATE_LIMIT_BURST must be positive")
	}
	if c.Calendar.Resource == "" {
		return errors.ErrConfigurationInvalid.WithContext("CALENDAR_RESOURCE is required")
	}
	if len(c.Calendar.Resources) == 0 {
		return errors.ErrConfigurationInvalid.WithContext("CALENDAR_RESOURCES must list at least one resource")
	}
	if c.Calendar.SessionTTL <= 0 {
		return errors.ErrConfigurationInvalid.WithContext("SESSION_TTL must be positive")
	}

	switch c.Booking.Backend {
	case BackendMemory:
	case BackendHTTP:
		if c.Booking.BaseURL == "" {
			return errors.ErrConfigurationInvalid.WithContext("BOOKING_BASE_URL is required for the http backend")
		}
	default:
		return errors.ErrConfigurationInvalid.WithContext(fmt.Sprintf("unknown BOOKING_BACKEND %q", c.Booking.Backend))
	}

	return nil
}

// IsDevelopment сообщает, запущен ли сервис в режиме разработки
func (c *Config) IsDevelopment() bool {
	return c.Log.Env == "development"
}

// splitList разбирает список через запятую, пропуская пустые элементы
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
