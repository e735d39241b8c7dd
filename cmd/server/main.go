package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/region23/calendar/internal/booking"
	"github.com/region23/calendar/internal/bot"
	"github.com/region23/calendar/internal/bot/service"
	"github.com/region23/calendar/internal/config"
	"github.com/region23/calendar/internal/locale"
	"github.com/region23/calendar/internal/scheduler/memory"
	"github.com/region23/calendar/internal/server"
	"github.com/region23/calendar/internal/storage/sqlite"
	"github.com/region23/calendar/internal/view"
	"github.com/region23/calendar/pkg/logger"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logger.LevelInfo
	}
	log := logger.NewForEnv(level, cfg.Log.Env)
	logger.SetDefault(log)
	defer log.Sync()

	log.Info("Configuration loaded successfully",
		logger.String("env", cfg.Log.Env),
		logger.String("locale", cfg.Calendar.Locale),
		logger.String("booking_backend", cfg.Booking.Backend),
		logger.Bool("webhook", cfg.Telegram.WebhookURL != ""),
	)

	storage, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatal("Failed to initialize storage", logger.Error(err))
	}

	log.Info("Storage initialized successfully", logger.String("path", cfg.Database.Path))

	telegramBot, err := tgbot.New(cfg.Telegram.Token)
	if err != nil {
		log.Fatal("Failed to create Telegram bot", logger.Error(err))
	}

	backend := newBackend(cfg, log)
	expirer := memory.NewMemoryScheduler(log)

	opts := view.Options{
		AccentColor:        cfg.Calendar.AccentColor,
		HeaderIconsVisible: cfg.Calendar.HeaderIconsVisible,
		DateLabelAlignment: view.ParseAlignment(cfg.Calendar.DateLabelAlignment),
	}

	botService := service.NewService(
		service.NewTelegramMessenger(telegramBot),
		storage,
		backend,
		expirer,
		service.Settings{
			Locale:     locale.New(cfg.Calendar.Locale),
			Options:    opts,
			Resource:   cfg.Calendar.Resource,
			Resources:  cfg.Calendar.Resources,
			SessionTTL: cfg.Calendar.SessionTTL,
			Location:   time.Local,
		},
		log,
	)
	defer func() {
		if err := botService.Close(); err != nil {
			log.Error("Error closing service", logger.Error(err))
		}
	}()

	expirer.SetHandler(botService)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := expirer.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler", logger.Error(err))
	}

	if err := botService.RestoreSessions(ctx); err != nil {
		log.Error("Failed to restore sessions", logger.Error(err))
	} else {
		log.Info("Sessions restored successfully")
	}

	dispatcher := bot.NewDispatcher(botService, log)

	if cfg.Telegram.WebhookURL != "" {
		if err := setupWebhook(ctx, telegramBot, cfg.Telegram.WebhookURL, cfg.Telegram.SecretToken); err != nil {
			log.Fatal("Failed to setup webhook", logger.Error(err))
		}
		log.Info("Webhook configured successfully", logger.String("url", cfg.Telegram.WebhookURL))
	} else {
		// без webhook обновления забираются long polling
		if _, err := telegramBot.DeleteWebhook(ctx, &tgbot.DeleteWebhookParams{}); err != nil {
			log.Warn("Failed to delete existing webhook", logger.Error(err))
		}
		telegramBot.RegisterHandlerMatchFunc(func(*tgmodels.Update) bool { return true }, dispatcher.HandleUpdate)
		go telegramBot.Start(ctx)
		log.Info("Long polling started")
	}

	srv := server.New(cfg, log, dispatcher, telegramBot, botService, storage)

	if err := srv.Start(ctx); err != nil {
		log.Error("Server error", logger.Error(err))
		return
	}

	log.Info("Server stopped gracefully")
}

// newBackend выбирает сервис бронирования по конфигурации
func newBackend(cfg *config.Config, log *logger.Logger) booking.ClosureBackend {
	if cfg.Booking.Backend == config.BackendHTTP {
		client := booking.DefaultHTTPClient(cfg.Booking.Timeout)
		return booking.NewHTTPBackend(cfg.Booking.BaseURL, cfg.Booking.APIToken, client).WithLogger(log)
	}
	return booking.NewMemoryBackend()
}

// setupWebhook настраивает webhook для Telegram бота
func setupWebhook(ctx context.Context, b *tgbot.Bot, webhookURL, secret string) error {
	params := &tgbot.SetWebhookParams{
		URL:            webhookURL,
		SecretToken:    secret,
		AllowedUpdates: []string{"message", "callback_query"},
	}

	if _, err := b.SetWebhook(ctx, params); err != nil {
		return err
	}
	return nil
}
