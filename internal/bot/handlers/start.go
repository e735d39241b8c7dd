package handlers

import (
	"context"
	"strings"

	botservice "github.com/region23/calendar/internal/bot/service"
	"github.com/region23/calendar/pkg/logger"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Команды бота
const (
	CommandStart    = "/start"
	CommandCalendar = "/calendar"
	CommandSettings = "/settings"
	CommandStop     = "/stop"
)

// StartHandler обрабатывает команды бота
type StartHandler struct {
	service *botservice.Service
	log     *logger.Logger
}

// NewStartHandler создает новый обработчик команд
func NewStartHandler(service *botservice.Service, log *logger.Logger) *StartHandler {
	return &StartHandler{service: service, log: log}
}

// IsCommand сообщает, обрабатывает ли StartHandler этот текст.
// Команды в группах приходят с суффиксом @имя_бота.
func IsCommand(text string) bool {
	switch command(text) {
	case CommandStart, CommandCalendar, CommandSettings, CommandStop:
		return true
	default:
		return false
	}
}

func command(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return cmd
}

// Handle открывает, закрывает календарь или показывает настройки
func (h *StartHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	var err error
	switch command(update.Message.Text) {
	case CommandStart, CommandCalendar:
		err = h.service.OpenCalendar(ctx, chatID)
	case CommandSettings:
		err = h.service.ShowSettings(ctx, chatID)
	case CommandStop:
		err = h.service.CloseCalendar(ctx, chatID)
	default:
		return
	}

	if err != nil {
		h.log.Error("Failed to handle command",
			logger.Int64("chat_id", chatID),
			logger.String("command", update.Message.Text),
			logger.Error(err),
		)
		h.service.SendError(ctx, chatID, err)
	}
}
