package handlers

import (
	"context"

	botservice "github.com/region23/calendar/internal/bot/service"
	"github.com/region23/calendar/internal/locale"
	"github.com/region23/calendar/pkg/logger"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// DefaultHandler обрабатывает неопознанные сообщения
type DefaultHandler struct {
	service *botservice.Service
	log     *logger.Logger
}

// NewDefaultHandler создает новый обработчик по умолчанию
func NewDefaultHandler(service *botservice.Service, log *logger.Logger) *DefaultHandler {
	return &DefaultHandler{service: service, log: log}
}

// Handle напоминает, как открыть календарь
func (h *DefaultHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	message := h.service.Locale().Label(locale.MsgUseStart)
	if err := h.service.SendText(ctx, chatID, message); err != nil {
		h.log.Error("Failed to send default message",
			logger.Int64("chat_id", chatID),
			logger.Error(err),
		)
	}
}
