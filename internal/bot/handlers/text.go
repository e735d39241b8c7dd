package handlers

import (
	"context"

	botservice "github.com/region23/calendar/internal/bot/service"
	"github.com/region23/calendar/pkg/logger"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// TextHandler записывает свободный текст в поле, ожидающее ввода
type TextHandler struct {
	service *botservice.Service
	log     *logger.Logger
}

// NewTextHandler создает новый обработчик текста
func NewTextHandler(service *botservice.Service, log *logger.Logger) *TextHandler {
	return &TextHandler{service: service, log: log}
}

// Handle обрабатывает текстовые сообщения
func (h *TextHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	chatID := update.Message.Chat.ID

	if err := h.service.HandleText(ctx, chatID, update.Message.Text); err != nil {
		h.log.Debug("Text input rejected",
			logger.Int64("chat_id", chatID),
			logger.Error(err),
		)
		h.service.SendError(ctx, chatID, err)
	}
}
