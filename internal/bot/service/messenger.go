package service

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/region23/calendar/pkg/errors"
)

// Messenger отправляет и редактирует сообщения чата
type Messenger interface {
	// SendMessage отправляет сообщение и возвращает его id
	SendMessage(ctx context.Context, chatID int64, text string, markup tgmodels.ReplyMarkup) (int, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, markup tgmodels.ReplyMarkup) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// TelegramMessenger реализация Messenger через Bot API
type TelegramMessenger struct {
	bot *bot.Bot
}

// NewTelegramMessenger создает Messenger поверх бота
func NewTelegramMessenger(b *bot.Bot) *TelegramMessenger {
	return &TelegramMessenger{bot: b}
}

// SendMessage отправляет сообщение пользователю
func (m *TelegramMessenger) SendMessage(ctx context.Context, chatID int64, text string, markup tgmodels.ReplyMarkup) (int, error) {
	params := &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	}

	msg, err := m.bot.SendMessage(ctx, params)
	if err != nil {
		return 0, errors.ErrTelegramAPI.WithError(err)
	}
	return msg.ID, nil
}

// EditMessage заменяет текст и клавиатуру сообщения. Неизмененное
// содержимое Telegram считает ошибкой; здесь это не ошибка.
func (m *TelegramMessenger) EditMessage(ctx context.Context, chatID int64, messageID int, text string, markup tgmodels.ReplyMarkup) error {
	params := &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: markup,
	}

	if _, err := m.bot.EditMessageText(ctx, params); err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return nil
		}
		return errors.ErrTelegramAPI.WithError(err)
	}
	return nil
}

// AnswerCallback отвечает на callback query
func (m *TelegramMessenger) AnswerCallback(ctx context.Context, callbackID, text string) error {
	params := &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	}

	if _, err := m.bot.AnswerCallbackQuery(ctx, params); err != nil {
		return errors.ErrTelegramAPI.WithError(err)
	}
	return nil
}
