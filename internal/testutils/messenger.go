package testutils

import (
	"context"
	"fmt"
	"sync"

	tgmodels "github.com/go-telegram/bot/models"
)

// SentMessage сообщение, отправленное или отредактированное через FakeMessenger
type SentMessage struct {
	ChatID    int64
	MessageID int
	Text      string
	Markup    *tgmodels.InlineKeyboardMarkup
	Edited    bool
}

// FakeMessenger записывает сообщения вместо отправки в Telegram
type FakeMessenger struct {
	mu        sync.Mutex
	nextID    int
	messages  []SentMessage
	callbacks []string
	fail      error
}

// NewFakeMessenger создает пустой FakeMessenger
func NewFakeMessenger() *FakeMessenger {
	return &FakeMessenger{nextID: 100}
}

// SetFailure заставляет все вызовы возвращать ошибку
func (f *FakeMessenger) SetFailure(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = err
}

func (f *FakeMessenger) SendMessage(ctx context.Context, chatID int64, text string, markup tgmodels.ReplyMarkup) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail != nil {
		return 0, f.fail
	}

	f.nextID++
	f.messages = append(f.messages, SentMessage{
		ChatID:    chatID,
		MessageID: f.nextID,
		Text:      text,
		Markup:    inline(markup),
	})
	return f.nextID, nil
}

func (f *FakeMessenger) EditMessage(ctx context.Context, chatID int64, messageID int, text string, markup tgmodels.ReplyMarkup) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail != nil {
		return f.fail
	}

	f.messages = append(f.messages, SentMessage{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		Markup:    inline(markup),
		Edited:    true,
	})
	return nil
}

func (f *FakeMessenger) AnswerCallback(ctx context.Context, callbackID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail != nil {
		return f.fail
	}
	f.callbacks = append(f.callbacks, callbackID)
	return nil
}

// Messages возвращает копию всех сообщений
func (f *FakeMessenger) Messages() []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SentMessage(nil), f.messages...)
}

// Last возвращает последнее сообщение
func (f *FakeMessenger) Last() (SentMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.messages) == 0 {
		return SentMessage{}, fmt.Errorf("no messages sent")
	}
	return f.messages[len(f.messages)-1], nil
}

// Answered возвращает id отвеченных callback query
func (f *FakeMessenger) Answered() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.callbacks...)
}

// HasButton ищет кнопку с callback данными в клавиатуре
func (m SentMessage) HasButton(data string) bool {
	if m.Markup == nil {
		return false
	}
	for _, row := range m.Markup.InlineKeyboard {
		for _, b := range row {
			if b.CallbackData == data {
				return true
			}
		}
	}
	return false
}

func inline(markup tgmodels.ReplyMarkup) *tgmodels.InlineKeyboardMarkup {
	m, _ := markup.(*tgmodels.InlineKeyboardMarkup)
	return m
}
