package bot

import (
	"context"

	"github.com/region23/calendar/internal/bot/handlers"
	"github.com/region23/calendar/internal/bot/service"
	"github.com/region23/calendar/pkg/logger"
	"github.com/region23/calendar/pkg/metrics"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Dispatcher управляет обработкой входящих обновлений от Telegram
type Dispatcher struct {
	startHandler    *handlers.StartHandler
	textHandler     *handlers.TextHandler
	callbackHandler *handlers.CallbackHandler
	defaultHandler  *handlers.DefaultHandler
	log             *logger.Logger
}

// NewDispatcher создает новый диспетчер обновлений
func NewDispatcher(service *service.Service, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewNop()
	}
	return &Dispatcher{
		startHandler:    handlers.NewStartHandler(service, log),
		textHandler:     handlers.NewTextHandler(service, log),
		callbackHandler: handlers.NewCallbackHandler(service, log),
		defaultHandler:  handlers.NewDefaultHandler(service, log),
		log:             log,
	}
}

// HandleUpdate обрабатывает входящее обновление от Telegram
func (d *Dispatcher) HandleUpdate(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		d.log.Debug("Received callback query",
			logger.String("data", update.CallbackQuery.Data),
		)
		metrics.RecordRequest("callback", "received")
		d.callbackHandler.Handle(ctx, bot, update)
		return
	}

	if update.Message != nil {
		d.log.Debug("Received message",
			logger.Int64("chat_id", update.Message.Chat.ID),
			logger.String("text", update.Message.Text),
		)

		switch {
		case handlers.IsCommand(update.Message.Text):
			metrics.RecordRequest("command", "received")
			d.startHandler.Handle(ctx, bot, update)
		case update.Message.Text != "":
			metrics.RecordRequest("text", "received")
			d.textHandler.Handle(ctx, bot, update)
		default:
			metrics.RecordRequest("default", "received")
			d.defaultHandler.Handle(ctx, bot, update)
		}
		return
	}

	d.log.Debug("Received unknown update type", logger.Int64("update_id", update.ID))
}
