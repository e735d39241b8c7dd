package handlers

import (
	"context"

	"github.com/region23/calendar/internal/bot/keyboard"
	botservice "github.com/region23/calendar/internal/bot/service"
	"github.com/region23/calendar/internal/calendar"
	"github.com/region23/calendar/internal/validation"
	"github.com/region23/calendar/internal/view"
	"github.com/region23/calendar/pkg/errors"
	"github.com/region23/calendar/pkg/logger"
	"github.com/region23/calendar/pkg/metrics"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// CallbackHandler обрабатывает callback query от inline кнопок календаря
type CallbackHandler struct {
	service *botservice.Service
	log     *logger.Logger
}

// NewCallbackHandler создает новый обработчик callback query
func NewCallbackHandler(service *botservice.Service, log *logger.Logger) *CallbackHandler {
	return &CallbackHandler{service: service, log: log}
}

// Handle разбирает callback данные и применяет соответствующий переход
func (h *CallbackHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	cb := update.CallbackQuery
	chatID, ok := callbackChatID(cb)
	if !ok {
		h.log.Warn("Callback query without chat", logger.String("data", cb.Data))
		return
	}

	err := h.dispatch(ctx, chatID, cb.Data)

	// ответ убирает индикатор загрузки на кнопке
	if aerr := h.service.AnswerCallback(ctx, cb.ID, ""); aerr != nil {
		h.log.Warn("Failed to answer callback query",
			logger.String("callback_id", cb.ID),
			logger.Error(aerr),
		)
	}

	if err != nil {
		h.log.Info("Callback rejected",
			logger.Int64("chat_id", chatID),
			logger.String("data", cb.Data),
			logger.Error(err),
		)
		metrics.RecordError("callback", errorCode(err))
		h.service.SendError(ctx, chatID, err)
	}
}

func (h *CallbackHandler) dispatch(ctx context.Context, chatID int64, data string) error {
	cb, err := keyboard.Decode(data)
	if err != nil {
		return err
	}

	switch cb.Action {
	case keyboard.ActionNav:
		return h.service.Navigate(ctx, chatID, cb.Arg(0))

	case keyboard.ActionFocus:
		day, err := validation.ValidateDate(cb.Arg(0), h.service.Location())
		if err != nil {
			return err
		}
		return h.service.FocusDay(ctx, chatID, day)

	case keyboard.ActionCell:
		day, err := validation.ValidateDate(cb.Arg(0), h.service.Location())
		if err != nil {
			return err
		}
		hour, err := validation.ValidateHour(cb.Arg(1))
		if err != nil {
			return err
		}
		return h.service.SelectSlot(ctx, chatID, day, hour)

	case keyboard.ActionSlot:
		if cb.Arg(0) != keyboard.StepClose {
			return errors.ErrInvalidCallback.WithContext(data)
		}
		return h.service.CloseSlot(ctx, chatID)

	case keyboard.ActionFilter:
		return h.filter(ctx, chatID, cb)

	case keyboard.ActionPreset:
		id, err := validation.ValidatePreset(cb.Arg(0))
		if err != nil {
			return err
		}
		return h.service.ApplyPreset(ctx, chatID, id)

	case keyboard.ActionClosure:
		return h.closure(ctx, chatID, cb)

	case keyboard.ActionRes:
		resource, err := validation.ResourceByIndex(cb.Arg(0), h.service.Resources())
		if err != nil {
			return err
		}
		return h.service.SelectResource(ctx, chatID, resource)

	case keyboard.ActionIcon:
		switch cb.Arg(0) {
		case view.IconSettings:
			return h.service.ShowSettings(ctx, chatID)
		case view.IconSearch:
			return h.service.OpenFilter(ctx, chatID)
		}
		return errors.ErrInvalidCallback.WithContext(data)

	case keyboard.ActionNoop:
		return nil
	}

	return errors.ErrInvalidCallback.WithContext(data)
}

func (h *CallbackHandler) filter(ctx context.Context, chatID int64, cb keyboard.Callback) error {
	switch cb.Arg(0) {
	case keyboard.StepOpen:
		return h.service.OpenFilter(ctx, chatID)
	case keyboard.StepStart:
		return h.service.AwaitInput(ctx, chatID, calendar.InputFilterStart)
	case keyboard.StepEnd:
		return h.service.AwaitInput(ctx, chatID, calendar.InputFilterEnd)
	case keyboard.StepApply:
		return h.service.ApplyFilterDraft(ctx, chatID)
	case keyboard.StepClose:
		return h.service.CloseFilter(ctx, chatID)
	}
	return errors.ErrInvalidCallback.WithContext(cb.Arg(0))
}

func (h *CallbackHandler) closure(ctx context.Context, chatID int64, cb keyboard.Callback) error {
	switch cb.Arg(0) {
	case keyboard.StepOpen:
		return h.service.OpenClosure(ctx, chatID)
	case keyboard.StepStart:
		return h.service.AwaitInput(ctx, chatID, calendar.InputClosureStart)
	case keyboard.StepEnd:
		return h.service.AwaitInput(ctx, chatID, calendar.InputClosureEnd)
	case keyboard.StepReason:
		return h.service.AwaitInput(ctx, chatID, calendar.InputClosureReason)
	case keyboard.StepSubmit:
		_, err := h.service.SubmitClosure(ctx, chatID)
		return err
	case keyboard.StepCancel:
		return h.service.CancelClosure(ctx, chatID)
	}
	return errors.ErrInvalidCallback.WithContext(cb.Arg(0))
}

// callbackChatID извлекает чат из сообщения с кнопкой, в том числе недоступного
func callbackChatID(cb *models.CallbackQuery) (int64, bool) {
	switch {
	case cb.Message.Message != nil:
		return cb.Message.Message.Chat.ID, true
	case cb.Message.InaccessibleMessage != nil:
		return cb.Message.InaccessibleMessage.Chat.ID, true
	default:
		return 0, false
	}
}

func errorCode(err error) string {
	if ce, ok := errors.GetCalendarError(err); ok {
		return ce.Code
	}
	return "internal"
}
