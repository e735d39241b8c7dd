package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/region23/calendar/internal/booking"
	"github.com/region23/calendar/internal/bot/keyboard"
	"github.com/region23/calendar/internal/calendar"
	"github.com/region23/calendar/internal/locale"
	"github.com/region23/calendar/internal/scheduler"
	"github.com/region23/calendar/internal/storage"
	"github.com/region23/calendar/internal/storage/models"
	"github.com/region23/calendar/internal/validation"
	"github.com/region23/calendar/internal/view"
	"github.com/region23/calendar/pkg/errors"
	"github.com/region23/calendar/pkg/logger"
	"github.com/region23/calendar/pkg/metrics"
)

// Settings параметры календаря, общие для всех чатов
type Settings struct {
	Locale     locale.Provider
	Options    view.Options
	Resource   string
	Resources  []string
	SessionTTL time.Duration
	Location   *time.Location
}

// lockStripes число мьютексов, между которыми распределяются чаты
const lockStripes = 256

// Service контроллер календаря: загружает состояние чата, применяет
// переход, сохраняет и перерисовывает сообщение
type Service struct {
	messenger Messenger
	storage   storage.Storage
	backend   booking.ClosureBackend
	expirer   scheduler.SessionExpirer
	settings  Settings
	log       *logger.Logger
	now       func() time.Time
	newKey    func() string
	locks     [lockStripes]sync.Mutex
}

// NewService создает новый экземпляр сервиса
func NewService(
	messenger Messenger,
	storage storage.Storage,
	backend booking.ClosureBackend,
	expirer scheduler.SessionExpirer,
	settings Settings,
	log *logger.Logger,
) *Service {
	if settings.Locale == nil {
		settings.Locale = locale.French()
	}
	if settings.Location == nil {
		settings.Location = time.Local
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Service{
		messenger: messenger,
		storage:   storage,
		backend:   backend,
		expirer:   expirer,
		settings:  settings,
		log:       log,
		now:       time.Now,
		newKey:    uuid.NewString,
	}
}

// SetClock подменяет источник текущего времени
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Locale возвращает локаль сервиса
func (s *Service) Locale() locale.Provider {
	return s.settings.Locale
}

// Location возвращает часовой пояс, в котором разбираются даты
func (s *Service) Location() *time.Location {
	return s.settings.Location
}

// Resources возвращает ресурсы, доступные в форме закрытия
func (s *Service) Resources() []string {
	return s.settings.Resources
}

func (s *Service) clock() time.Time {
	return s.now().In(s.settings.Location)
}

// lock сериализует обработку событий одного чата. Чаты делят
// фиксированный набор мьютексов, поэтому память не растет с числом чатов.
func (s *Service) lock(chatID int64) func() {
	mu := &s.locks[stripe(chatID)]
	mu.Lock()
	return mu.Unlock
}

func stripe(chatID int64) int {
	return int(uint64(chatID) % lockStripes)
}

type reducer func(calendar.State) (calendar.State, error)

// update применяет переход к сохраненной сессии. При ошибке состояние не меняется.
func (s *Service) update(ctx context.Context, chatID int64, fn reducer) error {
	unlock := s.lock(chatID)
	defer unlock()

	session, err := s.load(ctx, chatID)
	if err != nil {
		return err
	}

	next, err := fn(session.State)
	if err != nil {
		return err
	}
	session.State = next

	if err := s.persist(ctx, session); err != nil {
		return err
	}
	return s.render(ctx, session)
}

func (s *Service) load(ctx context.Context, chatID int64) (*models.Session, error) {
	session, ok, err := s.storage.GetSession(ctx, chatID)
	if err != nil {
		metrics.RecordDatabaseOperation("select", "sessions", "error")
		return nil, errors.ErrDatabaseConnection.WithError(err)
	}
	metrics.RecordDatabaseOperation("select", "sessions", "success")

	if !ok {
		return nil, errors.ErrSessionNotFound.WithContext(chatID)
	}
	return session, nil
}

// persist сохраняет сессию и переносит ее истечение
func (s *Service) persist(ctx context.Context, session *models.Session) error {
	now := s.clock()
	session.UpdatedAt = now

	if err := s.storage.SaveSession(ctx, session); err != nil {
		metrics.RecordDatabaseOperation("upsert", "sessions", "error")
		return errors.ErrDatabaseConnection.WithError(err)
	}
	metrics.RecordDatabaseOperation("upsert", "sessions", "success")

	if s.expirer != nil {
		if err := s.expirer.Touch(ctx, session.ChatID, now.Add(s.settings.SessionTTL)); err != nil {
			s.log.Warn("Failed to schedule session expiry",
				logger.Int64("chat_id", session.ChatID),
				logger.Error(err),
			)
		}
	}
	return nil
}

// Screen строит экран для состояния
func (s *Service) Screen(state calendar.State) (keyboard.Screen, error) {
	var grid view.Grid
	if state.Dialog == calendar.DialogNone {
		g, err := view.BuildGrid(state, s.settings.Resource, s.settings.Options, s.settings.Locale)
		if err != nil {
			return keyboard.Screen{}, err
		}
		grid = g
	}
	return keyboard.Render(state, grid, s.settings.Resources, s.settings.Locale), nil
}

func (s *Service) render(ctx context.Context, session *models.Session) error {
	screen, err := s.Screen(session.State)
	if err != nil {
		return err
	}

	if session.HasMessage() {
		return s.messenger.EditMessage(ctx, session.ChatID, session.MessageID, screen.Text, screen.Markup)
	}

	id, err := s.messenger.SendMessage(ctx, session.ChatID, screen.Text, screen.Markup)
	if err != nil {
		return err
	}
	session.MessageID = id
	return s.persist(ctx, session)
}

// OpenCalendar начинает новую сессию: окно "сегодня и завтра" в новом сообщении.
// Черновики предыдущей сессии чата отбрасываются.
func (s *Service) OpenCalendar(ctx context.Context, chatID int64) error {
	if err := validation.ValidateChatID(chatID); err != nil {
		return err
	}

	unlock := s.lock(chatID)
	defer unlock()

	now := s.clock()
	session := &models.Session{
		ChatID:    chatID,
		State:     calendar.NewState(now),
		CreatedAt: now,
	}

	if err := s.render(ctx, session); err != nil {
		return err
	}

	s.refreshActiveSessions(ctx)
	return nil
}

// Navigate сдвигает окно на день назад или вперед
func (s *Service) Navigate(ctx context.Context, chatID int64, direction string) error {
	var shift func(calendar.State) calendar.State
	switch direction {
	case keyboard.NavPrev:
		shift = calendar.State.Previous
	case keyboard.NavNext:
		shift = calendar.State.Next
	default:
		return errors.ErrInvalidCallback.WithContext(direction)
	}

	err := s.update(ctx, chatID, func(st calendar.State) (calendar.State, error) {
		return shift(st), nil
	})
	if err == nil {
		metrics.RecordWindowChange(direction)
	}
	return err
}

// FocusDay показывает часы выбранного дня окна
func (s *Service) FocusDay(ctx context.Context, chatID int64, day time.Time) error {
	return s.update(ctx, chatID, func(st calendar.State) (calendar.State, error) {
		return st.FocusDay(day)
	})
}

// SelectSlot открывает окно деталей ячейки
func (s *Service) SelectSlot(ctx context.Context, chatID int64, day time.Time, hour int) error {
	err := s.update(ctx, chatID, func(st calendar.State) (calendar.State, error) {
		return st.SelectSlot(day, hour)
	})
	if err == nil {
		metrics.RecordSlotSelection()
	}
	return err
}

// CloseSlot закрывает окно деталей
func (s *Service) CloseSlot(ctx context.Context, chatID int64) error {
	return s.update(ctx, chatID, func(st calendar.State) (calendar.State, error) {
		return st.CloseSlot(), nil
	})
}

// OpenFilter открывает выбор окна дат
func (s *Service) OpenFilter(ctx context.Context, chatID int64) error {
	return s.update(ctx, chatID, func(st calendar.State) (calendar.State, error) {
		return st.OpenFilter(), nil
	})
}

// ApplyPreset применяет быстрый фильтр
func (s *Service) ApplyPreset(ctx context.Context, chatID int64, id calendar.PresetID) error {
	err := s.update(ctx, chatID, func(st calendar.State) (calendar.State, error) {
		r, err := calendar.ResolvePreset(id, s.clock(), s.settings.Locale.WeekStart())
		if err != nil {
			return st, err
		}
		return st.ApplyFilter(r.Start, r.End)
	})
	if err == nil {
		metrics.RecordWindowChange("preset")
	}
	return err
}

// AwaitInput ожидает ввод поля следующим текстовым сообщением
func (s *Service) AwaitInput(ctx context.Context, chatID int64, field calendar.InputField) error {
	return s.update(ctx, chatID, func(st calendar.State) (calendar.State, error) {
		return st.AwaitInput(field)
	})
}

// ApplyFilterDraft применяет введенные вручную даты
func (s *Service) ApplyFilterDraft(ctx context.Context, chatID int64) error {
	err := s.update(ctx, chatID, func(st calendar.State) (calendar.State, error) {
		return st.ApplyFilterDraft()
	})
	if err == nil {
		metrics.RecordWindowChange("manual")
	}
	return err
}

// CloseFilter закрывает выбор дат без изменения окна
func (s *Service) CloseFilter(ctx context.Context, chatID int64) error {
	return s.update(ctx, chatID, func(st calendar.State) (calendar.State, error) {
		return st.CloseFilter(), nil
	})
}

// OpenClosure открывает форму закрытия с первым ресурсом списка
func (s *Service) OpenClosure(ctx context.Context, chatID int64) error {
	return s.update(ctx, chatID, func(st calendar.State) (calendar.State, error) {
		def := ""
		if len(s.settings.Resources) > 0 {
			def = s.settings.Resources[0]
		}
		next := st.OpenClosureDialog(def, s.clock())
		next.Closure.Key = s.newKey()
		return next, nil
	})
}

// SelectResource выбирает ресурс в форме закрытия
func (s *Service) SelectResource(ctx context.Context, chatID int64, resource string) error {
	if err := validation.ValidateResource(resource, s.settings.Resources); err != nil {
		return err
	}
	return s.update(ctx, chatID, func(st calendar.State) (calendar.State, error) {
		return st.SetClosureResource(resource)
	})
}

// CancelClosure закрывает форму, черновик теряется
func (s *Service) CancelClosure(ctx context.Context, chatID int64) error {
	return s.update(ctx, chatID, func(st calendar.State) (calendar.State, error) {
		return st.CloseClosureDialog(), nil
	})
}

// SubmitClosure отправляет форму закрытия. При ошибке сервиса бронирования
// форма остается открытой. После принятия закрытия ошибки сохранения и
// отрисовки только логируются: пользователь все равно получает подтверждение,
// а повторная отправка несохраненного черновика идет с тем же ключом.
func (s *Service) SubmitClosure(ctx context.Context, chatID int64) (booking.Receipt, error) {
	unlock := s.lock(chatID)
	defer unlock()

	session, err := s.load(ctx, chatID)
	if err != nil {
		return booking.Receipt{}, err
	}

	req, err := session.State.PendingClosure()
	if err != nil {
		return booking.Receipt{}, err
	}

	receipt, err := s.Submit(ctx, req)
	if err != nil {
		return booking.Receipt{}, err
	}

	log := s.log.WithFields(
		logger.Int64("chat_id", chatID),
		logger.String("receipt_id", receipt.ID),
	)

	session.State = session.State.CloseClosureDialog()
	if err := s.persist(ctx, session); err != nil {
		log.Error("Failed to save session after accepted closure", logger.Error(err))
	} else if err := s.render(ctx, session); err != nil {
		log.Warn("Failed to render calendar after accepted closure", logger.Error(err))
	}

	loc := s.settings.Locale
	text := fmt.Sprintf(loc.Label(locale.MsgSubmitted), req.Resource, loc.ShortDate(req.Start), loc.ShortDate(req.End))
	if err := s.SendText(ctx, chatID, text); err != nil {
		log.Warn("Failed to send closure confirmation", logger.Error(err))
	}

	return receipt, nil
}

// Submit проверяет запрос и передает его сервису бронирования ровно один раз
func (s *Service) Submit(ctx context.Context, req calendar.ClosureRequest) (booking.Receipt, error) {
	if err := req.Validate(); err != nil {
		metrics.RecordClosureSubmission("invalid")
		return booking.Receipt{}, err
	}
	if len(s.settings.Resources) > 0 {
		if err := validation.ValidateResource(req.Resource, s.settings.Resources); err != nil {
			metrics.RecordClosureSubmission("invalid")
			return booking.Receipt{}, errors.ErrValidation.WithError(err).WithContext([]string{calendar.FieldResource})
		}
	}
	if err := validation.ValidateReason(req.Reason); err != nil {
		metrics.RecordClosureSubmission("invalid")
		return booking.Receipt{}, err
	}

	start := time.Now()
	receipt, err := s.backend.SubmitClosure(ctx, req)
	metrics.ClosureSubmitDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RecordClosureSubmission("failed")
		s.log.Error("Closure submission failed",
			logger.String("resource", req.Resource),
			logger.String("start", req.Start.Format(calendar.DateLayout)),
			logger.String("end", req.End.Format(calendar.DateLayout)),
			logger.Error(err),
		)
		if !errors.HasCode(err, errors.ErrSubmissionFailed.Code) {
			err = errors.ErrSubmissionFailed.WithError(err)
		}
		return booking.Receipt{}, err
	}

	metrics.RecordClosureSubmission("accepted")
	s.log.Info("Closure submitted",
		logger.String("resource", req.Resource),
		logger.String("receipt_id", receipt.ID),
		logger.Time("accepted_at", receipt.AcceptedAt),
	)
	return receipt, nil
}

// HandleText записывает свободный текст в ожидающее поле
func (s *Service) HandleText(ctx context.Context, chatID int64, text string) error {
	return s.update(ctx, chatID, func(st calendar.State) (calendar.State, error) {
		switch {
		case st.Awaiting == calendar.InputNone:
			return st, errors.ErrNoPendingInput
		case st.Awaiting.IsDate():
			d, err := s.settings.Locale.ParseDate(text, s.settings.Location)
			if err != nil {
				return st, err
			}
			return st.FillDate(d)
		default:
			if err := validation.ValidateReason(text); err != nil {
				return st, err
			}
			return st.SetClosureReason(text)
		}
	})
}

// ExpireSession удаляет сессию по простою. Сообщение календаря заменяется
// уведомлением; несохраненные черновики теряются.
func (s *Service) ExpireSession(ctx context.Context, chatID int64) error {
	removed, err := s.dropSession(ctx, chatID, "expired")
	if removed {
		metrics.RecordSessionExpired()
	}
	return err
}

// CloseCalendar закрывает календарь по команде пользователя
func (s *Service) CloseCalendar(ctx context.Context, chatID int64) error {
	if s.expirer != nil {
		if err := s.expirer.Cancel(ctx, chatID); err != nil {
			s.log.Warn("Failed to cancel session expiry",
				logger.Int64("chat_id", chatID),
				logger.Error(err),
			)
		}
	}
	_, err := s.dropSession(ctx, chatID, "closed")
	return err
}

// dropSession удаляет сессию и гасит клавиатуру ее сообщения
func (s *Service) dropSession(ctx context.Context, chatID int64, reason string) (bool, error) {
	unlock := s.lock(chatID)
	defer unlock()

	session, ok, err := s.storage.GetSession(ctx, chatID)
	if err != nil {
		return false, errors.ErrDatabaseConnection.WithError(err)
	}
	if !ok {
		return false, nil
	}

	if err := s.storage.DeleteSession(ctx, chatID); err != nil {
		metrics.RecordDatabaseOperation("delete", "sessions", "error")
		return false, errors.ErrDatabaseConnection.WithError(err)
	}
	metrics.RecordDatabaseOperation("delete", "sessions", "success")
	s.refreshActiveSessions(ctx)

	s.log.Info("Session removed",
		logger.Int64("chat_id", chatID),
		logger.String("reason", reason),
		logger.String("dialog", session.State.Dialog.String()),
	)

	if session.HasMessage() {
		screen := keyboard.ExpiredScreen(s.settings.Locale)
		if err := s.messenger.EditMessage(ctx, chatID, session.MessageID, screen.Text, screen.Markup); err != nil {
			return true, err
		}
	}
	return true, nil
}

// StaleSessionAge сессии, простаивавшие дольше, удаляются при старте без уведомления
const StaleSessionAge = 48 * time.Hour

// RestoreSessions удаляет давно брошенные сессии и восстанавливает таймеры
// истечения остальных после перезапуска
func (s *Service) RestoreSessions(ctx context.Context) error {
	n, err := s.storage.DeleteIdleSessions(ctx, s.clock().Add(-StaleSessionAge))
	if err != nil {
		return errors.ErrDatabaseConnection.WithError(err)
	}
	if n > 0 {
		s.log.Info("Stale sessions removed", logger.Int64("count", n))
	}

	if s.expirer == nil {
		s.refreshActiveSessions(ctx)
		return nil
	}
	if err := s.expirer.ReschedulePending(ctx, s.storage, s.settings.SessionTTL); err != nil {
		return err
	}
	s.refreshActiveSessions(ctx)
	return nil
}

// ShowSettings отправляет текущие параметры оформления
func (s *Service) ShowSettings(ctx context.Context, chatID int64) error {
	opts := s.settings.Options
	text := strings.Join([]string{
		s.settings.Locale.Label(locale.LabelSettings),
		fmt.Sprintf("• accent : %s", opts.AccentColor),
		fmt.Sprintf("• icons : %t", opts.HeaderIconsVisible),
		fmt.Sprintf("• alignment : %s", opts.DateLabelAlignment),
		fmt.Sprintf("• locale : %s", s.settings.Locale.Tag()),
		fmt.Sprintf("• %s : %s", s.settings.Locale.Label(locale.LabelResource), s.settings.Resource),
	}, "\n")
	return s.SendText(ctx, chatID, text)
}

// SendText отправляет простое текстовое сообщение
func (s *Service) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := s.messenger.SendMessage(ctx, chatID, text, nil)
	return err
}

// AnswerCallback отвечает на callback query
func (s *Service) AnswerCallback(ctx context.Context, callbackID, text string) error {
	return s.messenger.AnswerCallback(ctx, callbackID, text)
}

// SendError сообщает пользователю о восстановимой ошибке
func (s *Service) SendError(ctx context.Context, chatID int64, err error) {
	if err := s.SendText(ctx, chatID, s.UserMessage(err)); err != nil {
		s.log.Error("Failed to send error message",
			logger.Int64("chat_id", chatID),
			logger.Error(err),
		)
	}
}

// UserMessage переводит ошибку в сообщение для пользователя
func (s *Service) UserMessage(err error) string {
	loc := s.settings.Locale

	ce, ok := errors.GetCalendarError(err)
	if !ok {
		return loc.Label(locale.MsgInternalError)
	}

	switch ce.Code {
	case errors.ErrInvalidRange.Code:
		return loc.Label(locale.MsgInvalidRange)
	case errors.ErrRangeTooLong.Code:
		return loc.Label(locale.MsgRangeTooLong)
	case errors.ErrInvalidDate.Code:
		return loc.Label(locale.MsgInvalidDate)
	case errors.ErrValidation.Code:
		fields := calendar.InvalidFields(ce)
		names := make([]string, 0, len(fields))
		for _, f := range fields {
			names = append(names, loc.FieldName(f))
		}
		return fmt.Sprintf(loc.Label(locale.MsgValidation), strings.Join(names, ", "))
	case errors.ErrSubmissionFailed.Code:
		return loc.Label(locale.MsgSubmissionFailed)
	case errors.ErrSessionNotFound.Code:
		return loc.Label(locale.MsgSessionExpired)
	case errors.ErrNoPendingInput.Code:
		return loc.Label(locale.MsgUseStart)
	case errors.ErrInvalidCallback.Code, errors.ErrUnknownPreset.Code, errors.ErrInvalidSlot.Code,
		errors.ErrInvalidHour.Code, errors.ErrInvalidResource.Code, errors.ErrDialogClosed.Code:
		return loc.Label(locale.MsgUnknownAction)
	default:
		return loc.Label(locale.MsgInternalError)
	}
}

func (s *Service) refreshActiveSessions(ctx context.Context) {
	n, err := s.storage.CountSessions(ctx)
	if err != nil {
		metrics.RecordError("storage", "count_sessions")
		return
	}
	metrics.SetActiveSessions(float64(n))
}

// Close останавливает планировщик и закрывает хранилище
func (s *Service) Close() error {
	var errs []error

	if s.expirer != nil {
		if err := s.expirer.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop scheduler: %w", err))
		}
	}

	if err := s.storage.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors during close: %v", errs)
	}

	return nil
}
