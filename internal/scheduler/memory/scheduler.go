package memory

import (
	"context"
	"sync"
	"time"

	"github.com/region23/calendar/internal/scheduler"
	"github.com/region23/calendar/pkg/errors"
	"github.com/region23/calendar/pkg/logger"
)

// entry таймер сессии; указатель служит поколением, чтобы
// сработавший старый таймер не удалил перенесенный
type entry struct {
	timer *time.Timer
}

// MemoryScheduler реализует планировщик истечения сессий в памяти
type MemoryScheduler struct {
	timers   map[int64]*entry
	mu       sync.RWMutex
	handler  scheduler.ExpiryHandler
	log      *logger.Logger
	now      func() time.Time
	ctx      context.Context
	cancel   context.CancelFunc
	stopped  bool
	stopOnce sync.Once
}

// NewMemoryScheduler создает новый планировщик в памяти
func NewMemoryScheduler(log *logger.Logger) *MemoryScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	if log == nil {
		log = logger.NewNop()
	}

	return &MemoryScheduler{
		timers: make(map[int64]*entry),
		log:    log,
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetHandler задает обработчик истечения. Вызывается до первого Touch.
func (s *MemoryScheduler) SetHandler(h scheduler.ExpiryHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// SetClock подменяет источник времени, от которого отсчитываются задержки
func (s *MemoryScheduler) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Start запускает планировщик
func (s *MemoryScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return errors.ErrSchedulerUnavailable
	}
	return nil
}

// Touch переносит истечение сессии чата
func (s *MemoryScheduler) Touch(ctx context.Context, chatID int64, expireAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return errors.ErrSchedulerUnavailable
	}

	if e, exists := s.timers[chatID]; exists {
		e.timer.Stop()
		delete(s.timers, chatID)
	}

	delay := expireAt.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	e := &entry{}
	e.timer = time.AfterFunc(delay, func() {
		s.handleExpiry(chatID, e)
	})
	s.timers[chatID] = e
	return nil
}

// Cancel отменяет запланированное истечение
func (s *MemoryScheduler) Cancel(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.timers[chatID]; exists {
		e.timer.Stop()
		delete(s.timers, chatID)
	}

	return nil
}

// ReschedulePending заново планирует истечение всех сохраненных сессий
// относительно их последнего обновления
func (s *MemoryScheduler) ReschedulePending(ctx context.Context, sessions scheduler.SessionLister, ttl time.Duration) error {
	list, err := sessions.ListSessions(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	for chatID, e := range s.timers {
		e.timer.Stop()
		delete(s.timers, chatID)
	}
	s.mu.Unlock()

	for _, session := range list {
		if err := s.Touch(ctx, session.ChatID, session.UpdatedAt.Add(ttl)); err != nil {
			return err
		}
	}

	s.log.Info("Session expiry rescheduled", logger.Int("sessions", len(list)))
	return nil
}

// Stop останавливает планировщик
func (s *MemoryScheduler) Stop() error {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.stopped = true

		for chatID, e := range s.timers {
			e.timer.Stop()
			delete(s.timers, chatID)
		}

		s.cancel()
	})

	return nil
}

// handleExpiry вызывает обработчик, если таймер еще актуален
func (s *MemoryScheduler) handleExpiry(chatID int64, e *entry) {
	s.mu.Lock()
	if s.stopped || s.timers[chatID] != e {
		s.mu.Unlock()
		return
	}
	delete(s.timers, chatID)
	handler := s.handler
	s.mu.Unlock()

	if handler == nil {
		return
	}

	if err := handler.ExpireSession(s.ctx, chatID); err != nil {
		s.log.Error("Failed to expire session",
			logger.Int64("chat_id", chatID),
			logger.Error(err),
		)
	}
}

// GetActiveTimersCount возвращает количество активных таймеров
func (s *MemoryScheduler) GetActiveTimersCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.timers)
}
