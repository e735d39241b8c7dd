package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/region23/calendar/internal/calendar"
	"github.com/region23/calendar/pkg/errors"
)

// MemoryBackend принимает закрытия в памяти процесса (режим разработки и тесты)
type MemoryBackend struct {
	mu       sync.Mutex
	requests []calendar.ClosureRequest
	fail     error
}

// NewMemoryBackend создает пустой backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// SetFailure заставляет последующие вызовы возвращать ошибку; nil снимает отказ
func (m *MemoryBackend) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

func (m *MemoryBackend) SubmitClosure(ctx context.Context, req calendar.ClosureRequest) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, errors.ErrSubmissionFailed.WithError(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if m.fail != nil {
		return Receipt{}, errors.ErrSubmissionFailed.WithError(m.fail)
	}

	return Receipt{
		ID:         uuid.NewString(),
		Status:     StatusAccepted,
		AcceptedAt: time.Now().UTC(),
	}, nil
}

// Requests возвращает копию всех полученных запросов, включая отклоненные
func (m *MemoryBackend) Requests() []calendar.ClosureRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]calendar.ClosureRequest(nil), m.requests...)
}
