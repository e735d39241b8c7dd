package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/region23/calendar/internal/calendar"
	"github.com/region23/calendar/pkg/errors"
	"github.com/region23/calendar/pkg/logger"
)

// HTTPBackend клиент REST API сервиса бронирования
type HTTPBackend struct {
	baseURL    string
	token      string
	httpClient *http.Client
	newKey     func() string
	log        *logger.Logger
}

// NewHTTPBackend создает клиент; token может быть пустым
func NewHTTPBackend(baseURL, token string, httpClient *http.Client) *HTTPBackend {
	if httpClient == nil {
		httpClient = DefaultHTTPClient(0)
	}
	return &HTTPBackend{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
		newKey:     func() string { return uuid.NewString() },
		log:        logger.Default(),
	}
}

// WithLogger задает логгер клиента
func (c *HTTPBackend) WithLogger(log *logger.Logger) *HTTPBackend {
	if log != nil {
		c.log = log
	}
	return c
}

// DefaultHTTPClient http клиент с таймаутом; нулевой таймаут заменяется на 10 секунд
func DefaultHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

type closurePayload struct {
	Resource  string `json:"resource"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

type receiptResponse struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// SubmitClosure отправляет POST {baseURL}/closures с ключом идемпотентности
// черновика; без ключа генерируется новый. Любой ответ кроме 2xx дает
// ErrSubmissionFailed. Тело 2xx ответа, которое не удалось разобрать,
// не отменяет принятие.
func (c *HTTPBackend) SubmitClosure(ctx context.Context, req calendar.ClosureRequest) (Receipt, error) {
	if c.baseURL == "" {
		return Receipt{}, errors.ErrConfigurationInvalid.WithContext("booking base url is empty")
	}

	body, err := json.Marshal(closurePayload{
		Resource:  req.Resource,
		StartDate: req.Start.Format(calendar.DateLayout),
		EndDate:   req.End.Format(calendar.DateLayout),
		Reason:    req.Reason,
	})
	if err != nil {
		return Receipt{}, errors.ErrSubmissionFailed.WithError(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/closures", bytes.NewReader(body))
	if err != nil {
		return Receipt{}, errors.ErrSubmissionFailed.WithError(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	key := req.Key
	if key == "" {
		key = c.newKey()
	}
	httpReq.Header.Set("Idempotency-Key", key)
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Receipt{}, errors.ErrSubmissionFailed.WithError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Receipt{}, errors.ErrSubmissionFailed.
			WithError(fmt.Errorf("booking service unexpected status: %d", resp.StatusCode)).
			WithContext(map[string]interface{}{
				"status": resp.StatusCode,
				"body":   strings.TrimSpace(string(snippet)),
			})
	}

	receipt := Receipt{Status: StatusAccepted, AcceptedAt: time.Now().UTC()}
	if resp.StatusCode == http.StatusNoContent {
		return receipt, nil
	}

	var decoded receiptResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		if err != io.EOF {
			c.log.Warn("Booking service accepted closure with unreadable receipt",
				logger.Int("status", resp.StatusCode),
				logger.String("idempotency_key", key),
				logger.Error(err),
			)
		}
		return receipt, nil
	}
	receipt.ID = decoded.ID
	if decoded.Status != "" {
		receipt.Status = decoded.Status
	}
	if !decoded.AcceptedAt.IsZero() {
		receipt.AcceptedAt = decoded.AcceptedAt
	}
	if receipt.Status == StatusRejected {
		return Receipt{}, errors.ErrSubmissionFailed.WithContext(receipt)
	}
	return receipt, nil
}
