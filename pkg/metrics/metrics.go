package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики календаря
var (
	// Общие метрики
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calendar_requests_total",
			Help: "Общее количество обработанных событий бота",
		},
		[]string{"handler", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "calendar_request_duration_seconds",
			Help:    "Время обработки событий бота в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler"},
	)

	// Метрики окна и слотов
	WindowChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calendar_window_changes_total",
			Help: "Изменения видимого окна дат",
		},
		[]string{"source"}, // previous, next, preset, manual
	)

	SlotSelections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "calendar_slot_selections_total",
			Help: "Количество открытий окна деталей слота",
		},
	)

	// Метрики закрытий
	ClosureSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calendar_closure_submissions_total",
			Help: "Отправки закрытий ресурса",
		},
		[]string{"status"}, // accepted, invalid, failed
	)

	ClosureSubmitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "calendar_closure_submit_duration_seconds",
			Help:    "Время ответа сервиса бронирования",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Метрики сессий
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "calendar_active_sessions",
			Help: "Количество активных сессий календаря",
		},
	)

	ExpiredSessions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "calendar_expired_sessions_total",
			Help: "Количество сессий, удаленных по простою",
		},
	)

	// Метрики базы данных
	DatabaseOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calendar_database_operations_total",
			Help: "Общее количество операций с базой данных",
		},
		[]string{"operation", "table", "status"},
	)

	// Метрики производительности
	MemoryUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "calendar_memory_usage_bytes",
			Help: "Использование памяти в байтах",
		},
	)

	GoroutinesCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "calendar_goroutines_count",
			Help: "Количество активных горутин",
		},
	)

	// Метрики ошибок
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calendar_errors_total",
			Help: "Общее количество ошибок",
		},
		[]string{"component", "error_type"},
	)

	// Метрики HTTP сервера
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calendar_http_requests_total",
			Help: "Общее количество HTTP запросов",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "calendar_http_request_duration_seconds",
			Help:    "Время обработки HTTP запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "calendar_http_rate_limited_total",
			Help: "Запросы, отклоненные ограничителем частоты",
		},
	)
)

// RecordRequest записывает метрику обработки события
func RecordRequest(handler, status string) {
	RequestsTotal.WithLabelValues(handler, status).Inc()
}

// RecordWindowChange записывает смену окна дат
func RecordWindowChange(source string) {
	WindowChanges.WithLabelValues(source).Inc()
}

// RecordSlotSelection записывает выбор слота
func RecordSlotSelection() {
	SlotSelections.Inc()
}

// RecordClosureSubmission записывает результат отправки закрытия
func RecordClosureSubmission(status string) {
	ClosureSubmissions.WithLabelValues(status).Inc()
}

// RecordSessionExpired записывает истечение сессии
func RecordSessionExpired() {
	ExpiredSessions.Inc()
}

// RecordDatabaseOperation записывает метрику операции с БД
func RecordDatabaseOperation(operation, table, status string) {
	DatabaseOperations.WithLabelValues(operation, table, status).Inc()
}

// RecordError записывает метрику ошибки
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// RecordHTTPRequest записывает метрику HTTP запроса
func RecordHTTPRequest(method, endpoint, status string) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
}

// SetActiveSessions устанавливает количество активных сессий
func SetActiveSessions(count float64) {
	ActiveSessions.Set(count)
}
