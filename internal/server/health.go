package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/region23/calendar/internal/storage"
	"github.com/region23/calendar/pkg/metrics"
)

const (
	statusHealthy   = "healthy"
	statusWarning   = "warning"
	statusUnhealthy = "unhealthy"

	healthTimeout = 5 * time.Second

	heapWarningBytes   = 512 << 20
	goroutineWarnLimit = 500
)

// HealthResponse ответ /health
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
	Checks    map[string]string `json:"checks"`
	Sessions  *int              `json:"active_sessions,omitempty"`
	Runtime   RuntimeStats      `json:"runtime"`
}

// RuntimeStats снимок состояния процесса
type RuntimeStats struct {
	HeapBytes  uint64 `json:"heap_bytes"`
	Goroutines int    `json:"goroutines"`
	NumGC      uint32 `json:"num_gc"`
	GoVersion  string `json:"go_version"`
}

// HealthChecker проверяет хранилище сессий и процесс
type HealthChecker struct {
	storage   storage.Storage
	startTime time.Time
	version   string
}

// NewHealthChecker создает новый health checker
func NewHealthChecker(store storage.Storage, version string) *HealthChecker {
	return &HealthChecker{
		storage:   store,
		startTime: time.Now(),
		version:   version,
	}
}

// check одна проверка: пустая строка означает что все в порядке
type check struct {
	name     string
	severity string
	run      func(ctx context.Context) string
}

// HealthHandler обрабатывает запросы health check
func (h *HealthChecker) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	stats := readRuntime()

	checks := []check{
		{name: "database", severity: statusUnhealthy, run: h.checkStorage},
		{name: "memory", severity: statusWarning, run: func(context.Context) string {
			if stats.HeapBytes > heapWarningBytes {
				return "heap above 512MB"
			}
			return ""
		}},
		{name: "goroutines", severity: statusWarning, run: func(context.Context) string {
			if stats.Goroutines > goroutineWarnLimit {
				return "goroutine count above 500"
			}
			return ""
		}},
	}

	resp := HealthResponse{
		Status:    statusHealthy,
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Truncate(time.Second).String(),
		Checks:    make(map[string]string, len(checks)),
		Runtime:   stats,
	}

	for _, c := range checks {
		problem := c.run(ctx)
		if problem == "" {
			resp.Checks[c.name] = statusHealthy
			continue
		}
		resp.Checks[c.name] = c.severity + ": " + problem
		resp.Status = worse(resp.Status, c.severity)
	}

	if h.storage != nil && resp.Checks["database"] == statusHealthy {
		if n, err := h.storage.CountSessions(ctx); err == nil {
			metrics.SetActiveSessions(float64(n))
			resp.Sessions = &n
		}
	}

	code := http.StatusOK
	if resp.Status == statusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp)
}

func (h *HealthChecker) checkStorage(ctx context.Context) string {
	if h.storage == nil {
		return ""
	}
	if err := h.storage.Ping(ctx); err != nil {
		return err.Error()
	}
	return ""
}

func readRuntime() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := RuntimeStats{
		HeapBytes:  m.HeapAlloc,
		Goroutines: runtime.NumGoroutine(),
		NumGC:      m.NumGC,
		GoVersion:  runtime.Version(),
	}

	metrics.MemoryUsage.Set(float64(stats.HeapBytes))
	metrics.GoroutinesCount.Set(float64(stats.Goroutines))

	return stats
}

func worse(current, next string) string {
	rank := map[string]int{statusHealthy: 0, statusWarning: 1, statusUnhealthy: 2}
	if rank[next] > rank[current] {
		return next
	}
	return current
}
