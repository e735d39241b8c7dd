package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/region23/calendar/pkg/logger"
	"github.com/region23/calendar/pkg/metrics"
)

// limiterIdleTTL через сколько неиспользуемый limiter удаляется
const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter ограничивает частоту запросов по ключу (IP адрес)
type RateLimiter struct {
	limiters map[string]*clientLimiter
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	log      *logger.Logger

	cleanupInterval time.Duration
	done            chan struct{}
	closeOnce       sync.Once
}

// NewRateLimiter создает limiter на requestsPerMinute запросов в минуту с запасом burst
func NewRateLimiter(requestsPerMinute, burst int, log *logger.Logger) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1
	}
	if burst <= 0 {
		burst = 1
	}
	if log == nil {
		log = logger.NewNop()
	}

	rl := &RateLimiter{
		limiters:        make(map[string]*clientLimiter),
		limit:           rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:           burst,
		log:             log,
		cleanupInterval: 5 * time.Minute,
		done:            make(chan struct{}),
	}

	go rl.cleanupRoutine()

	return rl
}

// Allow проверяет, разрешен ли запрос для данного ключа
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	cl, exists := rl.limiters[key]
	if !exists {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = cl
	}
	cl.lastAccess = time.Now()
	rl.mu.Unlock()

	return cl.limiter.Allow()
}

// Size возвращает количество отслеживаемых ключей
func (rl *RateLimiter) Size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) cleanupRoutine() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now().Add(-limiterIdleTTL))
		case <-rl.done:
			return
		}
	}
}

// cleanup удаляет limiters, не использовавшиеся с cutoff
func (rl *RateLimiter) cleanup(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	var cleaned int
	for key, cl := range rl.limiters {
		if cl.lastAccess.Before(cutoff) {
			delete(rl.limiters, key)
			cleaned++
		}
	}

	if cleaned > 0 {
		rl.log.Debug("Cleaned up rate limiters",
			logger.Int("cleaned_count", cleaned),
			logger.Int("remaining_count", len(rl.limiters)),
		)
	}
}

// Close останавливает cleanup routine
func (rl *RateLimiter) Close() {
	rl.closeOnce.Do(func() { close(rl.done) })
}

// HTTPRateLimitMiddleware создает HTTP middleware для rate limiting по IP
func HTTPRateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r)

			if !limiter.Allow(key) {
				metrics.RateLimited.Inc()
				limiter.log.Warn("Rate limit exceeded",
					logger.String("ip", key),
					logger.String("user_agent", r.UserAgent()),
				)

				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP извлекает реальный IP адрес из запроса
func ClientIP(r *http.Request) string {
	headers := []string{
		"CF-Connecting-IP",
		"X-Forwarded-For",
		"X-Real-IP",
	}

	for _, header := range headers {
		ip := r.Header.Get(header)
		if ip == "" {
			continue
		}
		// X-Forwarded-For может содержать несколько IP через запятую
		first, _, _ := strings.Cut(ip, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
