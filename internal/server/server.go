package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/region23/calendar/internal/bot"
	"github.com/region23/calendar/internal/bot/service"
	"github.com/region23/calendar/internal/config"
	"github.com/region23/calendar/internal/middleware"
	"github.com/region23/calendar/internal/storage"
	"github.com/region23/calendar/pkg/logger"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Version версия сборки, отдается в /health
var Version = "dev"

// maxBodyBytes ограничение размера тела запроса
const maxBodyBytes = 1 << 20

// Server представляет HTTP сервер с middleware
type Server struct {
	httpServer    *http.Server
	config        *config.Config
	logger        *logger.Logger
	rateLimiter   *middleware.RateLimiter
	healthChecker *HealthChecker
	dispatcher    *bot.Dispatcher
	telegramBot   *tgbot.Bot
	service       *service.Service
}

// New создает новый HTTP сервер
func New(
	cfg *config.Config,
	log *logger.Logger,
	dispatcher *bot.Dispatcher,
	telegramBot *tgbot.Bot,
	svc *service.Service,
	store storage.Storage,
) *Server {
	if log == nil {
		log = logger.NewNop()
	}

	server := &Server{
		config:        cfg,
		logger:        log,
		rateLimiter:   middleware.NewRateLimiter(cfg.Server.RateLimitPerMin, cfg.Server.RateLimitBurst, log),
		healthChecker: NewHealthChecker(store, Version),
		dispatcher:    dispatcher,
		telegramBot:   telegramBot,
		service:       svc,
	}

	server.httpServer = &http.Server{
		Addr:           ":" + cfg.Server.Port,
		Handler:        server.setupRoutes(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	return server
}

// Handler возвращает корневой обработчик со всеми middleware
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// setupRoutes настраивает маршруты с middleware
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthChecker.HealthHandler)
	mux.Handle("POST /webhook", s.webhookAuthMiddleware(http.HandlerFunc(s.handleWebhook)))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/days", s.handleDays)
	mux.HandleFunc("GET /api/presets/{id}", s.handlePreset)
	mux.HandleFunc("GET /api/grid", s.handleGrid)
	mux.HandleFunc("GET /api/slots", s.handleSlot)
	mux.HandleFunc("POST /api/closures", s.handleSubmitClosure)

	return s.applyMiddleware(mux)
}

// applyMiddleware применяет middleware; последний обернутый выполняется первым
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	h := handler
	h = middleware.PrometheusMiddleware(h)
	h = middleware.HTTPRateLimitMiddleware(s.rateLimiter)(h)
	h = s.requestValidationMiddleware(h)
	h = s.loggingMiddleware(h)
	h = s.securityHeadersMiddleware(h)
	return h
}

// handleWebhook обрабатывает Telegram webhook
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var update tgmodels.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&update); err != nil {
		s.logger.Warn("Failed to decode Telegram update",
			logger.Error(err),
			logger.String("remote_addr", middleware.ClientIP(r)),
		)
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if s.dispatcher != nil {
		s.dispatcher.HandleUpdate(ctx, s.telegramBot, &update)
	}

	s.logger.Debug("Webhook processed",
		logger.Int64("update_id", update.ID),
		logger.Duration("processing_time", time.Since(start)),
	)

	w.WriteHeader(http.StatusOK)
}

// Start запускает сервер и блокируется до отмены контекста
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		logger.String("addr", s.httpServer.Addr),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown корректно завершает работу сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	s.rateLimiter.Close()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Error during server shutdown", logger.Error(err))
		return err
	}

	s.logger.Info("HTTP server shut down successfully")
	return nil
}
