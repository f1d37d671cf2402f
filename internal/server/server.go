// Package server отдает ядро записи на прием по HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitalis/turnos/internal/appointments"
	"github.com/vitalis/turnos/internal/catalog"
	"github.com/vitalis/turnos/internal/config"
	"github.com/vitalis/turnos/internal/middleware"
	"github.com/vitalis/turnos/pkg/logger"
)

// Server представляет HTTP сервер с middleware
type Server struct {
	httpServer    *http.Server
	config        *config.Config
	logger        *logger.Logger
	store         *appointments.Store
	catalog       *catalog.Catalog
	rateLimiter   *middleware.RateLimiter
	proxies       middleware.ProxyTrust
	healthChecker *HealthChecker
	confirmerFor  func(r *http.Request) *queryConfirmer
}

// New создает новый HTTP сервер
func New(cfg *config.Config, log *logger.Logger, store *appointments.Store, cat *catalog.Catalog, version string) *Server {
	// Конфигурация уже проверена в config.Load
	trusted, _ := cfg.TrustedProxies()

	s := &Server{
		config:        cfg,
		logger:        log,
		store:         store,
		catalog:       cat,
		rateLimiter:   middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, log),
		proxies:       middleware.NewProxyTrust(trusted),
		healthChecker: NewHealthChecker(store, cat, version),
		confirmerFor:  newQueryConfirmer,
	}

	s.httpServer = &http.Server{
		Addr:           ":" + cfg.Server.Port,
		Handler:        s.Routes(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	return s
}

// Routes настраивает маршруты с middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(middleware.CORS(s.config.Origins()))
	r.Use(middleware.Prometheus)

	r.Get("/health", s.healthChecker.HealthHandler)
	r.Handle("/metrics", promhttp.Handler())

	// Статический каталог процедур
	r.Handle("/json/*", http.FileServer(http.Dir(s.config.Server.StaticDir)))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(s.rateLimiter, s.proxies))

		r.Get("/appointments", s.handleListAppointments)
		r.Post("/appointments", s.handleCreateAppointment)
		r.Delete("/appointments", s.handleClearAppointments)
		r.Delete("/appointments/{id}", s.handleDeleteAppointment)

		r.Post("/validate/{field}", s.handleValidateField)
		r.Get("/profile", s.handleProfile)
		r.Get("/summary", s.handleSummary)
		r.Get("/treatments", s.handleTreatments)
		r.Get("/options", s.handleOptions)
	})

	return r
}

// Start запускает сервер и блокируется до отмены контекста или ошибки
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server", logger.String("addr", s.httpServer.Addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Close()
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
