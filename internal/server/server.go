// Package server содержит HTTP API сервиса: маршруты, middleware,
// запуск и корректную остановку.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/socialcredit/internal/common"
	"serotonyl.ru/socialcredit/internal/config"
	"serotonyl.ru/socialcredit/internal/features/admin"
	"serotonyl.ru/socialcredit/internal/features/monitoring"
	"serotonyl.ru/socialcredit/internal/features/socialcredit"
	"serotonyl.ru/socialcredit/internal/metrics"
	"serotonyl.ru/socialcredit/internal/server/middleware"
)

// HealthFunc проверяет доступность хранилища.
type HealthFunc func(ctx context.Context) error

// Deps — обработчики и сервисы, из которых собирается API.
// Monitoring может быть nil (FEATURE_MONITORING_ENABLED=false).
type Deps struct {
	Scores     *socialcredit.Handler
	Monitoring *monitoring.Handler
	Admin      *admin.Handler
	Metrics    *metrics.Manager
	Health     HealthFunc
}

// Server — HTTP-сервер API.
type Server struct {
	cfg         *config.Config
	deps        Deps
	rateLimiter *middleware.RateLimiter
	http        *http.Server
}

// New создаёт сервер и собирает маршруты.
func New(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		cfg:         cfg,
		deps:        deps,
		rateLimiter: middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
	}
	s.http = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// routes собирает корневой роутер.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if s.cfg.HTTPTrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.LogRequest)
	r.Use(middleware.Recoverer)
	if s.deps.Metrics != nil {
		r.Use(s.deps.Metrics.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.WriteError(w, http.StatusNotFound, "not_found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		common.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})

	r.Get("/healthz", s.handleHealth)
	if s.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(s.cfg.HTTPRequestTimeout))
		r.Use(s.rateLimiter.Middleware(admin.ClientKey))

		sc := s.deps.Scores
		r.Get("/ranks/{score}", sc.HandleRank)
		r.Get("/leaderboard", sc.HandleGlobalLeaderboard)

		r.Post("/admin/login", s.deps.Admin.HandleLogin)

		r.Route("/guilds/{guildID}", func(r chi.Router) {
			r.Get("/leaderboard", sc.HandleServerLeaderboard)
			r.Get("/stats", sc.HandleServerStats)
			r.Get("/users/{userID}/score", sc.HandleUserScore)
			r.Get("/users/{userID}/history", sc.HandleUserHistory)

			r.Group(func(r chi.Router) {
				r.Use(s.deps.Admin.RequireAdmin)
				r.Post("/users/{userID}/score", sc.HandleUpdateScore)

				if mon := s.deps.Monitoring; mon != nil {
					r.Route("/channels", func(r chi.Router) {
						r.Get("/", mon.HandleList)
						r.Get("/{channelID}", mon.HandleGet)
						r.Put("/{channelID}", mon.HandlePut)
						r.Delete("/{channelID}", mon.HandleDelete)
					})
				}
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.deps.Admin.RequireAdmin)
			r.Post("/admin/logout", s.deps.Admin.HandleLogout)
		})
	})

	return r
}

// Handler возвращает собранный обработчик сервера.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health != nil {
		if err := s.deps.Health(r.Context()); err != nil {
			log.WithError(err).Warn("Проверка здоровья не прошла")
			common.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	common.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Start слушает адрес и блокируется до остановки сервера.
// После Shutdown возвращает nil.
func (s *Server) Start() error {
	log.WithField("addr", s.cfg.HTTPAddr).Info("HTTP API запущен")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown дожидается завершения активных запросов в пределах ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.rateLimiter.Close()
	if err := s.http.Shutdown(ctx); err != nil {
		return err
	}
	log.Info("HTTP API остановлен")
	return nil
}
