package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/logbot/logbot/internal/handler"
	"github.com/logbot/logbot/internal/middleware"
	"github.com/rs/zerolog/log"
)

func (s *Server) routes() http.Handler {
	cfg, a := s.cfg, s.app

	if cfg.EnableAuth && len(cfg.APIKeys) == 0 {
		log.Warn().Msg("auth enabled but no API keys configured - all API requests will be rejected")
	}
	if !cfg.EnableAuth {
		log.Warn().Msg("auth disabled - API is open to any caller")
	}

	healthH := handler.NewHealthHandler(map[string]handler.HealthChecker{"store": a.Store})
	chatH := handler.NewChatHandler(a.Controller)
	queryH := handler.NewQueryHandler(a.Store, a.SQLValidator, a.DataMasker, a.AuditLogger, cfg.EnableDataMasking)
	schemaH := handler.NewSchemaHandler(a.Schema)

	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(chiMiddleware.RealIP)

	// Public routes
	r.Get("/health", healthH.Health)
	r.Get("/", healthH.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute))
		if cfg.EnableAuth {
			r.Use(middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
		}

		r.Route(cfg.APIPrefix, func(r chi.Router) {
			r.Route("/chat/sessions", func(r chi.Router) {
				r.Post("/", chatH.CreateSession)
				r.Get("/{id}", chatH.GetSession)
				r.Delete("/{id}", chatH.DeleteSession)
				r.Post("/{id}/messages", chatH.PostMessage)
			})
			r.Post("/query", queryH.Execute)
			r.Get("/schema", schemaH.Schema)
		})
	})

	return r
}
