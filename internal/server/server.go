package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/logbot/logbot/internal/app"
	"github.com/logbot/logbot/internal/config"
	"github.com/rs/zerolog/log"
)

type Server struct {
	cfg  *config.Config
	app  *app.App
	http *http.Server
}

// New builds the HTTP server around a. The caller keeps ownership of a and
// closes it after Run returns.
func New(cfg *config.Config, a *app.App) *Server {
	s := &Server{cfg: cfg, app: a}
	s.http = &http.Server{
		Addr:        cfg.Addr(),
		Handler:     s.routes(),
		ReadTimeout: 15 * time.Second,
		// a turn may run the model three times
		WriteTimeout: cfg.TurnTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.http.Addr).Msg("listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("graceful shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
