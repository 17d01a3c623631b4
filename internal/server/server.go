package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/visitportal/internal/bootstrap"
	"github.com/yigit/visitportal/internal/config"
	"github.com/yigit/visitportal/internal/db"
)

// Server holds the state for the HTTP server.
type Server struct {
	config   *config.Config
	router   *gin.Engine
	database *db.PostgresDB
	logger   zerolog.Logger
	http     *http.Server
	stop     context.CancelFunc
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer() (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	ctx, stop := context.WithCancel(context.Background())

	store, database, err := bootstrap.SetupSessionStore(ctx, cfg, lgr)
	if err != nil {
		stop()
		return nil, fmt.Errorf("failed to setup session store: %w", err)
	}

	s := &Server{
		config:   cfg,
		database: database,
		logger:   lgr,
		stop:     stop,
	}

	deps, err := bootstrap.BuildDependencies(cfg, store, lgr)
	if err != nil {
		s.release()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	s.router, err = bootstrap.SetupRouter(cfg, deps, lgr)
	if err != nil {
		s.release()
		return nil, fmt.Errorf("failed to setup router: %w", err)
	}

	bootstrap.StartBackground(ctx, cfg, deps)
	return s, nil
}

// Run starts the HTTP server and handles graceful shutdown.
func (s *Server) Run() error {
	s.logger.Info().Str("port", s.config.Server.Port).Msg("Starting server...")

	// No write timeout: identity broadcasts hold websocket connections open
	s.http = &http.Server{
		Addr:              ":" + s.config.Server.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			s.release()
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the server and closes resources.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeouts.Shutdown)
	defer cancel()

	var shutdownErr error
	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownErr = fmt.Errorf("server shutdown completed with errors: %w", err)
		} else {
			s.logger.Info().Msg("HTTP server gracefully stopped.")
		}
	}

	s.release()
	s.logger.Info().Msg("Server shutdown process complete.")
	return shutdownErr
}

// release stops background workers and closes the database pool
func (s *Server) release() {
	if s.stop != nil {
		s.stop()
	}
	if s.database != nil {
		s.logger.Info().Msg("Closing database connection pool...")
		s.database.Close()
		s.database = nil
	}
}
