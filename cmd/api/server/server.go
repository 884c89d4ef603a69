package server

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	ginhandler "credential-service/internal/adapter/gin/handler"
	"credential-service/internal/adapter/gin/middleware"
	"credential-service/internal/config"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	HTTP   *http.Server
}

// New creates a new server instance
func New(
	cfg *config.Config,
	l *zap.Logger,
	handler *ginhandler.ProvisionHandler,
	rateLimiter *middleware.RateLimiter,
) *Server {
	return &Server{
		Config: cfg,
		Logger: l,
		HTTP:   SetupHTTPServer(handler, rateLimiter, ":"+cfg.App.HTTPPort, l),
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.Logger.Info("HTTP server running", zap.String("address", s.HTTP.Addr))

	if err := s.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
