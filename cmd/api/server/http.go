package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	ginhandler "credential-service/internal/adapter/gin/handler"
	"credential-service/internal/adapter/gin/middleware"
	ginrouter "credential-service/internal/adapter/gin/router"
)

// SetupHTTPServer creates and configures the HTTP server serving the
// provisioning API.
func SetupHTTPServer(
	handler *ginhandler.ProvisionHandler,
	rateLimiter *middleware.RateLimiter,
	addr string,
	l *zap.Logger,
) *http.Server {
	router := ginrouter.SetupRouter(handler, rateLimiter, l)

	l.Info("HTTP API configured", zap.String("address", addr))

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
