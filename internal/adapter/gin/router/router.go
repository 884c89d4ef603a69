package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"credential-service/internal/adapter/gin/handler"
	"credential-service/internal/adapter/gin/middleware"
)

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	provisionHandler *handler.ProvisionHandler,
	rateLimiter *middleware.RateLimiter,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))

	// Non-POST on /api/send-email must answer 405, not 404
	router.HandleMethodNotAllowed = true
	router.NoMethod(provisionHandler.MethodNotAllowed)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "credential-service",
		})
	})

	api := router.Group("/api")
	{
		api.POST("/send-email", rateLimiter.Handler(), provisionHandler.SendEmail)
	}

	return router
}
