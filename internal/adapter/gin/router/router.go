package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"microblog-account-service/internal/adapter/gin/handler"
	"microblog-account-service/internal/adapter/gin/middleware"
	"microblog-account-service/pkg/logger"
)

// Options carries the optional pieces of the router.
type Options struct {
	ServiceName string
	RateLimiter *middleware.RateLimiter // nil disables rate limiting
	Registry    *prometheus.Registry    // nil uses a private registry
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(authHandler *handler.AuthHandler, opts Options, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics := middleware.NewMetrics(reg, "microblog")

	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(logger.RequestIDMiddleware())
	router.Use(middleware.Logger(log))
	router.Use(metrics.Middleware())
	router.Use(opts.RateLimiter.Middleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": opts.ServiceName,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	router.POST("/signup", authHandler.Signup)
	router.POST("/token", authHandler.Token)
	router.GET("/profile/:userId", authHandler.Profile)
	router.GET("/all_users", authHandler.AllUsers)

	return router
}
