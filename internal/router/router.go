// Package router assembles the gin engine: routes plus the middleware
// chain.
package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/openheritage/arscale/internal/config"
	"github.com/openheritage/arscale/internal/handlers"
	"github.com/openheritage/arscale/internal/middleware"
)

func New(cfg *config.Config, logger *slog.Logger, model *handlers.ModelHandler, stats *handlers.StatsHandler) *gin.Engine {
	engine := gin.New()

	metricsMiddleware := middleware.NewMetricsMiddleware()
	engine.Use(
		gin.Recovery(),
		middleware.Logging(logger),
		metricsMiddleware.Handler(),
		middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	api := engine.Group("/api/ar")
	api.GET("/model", model.GetARModel)
	api.GET("/scaling-info", model.ScalingInfo)

	engine.GET("/health", handlers.Health)
	engine.GET("/stats", stats.Stats)
	engine.GET("/metrics", metricsMiddleware.Expose)

	return engine
}
