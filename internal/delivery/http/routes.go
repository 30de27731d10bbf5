package http

import (
	"github.com/gifthub/engine/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, limiter *IPRateLimiter) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	if limiter != nil {
		v1.Use(RateLimitMiddleware(limiter))
	}
	{
		pages := v1.Group("/pages")
		{
			pages.GET("/:slug", handler.GetPage)
			pages.GET("/:slug/related", handler.GetRelated)
			pages.GET("/:slug/picks/:index", handler.GetTopPick)
		}

		v1.GET("/hubs/:taxonomy/:term", handler.GetHub)

		catalog := v1.Group("/catalog")
		{
			catalog.GET("/items/:id", handler.GetCatalogItem)
			catalog.POST("/warm", handler.WarmCatalog)
		}

		hooks := v1.Group("/hooks")
		{
			hooks.POST("/page-saved", handler.PageSaved)
			hooks.POST("/terms-set", handler.TermsSet)
		}
	}

	return router
}
