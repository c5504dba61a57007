package http

import (
	"github.com/gin-gonic/gin"

	"github.com/sai-aps/quotematch/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		match := v1.Group("/match")
		{
			match.POST("/text", handler.MatchText)
			match.POST("/quote", handler.MatchQuote)
			match.POST("/pdf", handler.MatchPDF)
		}

		assemblies := v1.Group("/assemblies")
		{
			assemblies.GET("", handler.ListAssemblies)
			assemblies.GET("/:id/bom", handler.GetBOM)
			assemblies.GET("/:id/bom/export", handler.ExportBOM)
		}

		v1.POST("/boxcode", handler.GenerateBoxCodes)
		v1.POST("/quotes/search", handler.SearchQuotes)
	}

	return router
}
