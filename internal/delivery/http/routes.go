package http

import (
	"github.com/gin-gonic/gin"

	"github.com/claimvalue/backend/config"
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
		products := v1.Group("/products")
		{
			products.POST("/validate", handler.ValidateProduct)
		}

		categories := v1.Group("/categories")
		{
			categories.POST("/infer", handler.InferCategory)
			categories.POST("/reload", handler.ReloadCategories)
		}

		depreciation := v1.Group("/depreciation")
		{
			depreciation.POST("/apply", handler.ApplyDepreciation)
		}
	}

	return router
}
