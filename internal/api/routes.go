package api

import (
	"github.com/Duy-Thong/CopyCheck/internal/config"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(cfg *config.Config, deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// Create handler
	handler := NewHandler(cfg, deps)

	// Create rate limiter
	rateLimiter := NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))

	// Middleware
	router.Use(MetricsMiddleware())
	router.Use(ErrorHandlerMiddleware())

	// Health endpoint (no auth)
	router.GET("/health", handler.Health)

	// API routes (with auth and rate limiting)
	api := router.Group("/api/v1")
	api.Use(JWTAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	api.Use(RateLimitMiddleware(rateLimiter))
	{
		api.POST("/similarity", handler.Similarity)

		scopes := api.Group("/scopes/:scopeId")
		scopes.POST("/submissions", handler.CreateSubmission)
		scopes.GET("/submissions", handler.ListSubmissions)
		scopes.GET("/submissions/:id", handler.GetSubmission)
		scopes.GET("/stats", handler.Stats)
		scopes.POST("/compare", handler.Compute)
		scopes.GET("/compare/status", handler.ComputeStatus)
		scopes.GET("/report", handler.LatestReport)
	}

	return router
}
