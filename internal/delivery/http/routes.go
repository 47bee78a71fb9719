package http

import (
	"github.com/gin-gonic/gin"
	"github.com/weathergate/backend/config"
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
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.NoRoute(NotFound)

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		weather := v1.Group("/weather")
		weather.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
		weather.Use(AuthMiddleware(cfg.Server.APITokens))
		{
			weather.GET("/current/city/:cityName", handler.GetCurrentWeatherByCity)
			weather.GET("/current/:lat/:lon", handler.GetCurrentWeatherByCoords)
			weather.GET("/forecast/:lat/:lon", handler.GetWeatherForecast)
			weather.GET("/hourly/:lat/:lon", handler.GetHourlyForecast)
		}
	}

	return router
}
