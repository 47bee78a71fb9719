package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weathergate/backend/internal/domain"
	"github.com/weathergate/backend/internal/usecase"
)

// WeatherGateway is the read-through weather service the handlers delegate to
type WeatherGateway interface {
	GetCurrentWeather(ctx context.Context, lat, lon string) (*domain.CurrentConditions, error)
	GetWeatherByCity(ctx context.Context, cityName string) (*domain.CurrentConditions, error)
	GetWeatherForecast(ctx context.Context, lat, lon string, days int) (*domain.ForecastList, error)
	GetHourlyForecast(ctx context.Context, lat, lon string) (*domain.HourlyList, error)
}

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

const (
	msgCurrentRetrieved  = "Current weather data retrieved successfully"
	msgForecastRetrieved = "Weather forecast retrieved successfully"
	msgHourlyRetrieved   = "Hourly forecast retrieved successfully"

	msgInternalError = "Internal server error"

	healthPingTimeout = 2 * time.Second
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	weather WeatherGateway
	cache   Pinger
}

// NewHandler creates a new HTTP handler
func NewHandler(weather WeatherGateway, cache Pinger) *Handler {
	return &Handler{
		weather: weather,
		cache:   cache,
	}
}

// HealthCheck returns the health status of the API and its cache
func (h *Handler) HealthCheck(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{
		"status":  "healthy",
		"service": "weathergate",
		"version": "1.0.0",
		"cache":   "ok",
	}

	if h.cache != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()
		if err := h.cache.Ping(ctx); err != nil {
			log.Printf("[Health] cache ping failed: %v", err)
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["cache"] = "unavailable"
		}
	}

	c.JSON(status, body)
}

// GetCurrentWeatherByCoords handles GET /current/:lat/:lon
func (h *Handler) GetCurrentWeatherByCoords(c *gin.Context) {
	data, err := h.weather.GetCurrentWeather(c.Request.Context(), c.Param("lat"), c.Param("lon"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, data, msgCurrentRetrieved)
}

// GetCurrentWeatherByCity handles GET /current/city/:cityName
func (h *Handler) GetCurrentWeatherByCity(c *gin.Context) {
	data, err := h.weather.GetWeatherByCity(c.Request.Context(), c.Param("cityName"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, data, msgCurrentRetrieved)
}

// GetWeatherForecast handles GET /forecast/:lat/:lon?days=N
func (h *Handler) GetWeatherForecast(c *gin.Context) {
	days := usecase.ParseForecastDays(c.Query("days"))
	data, err := h.weather.GetWeatherForecast(c.Request.Context(), c.Param("lat"), c.Param("lon"), days)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, data, msgForecastRetrieved)
}

// GetHourlyForecast handles GET /hourly/:lat/:lon
func (h *Handler) GetHourlyForecast(c *gin.Context) {
	data, err := h.weather.GetHourlyForecast(c.Request.Context(), c.Param("lat"), c.Param("lon"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, data, msgHourlyRetrieved)
}

// NotFound renders unknown routes in the error envelope
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"message": "Route " + c.Request.URL.Path + " not found",
	})
}

func respondOK(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"message": message,
	})
}

// respondError renders err in the error envelope. Only AppError messages reach the client.
func respondError(c *gin.Context, err error) {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		log.Printf("[Handler] unexpected error on %s: %v", c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": msgInternalError,
		})
		return
	}

	status := appErr.StatusCode
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{
		"success": false,
		"message": appErr.Message,
	})
}
