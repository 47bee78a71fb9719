package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/weathergate/backend/config"
	httpDelivery "github.com/weathergate/backend/internal/delivery/http"
	"github.com/weathergate/backend/internal/domain"
	"github.com/weathergate/backend/internal/infrastructure/cache"
	"github.com/weathergate/backend/internal/infrastructure/openweather"
	"github.com/weathergate/backend/internal/scheduler"
	"github.com/weathergate/backend/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting WeatherGate v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache Type: %s", cfg.Cache.Type)
	log.Printf("Cache TTL: current=%s forecast=%s coalesce=%v",
		cfg.Cache.CurrentTTLDuration(), cfg.Cache.ForecastTTLDuration(), cfg.Cache.Coalesce)

	// Initialize infrastructure dependencies
	var store domain.CacheRepository
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cfg.Cache.RedisURL)
		if err != nil {
			log.Fatalf("Failed to configure Redis cache: %v", err)
		}
		defer redisCache.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			// Reads and writes degrade to misses until Redis comes back
			log.Printf("WARNING: Redis not reachable at startup: %v", err)
		}
		cancel()
		store = redisCache
	default:
		memoryCache := cache.NewMemoryCache()
		janitor := scheduler.NewJanitor(memoryCache, cfg.Cache.SweepInterval)
		if err := janitor.Start(); err != nil {
			log.Fatalf("Failed to start cache janitor: %v", err)
		}
		defer janitor.Stop()
		store = memoryCache
	}

	weatherClient := openweather.NewClient(openweather.ClientConfig{
		APIKey:            cfg.OpenWeather.APIKey,
		BaseURL:           cfg.OpenWeather.BaseURL,
		Units:             cfg.OpenWeather.Units,
		Lang:              cfg.OpenWeather.Lang,
		Timeout:           cfg.OpenWeather.Timeout,
		RequestsPerMinute: cfg.RateLimit.Upstream,
	})

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		weatherClient.SetDebug(true)
		log.Printf("OpenWeather client debug mode enabled")
	}
	log.Printf("OpenWeather API configured: %s (units=%s, lang=%s, timeout=%s)",
		cfg.OpenWeather.BaseURL, cfg.OpenWeather.Units, cfg.OpenWeather.Lang, cfg.OpenWeather.Timeout)

	// Initialize usecase layer
	weatherService := usecase.NewWeatherService(
		store,
		weatherClient,
		usecase.WeatherServiceConfig{
			CurrentTTL:       cfg.Cache.CurrentTTLDuration(),
			ForecastTTL:      cfg.Cache.ForecastTTLDuration(),
			CoalesceRequests: cfg.Cache.Coalesce,
		},
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(weatherService, store)
	router := httpDelivery.SetupRouter(cfg, handler)

	if len(cfg.Server.APITokens) == 0 {
		log.Printf("WARNING: no API tokens configured, weather routes are public")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Printf("Server stopped")
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
