package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	OpenWeather OpenWeatherConfig `mapstructure:"openweather"`
	Cache       CacheConfig       `mapstructure:"cache"`
	RateLimit   RateLimitConfig   `mapstructure:"ratelimit"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port" validate:"required,numeric"`
	Environment    string   `mapstructure:"environment" validate:"oneof=development production test"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// APITokens enables bearer-token auth on the weather routes when non-empty
	APITokens []string `mapstructure:"api_tokens"`
}

// OpenWeatherConfig holds weather provider configuration
type OpenWeatherConfig struct {
	APIKey  string        `mapstructure:"api_key" validate:"required"`
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Units   string        `mapstructure:"units" validate:"oneof=standard metric imperial"`
	Lang    string        `mapstructure:"lang" validate:"required"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// CacheConfig holds cache-related configuration. TTLs are in seconds.
type CacheConfig struct {
	Type          string        `mapstructure:"type" validate:"oneof=memory redis"`
	RedisURL      string        `mapstructure:"redis_url" validate:"required_if=Type redis"`
	CurrentTTL    int           `mapstructure:"current_ttl" validate:"gt=0"`
	ForecastTTL   int           `mapstructure:"forecast_ttl" validate:"gt=0"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"gt=0"`
	Coalesce      bool          `mapstructure:"coalesce"`
}

// RateLimitConfig holds rate limiting configuration, in requests per minute. 0 disables a limit.
type RateLimitConfig struct {
	PerIP    int `mapstructure:"per_ip" validate:"gte=0"`
	Upstream int `mapstructure:"upstream" validate:"gte=0"`
}

// CurrentTTLDuration is the lifetime of current-conditions and hourly records
func (c CacheConfig) CurrentTTLDuration() time.Duration {
	return time.Duration(c.CurrentTTL) * time.Second
}

// ForecastTTLDuration is the lifetime of multi-day forecast records
func (c CacheConfig) ForecastTTLDuration() time.Duration {
	return time.Duration(c.ForecastTTL) * time.Second
}

// legacyEnv maps config keys to the unprefixed variable names older deployments set.
// Prefixed WEATHERGATE_* variables take precedence.
var legacyEnv = map[string]string{
	"server.port":          "PORT",
	"openweather.base_url": "OPENWEATHER_BASE_URL",
	"openweather.api_key":  "OPENWEATHER_API_KEY",
	"cache.redis_url":      "REDIS_URL",
	"cache.current_ttl":    "WEATHER_CACHE_TTL",
	"cache.forecast_ttl":   "FORECAST_CACHE_TTL",
}

const envPrefix = "WEATHERGATE"

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/weathergate/")

	// Environment variable settings
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile exports variables from path without overriding the environment.
// A missing file is not an error.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.api_tokens", []string{})

	// Provider defaults
	v.SetDefault("openweather.base_url", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("openweather.units", "metric")
	v.SetDefault("openweather.lang", "vi")
	v.SetDefault("openweather.timeout", "10s")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.current_ttl", 600)
	v.SetDefault("cache.forecast_ttl", 7200)
	v.SetDefault("cache.sweep_interval", "10m")
	v.SetDefault("cache.coalesce", false)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.upstream", 60)
}

// bindEnv binds keys that either have no default or accept a legacy variable name
func bindEnv(v *viper.Viper) error {
	prefixed := func(key string) string {
		return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	}
	for key, legacy := range legacyEnv {
		if err := v.BindEnv(key, prefixed(key), legacy); err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
	}
	return nil
}

var configValidator = validator.New()

// validate validates the configuration
func validate(config *Config) error {
	err := configValidator.Struct(config)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		messages = append(messages, describe(fe))
	}
	return errors.New(strings.Join(messages, "; "))
}

// describe turns a validation failure into an operator-facing hint
func describe(fe validator.FieldError) string {
	switch fe.StructNamespace() {
	case "Config.OpenWeather.APIKey":
		return "OpenWeather API key is required (set WEATHERGATE_OPENWEATHER_API_KEY or OPENWEATHER_API_KEY)"
	case "Config.Cache.RedisURL":
		return "Redis URL is required when cache type is 'redis'"
	case "Config.Cache.Type":
		return fmt.Sprintf("cache type must be 'memory' or 'redis', got: %v", fe.Value())
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.StructNamespace())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got: %v", fe.StructNamespace(), fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s, got: %v", fe.StructNamespace(), fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must not be negative, got: %v", fe.StructNamespace(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %q validation, got: %v", fe.StructNamespace(), fe.Tag(), fe.Value())
	}
}
