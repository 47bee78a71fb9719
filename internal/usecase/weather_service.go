package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"strconv"
	"time"

	"github.com/weathergate/backend/internal/domain"
	"github.com/weathergate/backend/internal/infrastructure/openweather"
	"golang.org/x/sync/singleflight"
)

const (
	defaultCurrentTTL  = 600 * time.Second
	defaultForecastTTL = 7200 * time.Second

	// provider forecast granularity is 3 hours
	pointsPerDay = 8
)

// WeatherServiceConfig holds configuration for the weather service
type WeatherServiceConfig struct {
	// CurrentTTL applies to current-conditions and hourly records
	CurrentTTL time.Duration
	// ForecastTTL applies to multi-day forecast records
	ForecastTTL time.Duration
	// CoalesceRequests makes concurrent misses on the same key share one upstream fetch
	CoalesceRequests bool
}

// WeatherService is the cache-aside gateway in front of the weather provider
type WeatherService struct {
	cache       domain.CacheRepository
	client      domain.WeatherClient
	currentTTL  time.Duration
	forecastTTL time.Duration
	inflight    *singleflight.Group
	now         func() time.Time
}

// lookup describes one cache-aside read for a record of type T
type lookup[T any] struct {
	key       string
	ttl       time.Duration
	path      string
	params    url.Values
	normalize func(raw []byte, now time.Time) (*T, error)
	fallback  string
}

// NewWeatherService creates a new weather service with dependencies
func NewWeatherService(
	cache domain.CacheRepository,
	client domain.WeatherClient,
	config WeatherServiceConfig,
) *WeatherService {
	currentTTL := config.CurrentTTL
	if currentTTL <= 0 {
		currentTTL = defaultCurrentTTL
	}
	forecastTTL := config.ForecastTTL
	if forecastTTL <= 0 {
		forecastTTL = defaultForecastTTL
	}

	var inflight *singleflight.Group
	if config.CoalesceRequests {
		inflight = &singleflight.Group{}
	}

	return &WeatherService{
		cache:       cache,
		client:      client,
		currentTTL:  currentTTL,
		forecastTTL: forecastTTL,
		inflight:    inflight,
		now:         time.Now,
	}
}

// GetCurrentWeather returns current conditions at the given coordinates.
// Flow: validate -> check cache -> fetch provider -> normalize -> cache -> return
func (s *WeatherService) GetCurrentWeather(ctx context.Context, lat, lon string) (*domain.CurrentConditions, error) {
	query, err := ValidateCoordinates(lat, lon)
	if err != nil {
		return nil, err
	}

	return readThrough(ctx, s, lookup[domain.CurrentConditions]{
		key:       currentCacheKey(query),
		ttl:       s.currentTTL,
		path:      "/weather",
		params:    coordinateParams(query),
		normalize: openweather.MapCurrentByCoords,
		fallback:  msgFetchCurrentFailed,
	})
}

// GetWeatherByCity returns current conditions for a city name. Cache hits are case-insensitive.
func (s *WeatherService) GetWeatherByCity(ctx context.Context, cityName string) (*domain.CurrentConditions, error) {
	query, err := ValidateCityName(cityName)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query.CityName)

	return readThrough(ctx, s, lookup[domain.CurrentConditions]{
		key:       cityCacheKey(query),
		ttl:       s.currentTTL,
		path:      "/weather",
		params:    params,
		normalize: openweather.MapCurrentByCity,
		fallback:  msgFetchCityFailed,
	})
}

// GetWeatherForecast returns a days-long forecast in 3-hour steps
func (s *WeatherService) GetWeatherForecast(ctx context.Context, lat, lon string, days int) (*domain.ForecastList, error) {
	query, err := ValidateCoordinates(lat, lon)
	if err != nil {
		return nil, err
	}
	if err := ValidateForecastDays(days); err != nil {
		return nil, err
	}

	params := coordinateParams(query)
	params.Set("cnt", strconv.Itoa(days*pointsPerDay))

	return readThrough(ctx, s, lookup[domain.ForecastList]{
		key:       forecastCacheKey(query, days),
		ttl:       s.forecastTTL,
		path:      "/forecast",
		params:    params,
		normalize: openweather.MapForecast,
		fallback:  msgFetchForecastFailed,
	})
}

// GetHourlyForecast returns the next 24 hours in 3-hour steps
func (s *WeatherService) GetHourlyForecast(ctx context.Context, lat, lon string) (*domain.HourlyList, error) {
	query, err := ValidateCoordinates(lat, lon)
	if err != nil {
		return nil, err
	}

	params := coordinateParams(query)
	params.Set("cnt", strconv.Itoa(pointsPerDay))

	return readThrough(ctx, s, lookup[domain.HourlyList]{
		key:       hourlyCacheKey(query),
		ttl:       s.currentTTL,
		path:      "/forecast",
		params:    params,
		normalize: openweather.MapHourly,
		fallback:  msgFetchHourlyFailed,
	})
}

// readThrough serves l from cache, falling back to the provider on a miss.
// Cached records are returned as stored; freshness is bounded only by their TTL.
func readThrough[T any](ctx context.Context, s *WeatherService, l lookup[T]) (*T, error) {
	if cached, ok := getFromCache[T](ctx, s.cache, l.key); ok {
		return cached, nil
	}

	if s.inflight == nil {
		return fetchAndStore(ctx, s, l)
	}

	// The shared fetch outlives any one waiting caller; Fetch still bounds it with its own timeout.
	shared := context.WithoutCancel(ctx)
	ch := s.inflight.DoChan(l.key, func() (interface{}, error) {
		return fetchAndStore(shared, s, l)
	})

	select {
	case <-ctx.Done():
		return nil, MapUpstreamError(ctx.Err(), l.fallback)
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*T), nil
	}
}

// fetchAndStore makes the single provider call for l and caches the normalized result.
// Failed fetches are never cached.
func fetchAndStore[T any](ctx context.Context, s *WeatherService, l lookup[T]) (*T, error) {
	raw, err := s.client.Fetch(ctx, l.path, l.params)
	if err != nil {
		log.Printf("[WeatherService] fetch %s for %s failed: %v", l.path, l.key, err)
		return nil, MapUpstreamError(err, l.fallback)
	}

	record, err := l.normalize(raw, s.now())
	if err != nil {
		log.Printf("[WeatherService] normalize %s for %s failed: %v", l.path, l.key, err)
		return nil, MapUpstreamError(err, l.fallback)
	}

	if err := setInCache(ctx, s.cache, l.key, record, l.ttl); err != nil {
		// The fresh record is still returned
		log.Printf("[WeatherService] cache write for %s failed: %v", l.key, err)
	}

	return record, nil
}

// getFromCache decodes a cached record. Read errors and undecodable payloads count as misses.
func getFromCache[T any](ctx context.Context, cache domain.CacheRepository, key string) (*T, bool) {
	value, err := cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			log.Printf("[WeatherService] cache read for %s failed, treating as miss: %v", key, err)
		}
		return nil, false
	}

	var record T
	if err := json.Unmarshal(value, &record); err != nil {
		log.Printf("[WeatherService] cached value for %s is not decodable, treating as miss: %v", key, err)
		return nil, false
	}
	return &record, true
}

func setInCache[T any](ctx context.Context, cache domain.CacheRepository, key string, record *T, ttl time.Duration) error {
	encoded, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return cache.Set(ctx, key, encoded, ttl)
}

func coordinateParams(q domain.WeatherQuery) url.Values {
	params := url.Values{}
	params.Set("lat", formatCoordinate(q.Latitude))
	params.Set("lon", formatCoordinate(q.Longitude))
	return params
}
