package domain

import (
	"context"
	"net/url"
	"time"
)

// CacheRepository defines the interface for caching serialized weather records.
// Implementations must be safe for concurrent use.
type CacheRepository interface {
	// Get returns ErrCacheMiss when the key is absent or expired
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
}

// WeatherClient defines the interface for a single bounded GET against the weather provider.
// A non-2xx answer is returned as *UpstreamFailure; anything else means no usable response.
type WeatherClient interface {
	Fetch(ctx context.Context, path string, params url.Values) ([]byte, error)
}
