package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/weathergate/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 10 * time.Second
	defaultUnits   = "metric"
	defaultLang    = "vi"

	// maxBodyBytes caps how much of a provider response is read into memory
	maxBodyBytes = 2 << 20

	// consecutive failures (transport errors or 5xx) before the breaker opens
	breakerTripThreshold = 5
)

// ClientConfig holds the deployment settings of the provider client
type ClientConfig struct {
	APIKey            string
	BaseURL           string
	Units             string
	Lang              string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client handles communication with the OpenWeather API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	units       string
	lang        string
	timeout     time.Duration
	rateLimiter *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
	debug       bool
}

// upstreamResponse is what a completed HTTP exchange hands back through the breaker
type upstreamResponse struct {
	statusCode int
	body       []byte
}

// NewClient creates a new OpenWeather API client
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	units := cfg.Units
	if units == "" {
		units = defaultUnits
	}
	lang := cfg.Lang
	if lang == "" {
		lang = defaultLang
	}

	// Free tier allows 60 calls/minute
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("[OpenWeather] circuit %s: %s -> %s", name, from, to)
		},
	})

	return &Client{
		// Per-call deadlines come from the request context
		httpClient:  &http.Client{},
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		units:       units,
		lang:        lang,
		timeout:     timeout,
		rateLimiter: rate.NewLimiter(limit, 10),
		breaker:     breaker,
	}
}

// SetDebug toggles logging of outgoing request paths
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Printf("[OpenWeather] "+format, args...)
	}
}

// Fetch performs exactly one GET against path with the deployment's units, language and
// credential added to params. The attempt is bounded by the configured timeout.
func (c *Client) Fetch(ctx context.Context, path string, params url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrUpstreamUnavailable, err)
	}

	req, err := c.buildRequest(ctx, path, params)
	if err != nil {
		return nil, err
	}
	c.debugLog("GET %s%s", c.baseURL, path)

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(req)
	})
	if err != nil {
		var failure *domain.UpstreamFailure
		if errors.As(err, &failure) {
			log.Printf("[OpenWeather] %s failed with status %d: %s", path, failure.StatusCode, failure.Message)
			return nil, failure
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", domain.ErrCircuitOpen, err)
		}
		log.Printf("[OpenWeather] %s request error: %v", path, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	resp, ok := result.(*upstreamResponse)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected result type from circuit breaker", domain.ErrUpstreamUnavailable)
	}
	if resp.statusCode < 200 || resp.statusCode >= 300 {
		failure := newUpstreamFailure(resp.statusCode, resp.body)
		log.Printf("[OpenWeather] %s failed with status %d: %s", path, failure.StatusCode, failure.Message)
		return nil, failure
	}

	c.debugLog("%s returned %d bytes", path, len(resp.body))
	return resp.body, nil
}

func (c *Client) buildRequest(ctx context.Context, path string, params url.Values) (*http.Request, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = append([]string(nil), v...)
	}
	query.Set("appid", c.apiKey)
	query.Set("units", c.units)
	query.Set("lang", c.lang)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", domain.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("User-Agent", "WeatherGate/1.0")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do executes the request. Only transport errors and 5xx answers count against the breaker;
// 4xx answers are the caller's problem and pass through as results.
func (c *Client) do(req *http.Request) (*upstreamResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := readLimitedBody(resp.Body, maxBodyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 500 {
		return nil, newUpstreamFailure(resp.StatusCode, body)
	}
	return &upstreamResponse{statusCode: resp.StatusCode, body: body}, nil
}

// newUpstreamFailure extracts the provider's message from an error body
func newUpstreamFailure(statusCode int, body []byte) *domain.UpstreamFailure {
	var errResp domain.OWMErrorResponse
	message := ""
	if err := json.Unmarshal(body, &errResp); err == nil {
		message = errResp.Message
	}
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &domain.UpstreamFailure{StatusCode: statusCode, Message: message}
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}
