package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrCacheMiss is returned when data is not found in cache or has expired
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when the cache backend cannot be reached
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrUpstreamUnavailable is returned when no response was received from the weather provider
	ErrUpstreamUnavailable = errors.New("weather provider unreachable")

	// ErrCircuitOpen is returned when the upstream circuit breaker rejects a request
	ErrCircuitOpen = errors.New("weather provider circuit open")

	// ErrMalformedResponse is returned when the provider answered 2xx with a body we cannot normalize
	ErrMalformedResponse = errors.New("malformed weather provider response")
)

// ErrorKind classifies an AppError for callers that need to branch on it
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindUpstream   ErrorKind = "upstream"
	KindTransport  ErrorKind = "transport"
)

// AppError is the error surfaced to gateway callers. Message is user-visible.
type AppError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return e.Message
}

// NewValidationError rejects local input before any I/O happens
func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, StatusCode: http.StatusBadRequest}
}

// NewUpstreamError carries the provider's status code through verbatim
func NewUpstreamError(message string, statusCode int) *AppError {
	return &AppError{Kind: KindUpstream, Message: message, StatusCode: statusCode}
}

// NewTransportError reports a provider that could not be reached or understood
func NewTransportError(message string) *AppError {
	return &AppError{Kind: KindTransport, Message: message, StatusCode: http.StatusInternalServerError}
}

// UpstreamFailure is a non-2xx response from the weather provider
type UpstreamFailure struct {
	StatusCode int
	Message    string
}

func (f *UpstreamFailure) Error() string {
	return fmt.Sprintf("weather provider returned status %d: %s", f.StatusCode, f.Message)
}
