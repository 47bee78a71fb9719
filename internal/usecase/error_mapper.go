package usecase

import (
	"errors"

	"github.com/weathergate/backend/internal/domain"
)

// Per-operation messages for failures where no usable provider response exists
const (
	msgFetchCurrentFailed  = "Failed to fetch weather data"
	msgFetchCityFailed     = "Failed to fetch weather data by city"
	msgFetchForecastFailed = "Failed to fetch weather forecast"
	msgFetchHourlyFailed   = "Failed to fetch hourly forecast"
)

// MapUpstreamError converts a client adapter or normalizer failure into an AppError.
// Provider answers keep their status and message; everything else becomes a 500 with
// fallbackMessage and no upstream detail.
func MapUpstreamError(err error, fallbackMessage string) *domain.AppError {
	var failure *domain.UpstreamFailure
	if errors.As(err, &failure) {
		return domain.NewUpstreamError("Weather API error: "+failure.Message, failure.StatusCode)
	}
	return domain.NewTransportError(fallbackMessage)
}
