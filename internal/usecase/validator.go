package usecase

import (
	"math"
	"strconv"
	"strings"

	"github.com/weathergate/backend/internal/domain"
)

const (
	// DefaultForecastDays is used when the caller does not ask for a day count
	DefaultForecastDays = 5
	MinForecastDays     = 1
	MaxForecastDays     = 5
)

// User-visible validation messages
const (
	msgInvalidCoordinates = "Invalid coordinates format"
	msgLatitudeRange      = "Latitude must be between -90 and 90"
	msgLongitudeRange     = "Longitude must be between -180 and 180"
	msgCityRequired       = "City name is required"
	msgDaysRange          = "Days parameter must be between 1 and 5"
)

// ValidateCoordinates parses and range-checks a latitude/longitude pair
func ValidateCoordinates(latRaw, lonRaw string) (domain.WeatherQuery, error) {
	lat, latErr := parseCoordinate(latRaw)
	lon, lonErr := parseCoordinate(lonRaw)
	if latErr != nil || lonErr != nil {
		return domain.WeatherQuery{}, domain.NewValidationError(msgInvalidCoordinates)
	}

	if lat < -90 || lat > 90 {
		return domain.WeatherQuery{}, domain.NewValidationError(msgLatitudeRange)
	}
	if lon < -180 || lon > 180 {
		return domain.WeatherQuery{}, domain.NewValidationError(msgLongitudeRange)
	}

	return domain.WeatherQuery{Latitude: lat, Longitude: lon}, nil
}

// ValidateCityName trims the raw name and rejects empty input
func ValidateCityName(raw string) (domain.WeatherQuery, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return domain.WeatherQuery{}, domain.NewValidationError(msgCityRequired)
	}
	return domain.WeatherQuery{CityName: name}, nil
}

// ValidateForecastDays range-checks the requested forecast length
func ValidateForecastDays(days int) error {
	if days < MinForecastDays || days > MaxForecastDays {
		return domain.NewValidationError(msgDaysRange)
	}
	return nil
}

// ParseForecastDays reads the days query parameter. An empty value selects the default;
// an unparseable one yields 0 so that ValidateForecastDays rejects it with the range message.
func ParseForecastDays(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultForecastDays
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return days
}

func parseCoordinate(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	if v == 0 {
		// -0 and 0 must share a cache key
		v = 0
	}
	return v, nil
}
