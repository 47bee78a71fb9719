package usecase

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/weathergate/backend/internal/domain"
)

// Cache keys are shared with other deployments reading the same store; keep formats stable.
//
//	weather:current:<lat>:<lon>
//	weather:forecast:<lat>:<lon>:<days>
//	weather:hourly:<lat>:<lon>
//	weather:city:<lowercased city name>

func currentCacheKey(q domain.WeatherQuery) string {
	return fmt.Sprintf("weather:current:%s:%s", formatCoordinate(q.Latitude), formatCoordinate(q.Longitude))
}

func forecastCacheKey(q domain.WeatherQuery, days int) string {
	return fmt.Sprintf("weather:forecast:%s:%s:%d", formatCoordinate(q.Latitude), formatCoordinate(q.Longitude), days)
}

func hourlyCacheKey(q domain.WeatherQuery) string {
	return fmt.Sprintf("weather:hourly:%s:%s", formatCoordinate(q.Latitude), formatCoordinate(q.Longitude))
}

func cityCacheKey(q domain.WeatherQuery) string {
	return "weather:city:" + strings.ToLower(q.CityName)
}

// formatCoordinate renders the shortest decimal that round-trips, e.g. 21.0285 or 10.
// Magnitudes below 1e-6 switch to exponent form without exponent padding (1e-7, -2.5e-8),
// matching keys written by other deployments sharing the store.
func formatCoordinate(v float64) string {
	if v != 0 && math.Abs(v) < 1e-6 {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		n, err := strconv.Atoi(exp)
		if err != nil {
			return s
		}
		return mantissa + "e" + strconv.Itoa(n)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
