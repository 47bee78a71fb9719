package openweather

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/weathergate/backend/internal/domain"
)

// MapCurrentByCoords converts a /weather response fetched by coordinates into CurrentConditions
func MapCurrentByCoords(raw []byte, now time.Time) (*domain.CurrentConditions, error) {
	return mapCurrent(raw, now)
}

// MapCurrentByCity converts a /weather response fetched by city name into CurrentConditions.
// The provider answers both lookups with the same shape.
func MapCurrentByCity(raw []byte, now time.Time) (*domain.CurrentConditions, error) {
	return mapCurrent(raw, now)
}

func mapCurrent(raw []byte, now time.Time) (*domain.CurrentConditions, error) {
	var resp domain.OWMCurrentResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	condition, err := firstCondition(resp.Weather)
	if err != nil {
		return nil, err
	}

	uvIndex := 0.0
	if resp.UVI != nil {
		uvIndex = *resp.UVI
	}

	return &domain.CurrentConditions{
		Location: domain.Location{
			Latitude:    resp.Coord.Lat,
			Longitude:   resp.Coord.Lon,
			Name:        resp.Name,
			CountryCode: resp.Sys.Country,
		},
		Current: domain.CurrentWeather{
			Temperature: resp.Main.Temp,
			FeelsLike:   resp.Main.FeelsLike,
			Humidity:    resp.Main.Humidity,
			Pressure:    resp.Main.Pressure,
			Visibility:  resp.Visibility,
			UVIndex:     uvIndex,
			Weather:     condition,
			Wind:        mapWind(resp.Wind),
		},
		Timestamp: FormatTimestamp(now),
	}, nil
}

// MapForecast converts a /forecast response into a ForecastList.
// Whatever number of points the provider returned is kept, in the order received.
func MapForecast(raw []byte, now time.Time) (*domain.ForecastList, error) {
	var resp domain.OWMForecastResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	points := make([]domain.ForecastPoint, 0, len(resp.List))
	for i, item := range resp.List {
		condition, err := firstCondition(item.Weather)
		if err != nil {
			return nil, fmt.Errorf("forecast item %d: %w", i, err)
		}
		points = append(points, domain.ForecastPoint{
			Datetime:  item.DtTxt,
			Timestamp: item.Dt,
			Temperature: domain.ForecastTemperature{
				Temp:      item.Main.Temp,
				Min:       item.Main.TempMin,
				Max:       item.Main.TempMax,
				FeelsLike: item.Main.FeelsLike,
			},
			Humidity:      item.Main.Humidity,
			Pressure:      item.Main.Pressure,
			Weather:       condition,
			Wind:          mapWind(item.Wind),
			Clouds:        item.Clouds.All,
			Precipitation: threeHourRain(item.Rain),
		})
	}

	return &domain.ForecastList{
		Location:  mapForecastLocation(&resp),
		Forecast:  points,
		Timestamp: FormatTimestamp(now),
	}, nil
}

// MapHourly converts a /forecast response into an HourlyList
func MapHourly(raw []byte, now time.Time) (*domain.HourlyList, error) {
	var resp domain.OWMForecastResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	points := make([]domain.HourlyPoint, 0, len(resp.List))
	for i, item := range resp.List {
		condition, err := firstCondition(item.Weather)
		if err != nil {
			return nil, fmt.Errorf("hourly item %d: %w", i, err)
		}
		points = append(points, domain.HourlyPoint{
			Datetime:      item.DtTxt,
			Timestamp:     item.Dt,
			Temperature:   item.Main.Temp,
			FeelsLike:     item.Main.FeelsLike,
			Humidity:      item.Main.Humidity,
			Weather:       condition,
			Wind:          mapWind(item.Wind),
			Precipitation: threeHourRain(item.Rain),
		})
	}

	return &domain.HourlyList{
		Location:  mapForecastLocation(&resp),
		Hourly:    points,
		Timestamp: FormatTimestamp(now),
	}, nil
}

// FormatTimestamp renders t in the gateway's response timestamp layout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(domain.TimestampLayout)
}

// firstCondition returns the primary condition; the provider always sends at least one
func firstCondition(conditions []domain.OWMCondition) (domain.WeatherCondition, error) {
	if len(conditions) == 0 {
		return domain.WeatherCondition{}, fmt.Errorf("%w: empty weather list", domain.ErrMalformedResponse)
	}
	c := conditions[0]
	return domain.WeatherCondition{
		Main:        c.Main,
		Description: c.Description,
		Icon:        c.Icon,
	}, nil
}

func mapWind(w domain.OWMWind) domain.Wind {
	return domain.Wind{Speed: w.Speed, Direction: w.Deg}
}

func mapForecastLocation(resp *domain.OWMForecastResponse) domain.Location {
	return domain.Location{
		Latitude:    resp.City.Coord.Lat,
		Longitude:   resp.City.Coord.Lon,
		Name:        resp.City.Name,
		CountryCode: resp.City.Country,
	}
}

// threeHourRain returns the 3h precipitation volume, 0 when the provider omits it
func threeHourRain(rain *domain.OWMRain) float64 {
	if rain == nil || rain.ThreeHour == nil {
		return 0
	}
	return *rain.ThreeHour
}
