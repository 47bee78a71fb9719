package openweather

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weathergate/backend/internal/domain"
)

var fixedNow = time.Date(2026, 10, 14, 8, 30, 15, 123000000, time.UTC)

const currentHanoiFixture = `{
	"coord": {"lon": 105.8542, "lat": 21.0285},
	"weather": [
		{"id": 800, "main": "Clear", "description": "clear sky", "icon": "01d"},
		{"id": 701, "main": "Mist", "description": "mist", "icon": "50d"}
	],
	"main": {"temp": 28.5, "feels_like": 31.2, "temp_min": 28.5, "temp_max": 28.5, "pressure": 1009, "humidity": 74},
	"visibility": 10000,
	"wind": {"speed": 3.6, "deg": 120},
	"dt": 1760430615,
	"sys": {"country": "VN"},
	"name": "Hanoi"
}`

const forecastFixture = `{
	"cnt": 3,
	"list": [
		{
			"dt": 1760443200,
			"main": {"temp": 29.1, "feels_like": 32.0, "temp_min": 28.4, "temp_max": 29.1, "pressure": 1008, "humidity": 70},
			"weather": [{"id": 500, "main": "Rain", "description": "light rain", "icon": "10d"}],
			"clouds": {"all": 75},
			"wind": {"speed": 2.9, "deg": 140},
			"rain": {"3h": 0.62},
			"dt_txt": "2026-10-14 12:00:00"
		},
		{
			"dt": 1760454000,
			"main": {"temp": 27.3, "feels_like": 30.1, "temp_min": 27.0, "temp_max": 27.3, "pressure": 1009, "humidity": 80},
			"weather": [{"id": 803, "main": "Clouds", "description": "broken clouds", "icon": "04n"}],
			"clouds": {"all": 60},
			"wind": {"speed": 2.1, "deg": 150},
			"dt_txt": "2026-10-14 15:00:00"
		},
		{
			"dt": 1760432400,
			"main": {"temp": 26.0, "feels_like": 26.0, "temp_min": 26.0, "temp_max": 26.0, "pressure": 1010, "humidity": 85},
			"weather": [{"id": 801, "main": "Clouds", "description": "few clouds", "icon": "02n"}],
			"clouds": {"all": 20},
			"wind": {"speed": 1.5, "deg": 160},
			"rain": {"1h": 0.2},
			"dt_txt": "2026-10-14 09:00:00"
		}
	],
	"city": {"name": "Hanoi", "coord": {"lat": 21.0285, "lon": 105.8542}, "country": "VN"}
}`

func TestMapCurrentByCoords(t *testing.T) {
	got, err := MapCurrentByCoords([]byte(currentHanoiFixture), fixedNow)
	require.NoError(t, err)

	want := &domain.CurrentConditions{
		Location: domain.Location{Latitude: 21.0285, Longitude: 105.8542, Name: "Hanoi", CountryCode: "VN"},
		Current: domain.CurrentWeather{
			Temperature: 28.5,
			FeelsLike:   31.2,
			Humidity:    74,
			Pressure:    1009,
			Visibility:  10000,
			UVIndex:     0, // absent upstream
			Weather:     domain.WeatherCondition{Main: "Clear", Description: "clear sky", Icon: "01d"},
			Wind:        domain.Wind{Speed: 3.6, Direction: 120},
		},
		Timestamp: "2026-10-14T08:30:15.123Z",
	}
	assert.Equal(t, want, got)
}

func TestMapCurrent_UVIndex(t *testing.T) {
	tests := []struct {
		name string
		uvi  string
		want float64
	}{
		{name: "missing defaults to zero", uvi: "", want: 0},
		{name: "present value kept", uvi: `"uvi": 7.4,`, want: 7.4},
		{name: "explicit zero", uvi: `"uvi": 0,`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{` + tt.uvi + `"weather":[{"main":"Clear","description":"clear sky","icon":"01d"}],"main":{"temp":20}}`
			got, err := MapCurrentByCity([]byte(raw), fixedNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Current.UVIndex)
		})
	}
}

func TestMapCurrent_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty weather list", raw: `{"weather":[],"main":{"temp":20}}`},
		{name: "missing weather list", raw: `{"main":{"temp":20}}`},
		{name: "invalid json", raw: `<html>bad gateway</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MapCurrentByCoords([]byte(tt.raw), fixedNow)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, domain.ErrMalformedResponse), "error = %v", err)
		})
	}
}

func TestMapForecast(t *testing.T) {
	got, err := MapForecast([]byte(forecastFixture), fixedNow)
	require.NoError(t, err)

	assert.Equal(t, domain.Location{Latitude: 21.0285, Longitude: 105.8542, Name: "Hanoi", CountryCode: "VN"}, got.Location)
	assert.Equal(t, "2026-10-14T08:30:15.123Z", got.Timestamp)
	require.Len(t, got.Forecast, 3)

	first := got.Forecast[0]
	assert.Equal(t, "2026-10-14 12:00:00", first.Datetime)
	assert.Equal(t, int64(1760443200), first.Timestamp)
	assert.Equal(t, domain.ForecastTemperature{Temp: 29.1, Min: 28.4, Max: 29.1, FeelsLike: 32.0}, first.Temperature)
	assert.Equal(t, 70.0, first.Humidity)
	assert.Equal(t, 1008.0, first.Pressure)
	assert.Equal(t, domain.WeatherCondition{Main: "Rain", Description: "light rain", Icon: "10d"}, first.Weather)
	assert.Equal(t, domain.Wind{Speed: 2.9, Direction: 140}, first.Wind)
	assert.Equal(t, 75.0, first.Clouds)
	assert.Equal(t, 0.62, first.Precipitation)

	// no rain block, and a rain block without the 3h window
	assert.Equal(t, 0.0, got.Forecast[1].Precipitation)
	assert.Equal(t, 0.0, got.Forecast[2].Precipitation)
}

func TestMapForecast_PreservesUpstreamOrder(t *testing.T) {
	got, err := MapForecast([]byte(forecastFixture), fixedNow)
	require.NoError(t, err)

	var stamps []int64
	for _, p := range got.Forecast {
		stamps = append(stamps, p.Timestamp)
	}
	// last fixture point is earlier than the first; it must not be re-sorted
	assert.Equal(t, []int64{1760443200, 1760454000, 1760432400}, stamps)
}

func TestMapForecast_ShortAndEmptyLists(t *testing.T) {
	got, err := MapForecast([]byte(`{"cnt":0,"list":[],"city":{"name":"Hanoi"}}`), fixedNow)
	require.NoError(t, err)
	assert.Empty(t, got.Forecast)
	assert.Equal(t, "Hanoi", got.Location.Name)
}

func TestMapForecast_EmptyWeatherInItem(t *testing.T) {
	raw := `{"list":[{"dt":1,"weather":[]}],"city":{"name":"Hanoi"}}`
	got, err := MapForecast([]byte(raw), fixedNow)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestMapHourly(t *testing.T) {
	got, err := MapHourly([]byte(forecastFixture), fixedNow)
	require.NoError(t, err)

	require.Len(t, got.Hourly, 3)
	assert.Equal(t, domain.HourlyPoint{
		Datetime:      "2026-10-14 12:00:00",
		Timestamp:     1760443200,
		Temperature:   29.1,
		FeelsLike:     32.0,
		Humidity:      70,
		Weather:       domain.WeatherCondition{Main: "Rain", Description: "light rain", Icon: "10d"},
		Wind:          domain.Wind{Speed: 2.9, Direction: 140},
		Precipitation: 0.62,
	}, got.Hourly[0])
	assert.Equal(t, 0.0, got.Hourly[1].Precipitation)
	assert.Equal(t, "VN", got.Location.CountryCode)
}

func TestMapHourly_InvalidJSON(t *testing.T) {
	_, err := MapHourly([]byte(`{"list": "nope"}`), fixedNow)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

// Cached records are stored as JSON; decoding must reproduce the normalized value exactly
func TestNormalizedRecordsSurviveSerialization(t *testing.T) {
	t.Run("current", func(t *testing.T) {
		original, err := MapCurrentByCoords([]byte(currentHanoiFixture), fixedNow)
		require.NoError(t, err)

		encoded, err := json.Marshal(original)
		require.NoError(t, err)
		var decoded domain.CurrentConditions
		require.NoError(t, json.Unmarshal(encoded, &decoded))

		assert.Equal(t, *original, decoded)
	})

	t.Run("forecast", func(t *testing.T) {
		original, err := MapForecast([]byte(forecastFixture), fixedNow)
		require.NoError(t, err)

		encoded, err := json.Marshal(original)
		require.NoError(t, err)
		var decoded domain.ForecastList
		require.NoError(t, json.Unmarshal(encoded, &decoded))

		assert.Equal(t, *original, decoded)
	})

	t.Run("hourly", func(t *testing.T) {
		original, err := MapHourly([]byte(forecastFixture), fixedNow)
		require.NoError(t, err)

		encoded, err := json.Marshal(original)
		require.NoError(t, err)
		var decoded domain.HourlyList
		require.NoError(t, json.Unmarshal(encoded, &decoded))

		assert.Equal(t, *original, decoded)
	})
}

func TestFormatTimestamp(t *testing.T) {
	local := time.Date(2026, 1, 2, 10, 4, 5, 0, time.FixedZone("ICT", 7*3600))
	assert.Equal(t, "2026-01-02T03:04:05.000Z", FormatTimestamp(local))
}
