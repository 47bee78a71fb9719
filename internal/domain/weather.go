package domain

// TimestampLayout renders response-construction time as ISO-8601 UTC with milliseconds
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// WeatherQuery is a validated request target: either coordinates or a city name
type WeatherQuery struct {
	Latitude  float64
	Longitude float64
	CityName  string
}

// IsCity reports whether the query targets a city name rather than coordinates
func (q WeatherQuery) IsCity() bool {
	return q.CityName != ""
}

// Location identifies the place a weather record describes
type Location struct {
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
	Name        string  `json:"name"`
	CountryCode string  `json:"country"`
}

// WeatherCondition is the provider's primary condition for a point in time
type WeatherCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Wind holds speed (m/s with metric units) and meteorological direction in degrees
type Wind struct {
	Speed     float64 `json:"speed"`
	Direction float64 `json:"direction"`
}

// CurrentWeather is the instantaneous reading inside CurrentConditions
type CurrentWeather struct {
	Temperature float64          `json:"temperature"`
	FeelsLike   float64          `json:"feelsLike"`
	Humidity    float64          `json:"humidity"`
	Pressure    float64          `json:"pressure"`
	Visibility  float64          `json:"visibility"`
	UVIndex     float64          `json:"uvIndex"`
	Weather     WeatherCondition `json:"weather"`
	Wind        Wind             `json:"wind"`
}

// CurrentConditions is the normalized current-weather record
type CurrentConditions struct {
	Location  Location       `json:"location"`
	Current   CurrentWeather `json:"current"`
	Timestamp string         `json:"timestamp"`
}

// ForecastTemperature groups the temperature readings of one forecast point
type ForecastTemperature struct {
	Temp      float64 `json:"temp"`
	Min       float64 `json:"tempMin"`
	Max       float64 `json:"tempMax"`
	FeelsLike float64 `json:"feelsLike"`
}

// ForecastPoint is one 3-hour step of a multi-day forecast
type ForecastPoint struct {
	Datetime      string              `json:"datetime"`
	Timestamp     int64               `json:"timestamp"`
	Temperature   ForecastTemperature `json:"temperature"`
	Humidity      float64             `json:"humidity"`
	Pressure      float64             `json:"pressure"`
	Weather       WeatherCondition    `json:"weather"`
	Wind          Wind                `json:"wind"`
	Clouds        float64             `json:"clouds"`
	Precipitation float64             `json:"precipitation"`
}

// ForecastList is the normalized multi-day forecast; points keep upstream order
type ForecastList struct {
	Location  Location        `json:"location"`
	Forecast  []ForecastPoint `json:"forecast"`
	Timestamp string          `json:"timestamp"`
}

// HourlyPoint is one step of the next-hours forecast
type HourlyPoint struct {
	Datetime      string           `json:"datetime"`
	Timestamp     int64            `json:"timestamp"`
	Temperature   float64          `json:"temperature"`
	FeelsLike     float64          `json:"feelsLike"`
	Humidity      float64          `json:"humidity"`
	Weather       WeatherCondition `json:"weather"`
	Wind          Wind             `json:"wind"`
	Precipitation float64          `json:"precipitation"`
}

// HourlyList is the normalized next-hours forecast
type HourlyList struct {
	Location  Location      `json:"location"`
	Hourly    []HourlyPoint `json:"hourly"`
	Timestamp string        `json:"timestamp"`
}
