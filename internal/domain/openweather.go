package domain

// OWMCondition is an entry of the provider's "weather" list
type OWMCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// OWMCoord is the provider's coordinate pair
type OWMCoord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// OWMMain holds the provider's thermodynamic readings
type OWMMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  float64 `json:"pressure"`
	Humidity  float64 `json:"humidity"`
}

// OWMWind is the provider's wind block
type OWMWind struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
}

// OWMRain holds precipitation volumes; both windows are optional
type OWMRain struct {
	OneHour   *float64 `json:"1h,omitempty"`
	ThreeHour *float64 `json:"3h,omitempty"`
}

// OWMCurrentResponse is the provider's /weather response
type OWMCurrentResponse struct {
	Coord      OWMCoord       `json:"coord"`
	Weather    []OWMCondition `json:"weather"`
	Main       OWMMain        `json:"main"`
	Visibility float64        `json:"visibility"`
	Wind       OWMWind        `json:"wind"`
	UVI        *float64       `json:"uvi,omitempty"`
	Dt         int64          `json:"dt"`
	Sys        struct {
		Country string `json:"country"`
	} `json:"sys"`
	Name string `json:"name"`
}

// OWMForecastItem is one entry of the provider's /forecast list
type OWMForecastItem struct {
	Dt      int64          `json:"dt"`
	Main    OWMMain        `json:"main"`
	Weather []OWMCondition `json:"weather"`
	Clouds  struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Wind  OWMWind  `json:"wind"`
	Rain  *OWMRain `json:"rain,omitempty"`
	DtTxt string   `json:"dt_txt"`
}

// OWMForecastResponse is the provider's /forecast response
type OWMForecastResponse struct {
	Cnt  int               `json:"cnt"`
	List []OWMForecastItem `json:"list"`
	City struct {
		Name    string   `json:"name"`
		Coord   OWMCoord `json:"coord"`
		Country string   `json:"country"`
	} `json:"city"`
}

// OWMErrorResponse is the body the provider sends with non-2xx statuses.
// "cod" is a number on some endpoints and a string on others, so it is not decoded.
type OWMErrorResponse struct {
	Message string `json:"message"`
}
