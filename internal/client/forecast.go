package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kjstillabower/weather-lookup-service/internal/models"
)

// CurrentFields are the current-condition variables requested from the
// forecast API.
var CurrentFields = []string{
	"temperature_2m",
	"relative_humidity_2m",
	"wind_speed_10m",
	"weather_code",
}

// Forecaster fetches current conditions for a position.
type Forecaster interface {
	CurrentWeather(ctx context.Context, coords models.Coordinates) (ForecastResponse, error)
}

// ForecastUnits are the unit labels for each requested variable.
type ForecastUnits struct {
	Time               string `json:"time"`
	Interval           string `json:"interval"`
	Temperature2m      string `json:"temperature_2m"`
	RelativeHumidity2m string `json:"relative_humidity_2m"`
	WindSpeed10m       string `json:"wind_speed_10m"`
	WeatherCode        string `json:"weather_code,omitempty"`
}

// ForecastCurrent is the current-conditions block.
type ForecastCurrent struct {
	Time               string  `json:"time"`
	Interval           int     `json:"interval"`
	Temperature2m      float64 `json:"temperature_2m"`
	RelativeHumidity2m float64 `json:"relative_humidity_2m"`
	WindSpeed10m       float64 `json:"wind_speed_10m"`
	WeatherCode        int     `json:"weather_code"`
}

// ForecastResponse is the forecast API payload. Current is nil when the
// upstream omitted it.
type ForecastResponse struct {
	Latitude             float64          `json:"latitude"`
	Longitude            float64          `json:"longitude"`
	GenerationTimeMS     float64          `json:"generationtime_ms,omitempty"`
	UTCOffsetSeconds     int              `json:"utc_offset_seconds,omitempty"`
	Timezone             string           `json:"timezone"`
	TimezoneAbbreviation string           `json:"timezone_abbreviation"`
	Elevation            float64          `json:"elevation"`
	CurrentUnits         ForecastUnits    `json:"current_units"`
	Current              *ForecastCurrent `json:"current"`
}

// ForecastClient calls the Open-Meteo forecast endpoint.
type ForecastClient struct {
	up *upstream
}

// NewForecastClient returns a client for apiURL; timeout bounds each call.
func NewForecastClient(apiURL string, timeout time.Duration) (*ForecastClient, error) {
	up, err := newUpstream("forecast", "forecast", apiURL, timeout, messages{
		timeout:  "The weather lookup took too long. Try again.",
		upstream: "Error communicating with the weather service. Try again.",
	})
	if err != nil {
		return nil, err
	}
	return &ForecastClient{up: up}, nil
}

// CurrentWeather requests current temperature, humidity, wind speed and
// weather code with automatic timezone detection. A response without a
// current block is a KindNotFound error.
func (c *ForecastClient) CurrentWeather(ctx context.Context, coords models.Coordinates) (ForecastResponse, error) {
	if err := validateCoordinates(coords.Latitude, coords.Longitude); err != nil {
		return ForecastResponse{}, NewError(KindUnexpected, "forecast", UnexpectedMessage, err)
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	params.Set("current", strings.Join(CurrentFields, ","))
	params.Set("timezone", "auto")

	var resp ForecastResponse
	if err := c.up.getJSON(ctx, params, &resp); err != nil {
		return ForecastResponse{}, err
	}
	if resp.Current == nil {
		return ForecastResponse{}, NewError(KindNotFound, "forecast",
			"No current weather data is available for this location.",
			fmt.Errorf("response for %v,%v has no current block", coords.Latitude, coords.Longitude))
	}
	return resp, nil
}
