package client

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/kjstillabower/weather-lookup-service/internal/models"
)

// Geocoder resolves a city name to its best-matching place.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (GeocodingResult, error)
}

// GeocodingResult is one candidate from the geocoding API.
type GeocodingResult struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Elevation   float64 `json:"elevation,omitempty"`
	CountryCode string  `json:"country_code,omitempty"`
	Country     string  `json:"country,omitempty"`
	Admin1      string  `json:"admin1,omitempty"`
	Timezone    string  `json:"timezone,omitempty"`
	Population  int64   `json:"population,omitempty"`
}

// Coordinates returns the candidate's position.
func (r GeocodingResult) Coordinates() models.Coordinates {
	return models.Coordinates{Latitude: r.Latitude, Longitude: r.Longitude}
}

type geocodingResponse struct {
	Results          []GeocodingResult `json:"results"`
	GenerationTimeMS float64           `json:"generationtime_ms"`
}

// GeocodingClient calls the Open-Meteo geocoding search endpoint.
type GeocodingClient struct {
	up       *upstream
	language string
}

// NewGeocodingClient returns a client for apiURL. language is sent as the
// result-name preference (e.g. "pt"); timeout bounds each call.
func NewGeocodingClient(apiURL, language string, timeout time.Duration) (*GeocodingClient, error) {
	up, err := newUpstream("geocoding", "geocode", apiURL, timeout, messages{
		timeout:  "The coordinates lookup took too long. Try again.",
		upstream: "Error communicating with the geocoding service. Try again.",
	})
	if err != nil {
		return nil, err
	}
	return &GeocodingClient{up: up, language: language}, nil
}

// Geocode returns the first candidate for name. An empty result set is a
// KindNotFound error even though the HTTP call succeeded.
func (c *GeocodingClient) Geocode(ctx context.Context, name string) (GeocodingResult, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("count", "1")
	if c.language != "" {
		params.Set("language", c.language)
	}
	params.Set("format", "json")

	var resp geocodingResponse
	if err := c.up.getJSON(ctx, params, &resp); err != nil {
		return GeocodingResult{}, err
	}
	if len(resp.Results) == 0 {
		return GeocodingResult{}, NewError(KindNotFound, "geocode",
			fmt.Sprintf("City %q not found. Check the name and try again.", name), nil)
	}

	best := resp.Results[0]
	if err := validateCoordinates(best.Latitude, best.Longitude); err != nil {
		return GeocodingResult{}, NewError(KindUnexpected, "geocode", UnexpectedMessage, err)
	}
	return best, nil
}

func validateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v out of range", lat)
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) || lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %v out of range", lon)
	}
	return nil
}
