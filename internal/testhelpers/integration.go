//go:build integration
// +build integration

package testhelpers

import (
	"os"
	"testing"
	"time"

	"github.com/kjstillabower/weather-lookup-service/internal/client"
	"github.com/kjstillabower/weather-lookup-service/internal/service"
)

// IntegrationTestConfig holds configuration for integration tests.
type IntegrationTestConfig struct {
	GeocodingURL string
	WeatherURL   string
	Language     string
	Timeout      time.Duration
}

// GetIntegrationConfig loads integration test configuration from environment.
// Skips the test unless WEATHER_INTEGRATION=1, since it reaches the live APIs.
func GetIntegrationConfig(t *testing.T) IntegrationTestConfig {
	t.Helper()
	if os.Getenv("WEATHER_INTEGRATION") != "1" {
		t.Skip("WEATHER_INTEGRATION not set, skipping live upstream test")
	}

	cfg := IntegrationTestConfig{
		GeocodingURL: os.Getenv("GEOCODING_API_URL"),
		WeatherURL:   os.Getenv("WEATHER_API_URL"),
		Language:     os.Getenv("GEOCODING_LANGUAGE"),
		Timeout:      10 * time.Second,
	}
	if cfg.GeocodingURL == "" {
		cfg.GeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	}
	if cfg.WeatherURL == "" {
		cfg.WeatherURL = "https://api.open-meteo.com/v1/forecast"
	}
	if cfg.Language == "" {
		cfg.Language = "pt"
	}
	return cfg
}

// SetupIntegrationClients creates both upstream clients against the live APIs.
func SetupIntegrationClients(t *testing.T, cfg IntegrationTestConfig) (*client.GeocodingClient, *client.ForecastClient) {
	t.Helper()
	geocoder, err := client.NewGeocodingClient(cfg.GeocodingURL, cfg.Language, cfg.Timeout)
	if err != nil {
		t.Fatalf("NewGeocodingClient() error = %v", err)
	}
	forecaster, err := client.NewForecastClient(cfg.WeatherURL, cfg.Timeout)
	if err != nil {
		t.Fatalf("NewForecastClient() error = %v", err)
	}
	return geocoder, forecaster
}

// SetupIntegrationService creates a fully wired lookup service for integration tests.
func SetupIntegrationService(t *testing.T, cfg IntegrationTestConfig) *service.WeatherService {
	t.Helper()
	geocoder, forecaster := SetupIntegrationClients(t, cfg)
	return service.NewWeatherService(geocoder, forecaster, service.Options{Language: cfg.Language})
}
