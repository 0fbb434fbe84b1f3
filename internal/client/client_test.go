package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kjstillabower/weather-lookup-service/internal/models"
	"github.com/kjstillabower/weather-lookup-service/internal/observability"
)

const saoPauloGeocoding = `{
  "results": [
    {"id": 3448439, "name": "São Paulo", "latitude": -23.5505, "longitude": -46.6333,
     "country_code": "BR", "country": "Brazil", "admin1": "São Paulo", "timezone": "America/Sao_Paulo"}
  ],
  "generationtime_ms": 0.234
}`

const saoPauloForecast = `{
  "latitude": -23.5505,
  "longitude": -46.6333,
  "timezone": "America/Sao_Paulo",
  "timezone_abbreviation": "BRT",
  "elevation": 760.0,
  "current_units": {"time": "iso8601", "interval": "seconds", "temperature_2m": "°C",
    "relative_humidity_2m": "%", "wind_speed_10m": "km/h", "weather_code": "wmo code"},
  "current": {"time": "2024-01-15T14:30", "interval": 900, "temperature_2m": 25.5,
    "relative_humidity_2m": 65, "wind_speed_10m": 12.3, "weather_code": 0}
}`

func jsonServer(t *testing.T, status int, body string, check func(*http.Request)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func slowServer(t *testing.T, delay time.Duration) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewGeocodingClient_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		timeout time.Duration
	}{
		{"empty URL", "", time.Second},
		{"relative URL", "/v1/search", time.Second},
		{"unsupported scheme", "ftp://example.com/search", time.Second},
		{"zero timeout", "https://geocoding-api.open-meteo.com/v1/search", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewGeocodingClient(tt.url, "pt", tt.timeout)
			if err == nil {
				t.Fatal("NewGeocodingClient() expected error, got nil")
			}
			if c != nil {
				t.Error("NewGeocodingClient() expected nil client on error")
			}
		})
	}
}

func TestGeocodingClient_Geocode_Success(t *testing.T) {
	server := jsonServer(t, http.StatusOK, saoPauloGeocoding, func(r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		q := r.URL.Query()
		if q.Get("name") != "São Paulo" {
			t.Errorf("name = %q, want São Paulo", q.Get("name"))
		}
		if q.Get("count") != "1" {
			t.Errorf("count = %q, want 1", q.Get("count"))
		}
		if q.Get("language") != "pt" {
			t.Errorf("language = %q, want pt", q.Get("language"))
		}
		if q.Get("format") != "json" {
			t.Errorf("format = %q, want json", q.Get("format"))
		}
		if got := r.Header.Get("X-Correlation-ID"); got != "corr-1" {
			t.Errorf("X-Correlation-ID = %q, want corr-1", got)
		}
	})

	c, err := NewGeocodingClient(server.URL+"/v1/search", "pt", 2*time.Second)
	if err != nil {
		t.Fatalf("NewGeocodingClient() error = %v", err)
	}
	ctx := observability.WithCorrelationID(context.Background(), "corr-1")
	got, err := c.Geocode(ctx, "São Paulo")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	if got.Name != "São Paulo" || got.Country != "Brazil" || got.CountryCode != "BR" {
		t.Errorf("Geocode() = %+v, want São Paulo, Brazil", got)
	}
	if got.Coordinates() != (models.Coordinates{Latitude: -23.5505, Longitude: -46.6333}) {
		t.Errorf("Coordinates() = %+v", got.Coordinates())
	}
}

func TestGeocodingClient_Geocode_FirstResultWins(t *testing.T) {
	body := `{"results": [
	  {"name": "Springfield", "latitude": 39.80, "longitude": -89.64, "country": "United States"},
	  {"name": "Springfield", "latitude": 37.21, "longitude": -93.29, "country": "United States"}
	]}`
	server := jsonServer(t, http.StatusOK, body, nil)
	c, _ := NewGeocodingClient(server.URL, "en", time.Second)

	got, err := c.Geocode(context.Background(), "Springfield")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	if got.Latitude != 39.80 {
		t.Errorf("Latitude = %v, want first result 39.80", got.Latitude)
	}
}

func TestGeocodingClient_Geocode_NotFound(t *testing.T) {
	for name, body := range map[string]string{
		"absent results": `{"generationtime_ms": 0.1}`,
		"empty results":  `{"results": []}`,
	} {
		t.Run(name, func(t *testing.T) {
			server := jsonServer(t, http.StatusOK, body, nil)
			c, _ := NewGeocodingClient(server.URL, "pt", time.Second)

			_, err := c.Geocode(context.Background(), "Atlantis")
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("Geocode() error = %v, want ErrNotFound", err)
			}
			if !strings.Contains(UserMessage(err), "Atlantis") {
				t.Errorf("UserMessage() = %q, want city name", UserMessage(err))
			}
		})
	}
}

func TestGeocodingClient_Geocode_ErrorHandling(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Kind
	}{
		{"500", http.StatusInternalServerError, `{"error": true}`, KindUpstreamFailure},
		{"503", http.StatusServiceUnavailable, ``, KindUpstreamFailure},
		{"400", http.StatusBadRequest, `{"error": true, "reason": "bad name"}`, KindUpstreamFailure},
		{"429", http.StatusTooManyRequests, ``, KindUpstreamFailure},
		{"malformed 2xx", http.StatusOK, `{"results": [`, KindUnexpected},
		{"wrong types 2xx", http.StatusOK, `{"results": "nope"}`, KindUnexpected},
		{"out of range latitude", http.StatusOK, `{"results": [{"name": "X", "latitude": 123, "longitude": 0}]}`, KindUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := jsonServer(t, tt.status, tt.body, nil)
			c, _ := NewGeocodingClient(server.URL, "pt", time.Second)

			_, err := c.Geocode(context.Background(), "Lisboa")
			if err == nil {
				t.Fatal("Geocode() expected error, got nil")
			}
			if got := KindOf(err); got != tt.want {
				t.Errorf("KindOf(%v) = %v, want %v", err, got, tt.want)
			}
		})
	}
}

func TestGeocodingClient_Geocode_Timeout(t *testing.T) {
	server := slowServer(t, 2*time.Second)
	c, _ := NewGeocodingClient(server.URL, "pt", 50*time.Millisecond)

	start := time.Now()
	_, err := c.Geocode(context.Background(), "Lisboa")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Geocode() error = %v, want ErrTimeout", err)
	}
	if errors.Is(err, ErrUpstreamFailure) {
		t.Error("timeout must not be reported as upstream failure")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Geocode() took %v, want bounded by timeout", elapsed)
	}
}

func TestGeocodingClient_Geocode_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c, _ := NewGeocodingClient(url, "pt", time.Second)
	_, err := c.Geocode(context.Background(), "Lisboa")
	if !errors.Is(err, ErrUpstreamFailure) {
		t.Fatalf("Geocode() error = %v, want ErrUpstreamFailure", err)
	}
	if CategorizeError(err) != ErrorCategoryNetwork {
		t.Errorf("CategorizeError() = %q, want network", CategorizeError(err))
	}
}

func TestForecastClient_CurrentWeather_Success(t *testing.T) {
	server := jsonServer(t, http.StatusOK, saoPauloForecast, func(r *http.Request) {
		q := r.URL.Query()
		if q.Get("latitude") != "-23.5505" || q.Get("longitude") != "-46.6333" {
			t.Errorf("coordinates = %s,%s", q.Get("latitude"), q.Get("longitude"))
		}
		if q.Get("current") != "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code" {
			t.Errorf("current = %q", q.Get("current"))
		}
		if q.Get("timezone") != "auto" {
			t.Errorf("timezone = %q, want auto", q.Get("timezone"))
		}
	})
	c, err := NewForecastClient(server.URL+"/v1/forecast", 2*time.Second)
	if err != nil {
		t.Fatalf("NewForecastClient() error = %v", err)
	}

	got, err := c.CurrentWeather(context.Background(), models.Coordinates{Latitude: -23.5505, Longitude: -46.6333})
	if err != nil {
		t.Fatalf("CurrentWeather() error = %v", err)
	}
	if got.Current == nil {
		t.Fatal("CurrentWeather() Current = nil")
	}
	if got.Current.Temperature2m != 25.5 || got.Current.RelativeHumidity2m != 65 || got.Current.WindSpeed10m != 12.3 {
		t.Errorf("Current = %+v", *got.Current)
	}
	if got.CurrentUnits.Temperature2m != "°C" || got.Timezone != "America/Sao_Paulo" {
		t.Errorf("units/timezone = %q/%q", got.CurrentUnits.Temperature2m, got.Timezone)
	}
}

func TestForecastClient_CurrentWeather_MissingCurrent(t *testing.T) {
	server := jsonServer(t, http.StatusOK, `{"latitude": 1, "longitude": 2, "timezone": "GMT"}`, nil)
	c, _ := NewForecastClient(server.URL, time.Second)

	_, err := c.CurrentWeather(context.Background(), models.Coordinates{Latitude: 1, Longitude: 2})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("CurrentWeather() error = %v, want ErrNotFound", err)
	}
}

func TestForecastClient_CurrentWeather_ErrorHandling(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Kind
	}{
		{"400 invalid coordinates", http.StatusBadRequest, `{"error": true, "reason": "Latitude must be in range"}`, KindUpstreamFailure},
		{"502", http.StatusBadGateway, ``, KindUpstreamFailure},
		{"malformed 2xx", http.StatusOK, `not json`, KindUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := jsonServer(t, tt.status, tt.body, nil)
			c, _ := NewForecastClient(server.URL, time.Second)

			_, err := c.CurrentWeather(context.Background(), models.Coordinates{Latitude: 10, Longitude: 10})
			if got := KindOf(err); got != tt.want {
				t.Errorf("KindOf(%v) = %v, want %v", err, got, tt.want)
			}
		})
	}
}

func TestForecastClient_CurrentWeather_RejectsInvalidCoordinates(t *testing.T) {
	var calls atomic.Int32
	server := jsonServer(t, http.StatusOK, saoPauloForecast, func(*http.Request) { calls.Add(1) })
	c, _ := NewForecastClient(server.URL, time.Second)

	_, err := c.CurrentWeather(context.Background(), models.Coordinates{Latitude: 91, Longitude: 0})
	if KindOf(err) != KindUnexpected {
		t.Errorf("KindOf(%v) = %v, want unexpected", err, KindOf(err))
	}
	if calls.Load() != 0 {
		t.Errorf("upstream calls = %d, want 0", calls.Load())
	}
}

func TestForecastClient_CurrentWeather_Timeout(t *testing.T) {
	server := slowServer(t, 2*time.Second)
	c, _ := NewForecastClient(server.URL, 50*time.Millisecond)

	_, err := c.CurrentWeather(context.Background(), models.Coordinates{Latitude: 1, Longitude: 1})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("CurrentWeather() error = %v, want ErrTimeout", err)
	}
}

func TestUpstream_ParentDeadlineIsTimeout(t *testing.T) {
	server := slowServer(t, 2*time.Second)
	c, _ := NewForecastClient(server.URL, 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.CurrentWeather(ctx, models.Coordinates{Latitude: 1, Longitude: 1})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("CurrentWeather() error = %v, want ErrTimeout", err)
	}
}

func TestStatusLabel(t *testing.T) {
	tests := map[int]string{429: "rate_limited", 404: "client_error", 500: "server_error", 302: "error"}
	for code, want := range tests {
		if got := statusLabel(code); got != want {
			t.Errorf("statusLabel(%d) = %q, want %q", code, got, want)
		}
	}
}
