package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-lookup-service/internal/client"
	"github.com/kjstillabower/weather-lookup-service/internal/models"
	"github.com/kjstillabower/weather-lookup-service/internal/observability"
	"github.com/kjstillabower/weather-lookup-service/internal/validation"
)

// Options tunes validation and localisation. Zero values take defaults.
type Options struct {
	Language      string
	CityMinLength int
	CityMaxLength int
}

// WeatherService resolves a city name to its current weather. Each call runs
// geocoding then forecast, strictly in sequence, with no retries and no
// shared state between calls.
type WeatherService struct {
	geocoder   client.Geocoder
	forecaster client.Forecaster
	lang       string
	minLen     int
	maxLen     int
}

// NewWeatherService creates a WeatherService over the two upstream clients.
func NewWeatherService(geocoder client.Geocoder, forecaster client.Forecaster, opts Options) *WeatherService {
	if opts.CityMinLength <= 0 {
		opts.CityMinLength = validation.DefaultCityMinLength
	}
	if opts.CityMaxLength <= 0 {
		opts.CityMaxLength = validation.DefaultCityMaxLength
	}
	return &WeatherService{
		geocoder:   geocoder,
		forecaster: forecaster,
		lang:       opts.Language,
		minLen:     opts.CityMinLength,
		maxLen:     opts.CityMaxLength,
	}
}

// GetWeatherByCity validates city, geocodes it, fetches current conditions
// for the first match and returns the formatted result. Failures come back as
// *client.Error. Invalid input is rejected before any outbound call and the
// forecast is never requested when geocoding fails.
func (s *WeatherService) GetWeatherByCity(ctx context.Context, city string) (result models.WeatherResult, err error) {
	start := time.Now()
	logger := observability.LoggerFromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			err = client.NewError(client.KindUnexpected, "lookup", client.UnexpectedMessage, fmt.Errorf("panic: %v", r))
			result = models.WeatherResult{}
		}
		s.record(logger, err)
	}()

	name, verr := validation.ValidateCity(city, s.minLen, s.maxLen)
	if verr != nil {
		return models.WeatherResult{}, client.NewError(client.KindInvalidInput, "validate",
			validation.Message(verr, s.minLen, s.maxLen), verr)
	}
	logger.Info("weather lookup", zap.String("city", name))

	place, err := s.geocoder.Geocode(ctx, name)
	if err != nil {
		return models.WeatherResult{}, classify(err)
	}
	coords := place.Coordinates()
	logger.Debug("coordinates resolved",
		zap.String("city", name),
		zap.String("match", place.Name),
		zap.Float64("latitude", coords.Latitude),
		zap.Float64("longitude", coords.Longitude))

	forecast, err := s.forecaster.CurrentWeather(ctx, coords)
	if err != nil {
		return models.WeatherResult{}, classify(err)
	}
	if forecast.Current == nil {
		return models.WeatherResult{}, client.NewError(client.KindNotFound, "forecast",
			"No current weather data is available for this location.", nil)
	}

	result = FormatResult(name, place, forecast, s.lang)
	logger.Info("weather lookup succeeded",
		zap.String("city", name),
		zap.Float64("temperature", result.Current.Temperature),
		zap.String("unit", result.Units.Temperature),
		zap.Duration("duration", time.Since(start)))
	return result, nil
}

// classify passes classified errors through and wraps anything else.
func classify(err error) error {
	var e *client.Error
	if errors.As(err, &e) {
		return err
	}
	return client.NewError(client.KindUnexpected, "lookup", client.UnexpectedMessage, err)
}

func (s *WeatherService) record(logger *zap.Logger, err error) {
	if err == nil {
		observability.RecordLookup("success")
		return
	}
	kind := client.KindOf(err)
	observability.RecordLookup(kind.String())
	switch kind {
	case client.KindInvalidInput:
		logger.Debug("weather lookup rejected", zap.Error(err))
	case client.KindNotFound:
		logger.Warn("weather lookup not found", zap.Error(err))
	default:
		logger.Error("weather lookup failed",
			zap.String("kind", kind.String()),
			zap.String("category", string(client.CategorizeError(err))),
			zap.Error(err))
	}
}
