package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/weather-lookup-service/internal/client"
	"github.com/kjstillabower/weather-lookup-service/internal/config"
	httphandler "github.com/kjstillabower/weather-lookup-service/internal/http"
	"github.com/kjstillabower/weather-lookup-service/internal/lifecycle"
	"github.com/kjstillabower/weather-lookup-service/internal/observability"
	"github.com/kjstillabower/weather-lookup-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLoggerAt(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	srv, err := newServer(cfg, logger)
	if err != nil {
		logger.Fatal("setup", zap.Error(err))
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("geocoding_url", cfg.GeocodingAPIURL),
			zap.String("weather_url", cfg.WeatherAPIURL),
			zap.Duration("upstream_timeout", cfg.UpstreamTimeout))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	lifecycle.WaitForSignal(context.Background())

	drain := lifecycle.Drain{
		Server:          srv,
		Timeout:         cfg.ShutdownTimeout,
		InFlight:        httphandler.InFlightCount,
		WaitInFlight:    httphandler.WaitForInFlight,
		InFlightTimeout: cfg.ShutdownInFlightTimeout,
		CheckInterval:   cfg.ShutdownCheckInterval,
	}
	_ = drain.Run(logger)
	logger.Info("shutdown complete")
	if err := observability.Flush(context.Background(), logger); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
}

// newServer builds both upstream clients, the lookup service and the router.
func newServer(cfg *config.Config, logger *zap.Logger) (*http.Server, error) {
	geocoder, err := client.NewGeocodingClient(cfg.GeocodingAPIURL, cfg.GeocodingLanguage, cfg.UpstreamTimeout)
	if err != nil {
		return nil, fmt.Errorf("geocoding client: %w", err)
	}
	forecaster, err := client.NewForecastClient(cfg.WeatherAPIURL, cfg.UpstreamTimeout)
	if err != nil {
		return nil, fmt.Errorf("forecast client: %w", err)
	}

	weatherService := service.NewWeatherService(geocoder, forecaster, service.Options{
		Language:      cfg.GeocodingLanguage,
		CityMinLength: cfg.CityMinLength,
		CityMaxLength: cfg.CityMaxLength,
	})

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	router := httphandler.NewRouter(httphandler.NewHandler(weatherService), httphandler.RouterConfig{
		RequestTimeout: cfg.RequestTimeout,
		RateLimiter:    limiter,
		AllowedOrigins: cfg.AllowedOrigins,
	}, logger)

	return &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 2*time.Second,
	}, nil
}
