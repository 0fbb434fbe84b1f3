// Command weather looks up the current weather for a city and prints it.
//
// By default it calls the geocoding and forecast APIs directly. With --api it
// asks a running weather-lookup-service instead.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-lookup-service/internal/client"
	"github.com/kjstillabower/weather-lookup-service/internal/config"
	"github.com/kjstillabower/weather-lookup-service/internal/display"
	"github.com/kjstillabower/weather-lookup-service/internal/models"
	"github.com/kjstillabower/weather-lookup-service/internal/observability"
	"github.com/kjstillabower/weather-lookup-service/internal/remote"
	"github.com/kjstillabower/weather-lookup-service/internal/service"
	"github.com/kjstillabower/weather-lookup-service/internal/validation"
)

// lookup is satisfied by both the in-process service and the remote client.
type lookup interface {
	GetWeatherByCity(ctx context.Context, city string) (models.WeatherResult, error)
}

type options struct {
	apiURL   string
	timeout  time.Duration
	language string
	verbose  bool
}

func main() {
	if err := newRootCmd(os.Stdout, nil).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command. newLookup overrides how the lookup is
// constructed and is nil outside tests.
func newRootCmd(out io.Writer, newLookup func(options) (lookup, func(error) string, error)) *cobra.Command {
	var opts options
	if newLookup == nil {
		newLookup = buildLookup
	}

	cmd := &cobra.Command{
		Use:           "weather <city>",
		Short:         "Show the current weather for a city",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := display.NewRenderer(out)
			city, err := validation.ValidateCity(strings.Join(args, " "), validation.DefaultCityMinLength, validation.DefaultCityMaxLength)
			if err != nil {
				msg := validation.Message(err, validation.DefaultCityMinLength, validation.DefaultCityMaxLength)
				r.Error(msg)
				return errors.New(msg)
			}

			l, message, err := newLookup(opts)
			if err != nil {
				r.Error(err.Error())
				return err
			}

			r.Loading(city)
			res, err := l.GetWeatherByCity(cmd.Context(), city)
			if err != nil {
				r.Error(message(err))
				return err
			}
			r.Result(res)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.apiURL, "api", "", "base URL of a running weather-lookup-service (e.g. http://localhost:3001)")
	f.DurationVar(&opts.timeout, "timeout", 0, "per-call timeout (default 10s with --api, API_TIMEOUT otherwise)")
	f.StringVar(&opts.language, "lang", "", "geocoding and description language (default GEOCODING_LANGUAGE)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log lookup steps to stderr")
	return cmd
}

// buildLookup returns the remote client when --api is set, otherwise an
// in-process service over both upstream clients.
func buildLookup(opts options) (lookup, func(error) string, error) {
	if opts.apiURL != "" {
		c, err := remote.NewClient(opts.apiURL, opts.timeout)
		if err != nil {
			return nil, nil, err
		}
		return c, remote.UserMessage, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	timeout := cfg.UpstreamTimeout
	if opts.timeout > 0 {
		timeout = opts.timeout
	}
	lang := cfg.GeocodingLanguage
	if opts.language != "" {
		lang = opts.language
	}

	geocoder, err := client.NewGeocodingClient(cfg.GeocodingAPIURL, lang, timeout)
	if err != nil {
		return nil, nil, err
	}
	forecaster, err := client.NewForecastClient(cfg.WeatherAPIURL, timeout)
	if err != nil {
		return nil, nil, err
	}
	svc := service.NewWeatherService(geocoder, forecaster, service.Options{
		Language:      lang,
		CityMinLength: cfg.CityMinLength,
		CityMaxLength: cfg.CityMaxLength,
	})
	return withLogger(svc, opts.verbose), client.UserMessage, nil
}

// loggedLookup attaches a stderr logger to each lookup context.
type loggedLookup struct {
	next   lookup
	logger *zap.Logger
}

func (l loggedLookup) GetWeatherByCity(ctx context.Context, city string) (models.WeatherResult, error) {
	defer func() { _ = observability.Flush(ctx, l.logger) }()
	return l.next.GetWeatherByCity(observability.WithLogger(ctx, l.logger), city)
}

func withLogger(next lookup, verbose bool) lookup {
	if !verbose {
		return next
	}
	logger, err := observability.NewLoggerAt("DEBUG")
	if err != nil {
		return next
	}
	return loggedLookup{next: next, logger: logger}
}
