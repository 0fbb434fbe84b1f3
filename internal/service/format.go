package service

import (
	"github.com/kjstillabower/weather-lookup-service/internal/client"
	"github.com/kjstillabower/weather-lookup-service/internal/models"
	"github.com/kjstillabower/weather-lookup-service/internal/weathercode"
)

// FormatResult maps the two upstream payloads onto the public response.
// It performs no I/O and never fails: unit labels are copied verbatim and
// unmapped weather codes get the unknown-condition entry. Coordinates are the
// ones the forecast reports. A missing current block yields zero conditions.
func FormatResult(city string, place client.GeocodingResult, forecast client.ForecastResponse, lang string) models.WeatherResult {
	var cur client.ForecastCurrent
	if forecast.Current != nil {
		cur = *forecast.Current
	}
	return models.WeatherResult{
		City: city,
		Location: models.Location{
			Name:        place.Name,
			Country:     place.Country,
			CountryCode: place.CountryCode,
			Admin1:      place.Admin1,
		},
		Coordinates: models.Coordinates{
			Latitude:  forecast.Latitude,
			Longitude: forecast.Longitude,
		},
		Current: models.CurrentConditions{
			Temperature: cur.Temperature2m,
			WindSpeed:   cur.WindSpeed10m,
			Humidity:    cur.RelativeHumidity2m,
			WeatherCode: cur.WeatherCode,
			Time:        cur.Time,
		},
		Condition:            weathercode.Describe(cur.WeatherCode, lang),
		Timezone:             forecast.Timezone,
		TimezoneAbbreviation: forecast.TimezoneAbbreviation,
		Units: models.Units{
			Temperature: forecast.CurrentUnits.Temperature2m,
			WindSpeed:   forecast.CurrentUnits.WindSpeed10m,
			Humidity:    forecast.CurrentUnits.RelativeHumidity2m,
		},
	}
}
