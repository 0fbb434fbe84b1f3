// Package display renders lookup states for a terminal.
package display

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kjstillabower/weather-lookup-service/internal/models"
)

// observedLayout is the local-time form Open-Meteo uses with timezone=auto.
const observedLayout = "2006-01-02T15:04"

// Renderer writes loading, success and error states to out.
type Renderer struct {
	out io.Writer
}

// NewRenderer returns a Renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Loading prints the in-progress line for city.
func (r *Renderer) Loading(city string) {
	fmt.Fprintf(r.out, "Fetching weather for %s...\n", city)
}

// Result prints one successful lookup.
func (r *Renderer) Result(res models.WeatherResult) {
	var b strings.Builder
	b.WriteString(Title(res))
	b.WriteByte('\n')
	if t := FormatDateTime(res.Current.Time); t != "" {
		b.WriteString(t)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "  %s %s%s\n", res.Condition.Icon, formatFloat(res.Current.Temperature), res.Units.Temperature)
	fmt.Fprintf(&b, "  %s\n\n", res.Condition.Description)
	fmt.Fprintf(&b, "  💧 Humidity:   %s%s\n", strconv.FormatFloat(res.Current.Humidity, 'f', -1, 64), res.Units.Humidity)
	fmt.Fprintf(&b, "  💨 Wind speed: %s %s\n", formatFloat(res.Current.WindSpeed), res.Units.WindSpeed)
	fmt.Fprintf(&b, "\n  📍 %.4f°, %.4f°\n", res.Coordinates.Latitude, res.Coordinates.Longitude)
	if res.Timezone != "" {
		fmt.Fprintf(&b, "  🌍 %s\n", res.Timezone)
	}
	io.WriteString(r.out, b.String())
}

// Error prints a user-safe failure message.
func (r *Renderer) Error(message string) {
	fmt.Fprintf(r.out, "⚠️  %s\n", message)
}

// Title is the resolved place as "Name, Country", falling back to the
// queried city when the match carries no name.
func Title(res models.WeatherResult) string {
	if label := res.Location.Label(); label != "" {
		return label
	}
	return res.City
}

// FormatDateTime renders an observation time as DD/MM/YYYY HH:MM. Values
// that do not parse are returned unchanged.
func FormatDateTime(s string) string {
	for _, layout := range []string{observedLayout, "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02/01/2006 15:04")
		}
	}
	return s
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
