// Package weathercode maps WMO weather interpretation codes, as returned by
// the Open-Meteo forecast API, to a description and icon.
package weathercode

import (
	"sort"
	"strings"

	"github.com/kjstillabower/weather-lookup-service/internal/models"
)

// DefaultLanguage is used when the requested language has no table.
const DefaultLanguage = "en"

const unknownIcon = "❓"

type entry struct {
	icon string
	en   string
	pt   string
}

var table = map[int]entry{
	0:  {"☀️", "Clear sky", "Céu limpo"},
	1:  {"🌤️", "Mainly clear", "Principalmente limpo"},
	2:  {"⛅", "Partly cloudy", "Parcialmente nublado"},
	3:  {"☁️", "Overcast", "Nublado"},
	45: {"🌫️", "Fog", "Neblina"},
	48: {"🌫️", "Depositing rime fog", "Neblina com geada"},
	51: {"🌦️", "Light drizzle", "Garoa leve"},
	53: {"🌦️", "Moderate drizzle", "Garoa moderada"},
	55: {"🌧️", "Dense drizzle", "Garoa intensa"},
	56: {"🌧️", "Light freezing drizzle", "Garoa congelante leve"},
	57: {"🌧️", "Dense freezing drizzle", "Garoa congelante intensa"},
	61: {"🌧️", "Slight rain", "Chuva leve"},
	63: {"🌧️", "Moderate rain", "Chuva moderada"},
	65: {"⛈️", "Heavy rain", "Chuva forte"},
	66: {"🌧️", "Light freezing rain", "Chuva congelante leve"},
	67: {"🌧️", "Heavy freezing rain", "Chuva congelante forte"},
	71: {"🌨️", "Slight snow fall", "Neve leve"},
	73: {"🌨️", "Moderate snow fall", "Neve moderada"},
	75: {"❄️", "Heavy snow fall", "Neve intensa"},
	77: {"🧊", "Snow grains", "Granizo"},
	80: {"🌦️", "Slight rain showers", "Pancadas leves"},
	81: {"🌧️", "Moderate rain showers", "Pancadas moderadas"},
	82: {"⛈️", "Violent rain showers", "Pancadas fortes"},
	85: {"🌨️", "Slight snow showers", "Pancadas de neve leves"},
	86: {"❄️", "Heavy snow showers", "Pancadas de neve fortes"},
	95: {"⛈️", "Thunderstorm", "Tempestade"},
	96: {"⛈️", "Thunderstorm with slight hail", "Tempestade com granizo leve"},
	99: {"⛈️", "Thunderstorm with heavy hail", "Tempestade com granizo forte"},
}

var unknown = entry{unknownIcon, "Unknown condition", "Condição desconhecida"}

// Describe returns the condition for code in lang ("en" or "pt"; region
// suffixes such as "pt-BR" are accepted). Unmapped codes yield the unknown
// condition entry. Never fails.
func Describe(code int, lang string) models.Condition {
	e, ok := table[code]
	if !ok {
		e = unknown
	}
	return models.Condition{Description: e.text(lang), Icon: e.icon}
}

// Unknown returns the fallback entry used for unmapped codes.
func Unknown(lang string) models.Condition {
	return models.Condition{Description: unknown.text(lang), Icon: unknown.icon}
}

// Known reports whether code has its own table entry.
func Known(code int) bool {
	_, ok := table[code]
	return ok
}

// Codes returns every mapped code in ascending order.
func Codes() []int {
	codes := make([]int, 0, len(table))
	for c := range table {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}

// SupportedLanguage reports whether lang has its own description column.
func SupportedLanguage(lang string) bool {
	switch baseLanguage(lang) {
	case "en", "pt":
		return true
	}
	return false
}

func (e entry) text(lang string) string {
	if baseLanguage(lang) == "pt" {
		return e.pt
	}
	return e.en
}

func baseLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		lang = lang[:i]
	}
	return lang
}
