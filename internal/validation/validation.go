package validation

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Default city name bounds, in runes after trimming.
const (
	DefaultCityMinLength = 2
	DefaultCityMaxLength = 100
)

// ErrCityEmpty is returned when the city is empty or whitespace-only after trim.
var ErrCityEmpty = errors.New("city name is required")

// ErrCityTooShort is returned when the city length is below the minimum.
var ErrCityTooShort = errors.New("city name too short")

// ErrCityTooLong is returned when the city length exceeds the maximum.
var ErrCityTooLong = errors.New("city name too long")

// ErrCityInvalidChars is returned when the city contains control characters
// or invalid UTF-8.
var ErrCityInvalidChars = errors.New("city name contains invalid characters")

// ValidateCity trims the input and enforces length bounds (minLen, maxLen in
// runes; zero or negative disables a bound). Any printable text is accepted:
// names such as "St. John's" or "Kraków" are left to the geocoder.
// Returns the trimmed name.
func ValidateCity(input string, minLen, maxLen int) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", ErrCityEmpty
	}
	if !utf8.ValidString(s) {
		return "", ErrCityInvalidChars
	}
	n := utf8.RuneCountInString(s)
	if minLen > 0 && n < minLen {
		return "", ErrCityTooShort
	}
	if maxLen > 0 && n > maxLen {
		return "", ErrCityTooLong
	}
	for _, c := range s {
		if unicode.IsControl(c) {
			return "", ErrCityInvalidChars
		}
	}
	return s, nil
}

// Message returns the user-facing text for a validation error.
func Message(err error, minLen, maxLen int) string {
	switch {
	case errors.Is(err, ErrCityEmpty):
		return "City name is required."
	case errors.Is(err, ErrCityTooShort):
		return "City name must be at least " + strconv.Itoa(minLen) + " characters."
	case errors.Is(err, ErrCityTooLong):
		return "City name must be at most " + strconv.Itoa(maxLen) + " characters."
	case errors.Is(err, ErrCityInvalidChars):
		return "City name contains invalid characters."
	default:
		return "Invalid city name."
	}
}
