package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds service configuration loaded from .env, YAML and env.
type Config struct {
	ServerPort string

	GeocodingAPIURL   string
	WeatherAPIURL     string
	UpstreamTimeout   time.Duration
	GeocodingLanguage string

	RequestTimeout time.Duration
	RateLimitRPS   int
	RateLimitBurst int
	AllowedOrigins []string

	CityMinLength int
	CityMaxLength int

	ShutdownTimeout         time.Duration
	ShutdownInFlightTimeout time.Duration
	ShutdownCheckInterval   time.Duration

	LogLevel string
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Geocoding struct {
		URL      string `yaml:"url"`
		Language string `yaml:"language"`
	} `yaml:"geocoding_api"`

	WeatherAPI struct {
		URL string `yaml:"url"`
	} `yaml:"weather_api"`

	Upstream struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"upstream"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	CORS struct {
		Origins []string `yaml:"origins"`
	} `yaml:"cors"`

	Validation struct {
		CityMinLength int `yaml:"city_min_length"`
		CityMaxLength int `yaml:"city_max_length"`
	} `yaml:"validation"`

	Shutdown struct {
		Timeout          string `yaml:"timeout"`
		InFlightTimeout  string `yaml:"in_flight_timeout"`
		InFlightInterval string `yaml:"in_flight_check_interval"`
	} `yaml:"shutdown"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Load reads .env (if present), then config/{ENV_NAME}.yaml, then applies
// environment overrides. The YAML file is optional unless ENV_NAME is set
// explicitly. Call from project root.
func Load() (*Config, error) {
	_ = godotenv.Load() // missing .env is fine

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}

	env, explicit := os.LookupEnv("ENV_NAME")
	if env == "" {
		env = "dev"
		explicit = false
	}

	var fc fileConfig
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	case os.IsNotExist(err):
		if explicit {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = firstNonEmpty(os.Getenv("PORT"), fc.Server.Port, "3001")
	cfg.GeocodingAPIURL = firstNonEmpty(os.Getenv("GEOCODING_API_URL"), fc.Geocoding.URL)
	cfg.WeatherAPIURL = firstNonEmpty(os.Getenv("WEATHER_API_URL"), fc.WeatherAPI.URL)
	cfg.GeocodingLanguage = firstNonEmpty(os.Getenv("GEOCODING_LANGUAGE"), fc.Geocoding.Language, "pt")

	cfg.UpstreamTimeout = parseDurationOrZero(fc.Upstream.Timeout, 5*time.Second)
	if v := strings.TrimSpace(os.Getenv("API_TIMEOUT")); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("API_TIMEOUT must be milliseconds, got %q", v)
		}
		cfg.UpstreamTimeout = time.Duration(ms) * time.Millisecond
	}
	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 0)

	cfg.RateLimitRPS = envInt("RATE_LIMIT_RPS", fc.Reliability.RateLimitRPS)
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 100
	}
	cfg.RateLimitBurst = envInt("RATE_LIMIT_BURST", fc.Reliability.RateLimitBurst)
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 250
	}

	cfg.AllowedOrigins = fc.CORS.Origins
	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok {
		cfg.AllowedOrigins = splitList(v)
	}

	cfg.CityMinLength = fc.Validation.CityMinLength
	if cfg.CityMinLength <= 0 {
		cfg.CityMinLength = 2
	}
	cfg.CityMaxLength = fc.Validation.CityMaxLength
	if cfg.CityMaxLength <= 0 {
		cfg.CityMaxLength = 100
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)
	cfg.ShutdownCheckInterval = parseDuration(fc.Shutdown.InFlightInterval, 100*time.Millisecond)

	cfg.LogLevel = strings.ToUpper(firstNonEmpty(os.Getenv("LOG_LEVEL"), fc.Logging.Level, "INFO"))

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
// Returns zero or negative durations as-is (caller should handle fallback).
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// envInt returns the integer value of key, or fallback when unset or unparsable.
func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// validate checks upstream URLs and timeouts. RequestTimeout is raised to
// cover both sequential upstream calls when it is too short.
func validate(cfg *Config) error {
	if err := validateURL("GEOCODING_API_URL", cfg.GeocodingAPIURL); err != nil {
		return err
	}
	if err := validateURL("WEATHER_API_URL", cfg.WeatherAPIURL); err != nil {
		return err
	}
	if cfg.UpstreamTimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}
	if min := 2*cfg.UpstreamTimeout + time.Second; cfg.RequestTimeout < min {
		cfg.RequestTimeout = min
	}
	if cfg.CityMinLength > cfg.CityMaxLength {
		return fmt.Errorf("validation.city_min_length (%d) exceeds city_max_length (%d)", cfg.CityMinLength, cfg.CityMaxLength)
	}
	switch cfg.LogLevel {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("LOG_LEVEL must be DEBUG, INFO, WARN or ERROR, got %q", cfg.LogLevel)
	}
	return nil
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s required (set env or config file)", name)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw)
	}
	return nil
}
