// Package remote calls a running weather-lookup-service over HTTP.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/kjstillabower/weather-lookup-service/internal/models"
)

// DefaultTimeout bounds one call to the service.
const DefaultTimeout = 10 * time.Second

// Messages shown when the service gave no usable answer.
const (
	MsgServerError = "Error fetching weather data."
	MsgTimeout     = "The request took too long. Check your connection and try again."
	MsgNoServer    = "Could not connect to the server. Check your internet connection."
	MsgUnexpected  = "An unexpected error occurred. Try again later."
)

// Error is a failed call. Message is safe to show the user; StatusCode is
// zero when no response arrived.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Client talks to the service's /weather endpoints.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// NewClient returns a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("api url must be an absolute http(s) URL, got %q", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: u,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

type errorBody struct {
	Message string `json:"message"`
}

// GetWeatherByCity calls GET /weather?city=.
func (c *Client) GetWeatherByCity(ctx context.Context, city string) (models.WeatherResult, error) {
	var result models.WeatherResult
	resp, err := c.get(ctx, "/weather", url.Values{"city": {city}})
	if err != nil {
		return result, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return result, classifyTransport(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := MsgServerError
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.Message != "" {
			msg = eb.Message
		}
		return result, &Error{StatusCode: resp.StatusCode, Message: msg}
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return models.WeatherResult{}, &Error{StatusCode: resp.StatusCode, Message: MsgUnexpected, Err: err}
	}
	return result, nil
}

// CheckHealth reports whether GET /weather/health answers 200.
func (c *Client) CheckHealth(ctx context.Context) bool {
	resp, err := c.get(ctx, "/weather/health", nil)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

func (c *Client) get(ctx context.Context, path string, q url.Values) (*http.Response, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	u.RawQuery = q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &Error{Message: MsgUnexpected, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	return resp, nil
}

// classifyTransport maps a failure with no response to its user message.
func classifyTransport(err error) *Error {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return &Error{Message: MsgTimeout, Err: err}
	}
	return &Error{Message: MsgNoServer, Err: err}
}

// UserMessage returns the text to show for err.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return MsgUnexpected
}
