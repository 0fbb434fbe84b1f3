package client

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

	"github.com/kjstillabower/weather-lookup-service/internal/observability"
)

// maxBodyBytes caps how much of an upstream body is read.
const maxBodyBytes = 1 << 20

// StatusError records a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "parse response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// messages holds the user-safe text one upstream reports per failure kind.
type messages struct {
	timeout  string
	upstream string
}

// upstream is a JSON GET endpoint with its own per-call deadline.
type upstream struct {
	name    string
	op      string
	baseURL *url.URL
	timeout time.Duration
	client  *http.Client
	msgs    messages
}

func newUpstream(name, op, rawURL string, timeout time.Duration, msgs messages) (*upstream, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("%s URL is required", name)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid %s URL: %w", name, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid %s URL %q: want absolute http(s) URL", name, rawURL)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("%s timeout must be positive", name)
	}
	return &upstream{
		name:    name,
		op:      op,
		baseURL: u,
		timeout: timeout,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		msgs: msgs,
	}, nil
}

// getJSON issues one GET with params and decodes a 2xx body into out.
// Every failure is returned as a classified *Error.
func (u *upstream) getJSON(ctx context.Context, params url.Values, out any) error {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	endpoint := *u.baseURL
	q := endpoint.Query()
	for k, vs := range params {
		q[k] = vs
	}
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		u.record("error", start)
		return NewError(KindUnexpected, u.op, UnexpectedMessage, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if corrID := observability.CorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			u.record("timeout", start)
			return NewError(KindTimeout, u.op, u.msgs.timeout, fmt.Errorf("request timeout after %s: %w", u.timeout, err))
		}
		u.record("error", start)
		return NewError(KindUpstreamFailure, u.op, u.msgs.upstream, fmt.Errorf("http request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if isTimeout(err) {
			u.record("timeout", start)
			return NewError(KindTimeout, u.op, u.msgs.timeout, fmt.Errorf("read response body: %w", err))
		}
		u.record("error", start)
		return NewError(KindUpstreamFailure, u.op, u.msgs.upstream, fmt.Errorf("read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		u.record(statusLabel(resp.StatusCode), start)
		return NewError(KindUpstreamFailure, u.op, u.msgs.upstream, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       truncate(strings.TrimSpace(string(body)), 256),
		})
	}
	u.record("success", start)

	if err := json.Unmarshal(body, out); err != nil {
		return NewError(KindUnexpected, u.op, UnexpectedMessage, &decodeError{err: err})
	}
	return nil
}

func (u *upstream) record(status string, start time.Time) {
	observability.UpstreamCallsTotal.WithLabelValues(u.name, status).Inc()
	observability.UpstreamDuration.WithLabelValues(u.name, status).Observe(time.Since(start).Seconds())
}

// isTimeout reports whether err came from a deadline or a cancelled context.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func statusLabel(statusCode int) string {
	if statusCode == http.StatusTooManyRequests {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
