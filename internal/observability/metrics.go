package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kjstillabower/weather-lookup-service/internal/traffic"
)

// recentWindow is the window behind the recent* gauges.
const recentWindow = time.Minute

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation.
	HTTPRequestsInFlight prometheus.Gauge

	// Upstream call rate per upstream (geocoding, forecast). Watch for: error vs success ratio.
	UpstreamCallsTotal *prometheus.CounterVec

	// Upstream latency per call. Watch for: p99 approaching the per-call timeout.
	UpstreamDuration *prometheus.HistogramVec

	// City lookups by outcome (success or error kind).
	WeatherLookupsTotal *prometheus.CounterVec

	// Rate limit denials. Watch for: overload, capacity exceeded.
	RateLimitDeniedTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	UpstreamCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamCallsTotal",
			Help: "Total number of outbound calls per upstream and status",
		},
		[]string{"upstream", "status"},
	)
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstreamDurationSeconds",
			Help:    "Outbound call latency in seconds per upstream and status",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"upstream", "status"},
	)
	WeatherLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherLookupsTotal",
			Help: "Total number of city weather lookups by outcome",
		},
		[]string{"outcome"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		UpstreamCallsTotal, UpstreamDuration,
		WeatherLookupsTotal,
		RateLimitDeniedTotal,
		// Sliding-window views computed at scrape time. Watch for: failure ratio above a few percent.
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "weatherLookupFailureRatio1m",
			Help: "Share of lookups in the last minute that failed on the server side",
		}, func() float64 { return traffic.FailureRatio(recentWindow) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "rateLimitDenied1m",
			Help: "Requests denied by the rate limiter in the last minute",
		}, func() float64 { return float64(traffic.Count(traffic.Denied, recentWindow)) }),
	)
}

// RecordLookup counts one city lookup; outcome is "success" or an error kind.
func RecordLookup(outcome string) {
	WeatherLookupsTotal.WithLabelValues(outcome).Inc()
	switch outcome {
	case "success":
		traffic.Record(traffic.Success)
	case "invalid_input", "not_found":
		traffic.Record(traffic.Rejected)
	default:
		traffic.Record(traffic.Failed)
	}
}

// RecordRateLimitDenied counts one 429.
func RecordRateLimitDenied() {
	RateLimitDeniedTotal.Inc()
	traffic.Record(traffic.Denied)
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
