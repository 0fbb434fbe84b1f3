package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/weather-lookup-service/internal/observability"
)

// RouterConfig holds the knobs for NewRouter.
type RouterConfig struct {
	RequestTimeout time.Duration
	RateLimiter    *rate.Limiter // nil disables rate limiting
	AllowedOrigins []string
}

// NewRouter wires routes and middleware:
//
//	GET /weather?city=  lookup (rate limited, request deadline)
//	GET /weather/health liveness
//	GET /metrics        Prometheus
func NewRouter(h *Handler, cfg RouterConfig, logger *zap.Logger) http.Handler {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(RecoveryMiddleware)
	router.Use(MetricsMiddleware)

	router.HandleFunc("/weather/health", h.GetHealth).Methods(http.MethodGet)
	router.Handle("/weather",
		RateLimitMiddleware(cfg.RateLimiter)(
			TimeoutMiddleware(cfg.RequestTimeout)(
				http.HandlerFunc(h.GetWeather)))).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)

	router.NotFoundHandler = CorrelationIDMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "Cannot "+r.Method+" "+r.URL.Path)
	}))
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "Method "+r.Method+" not allowed on "+r.URL.Path)
	})

	return otelhttp.NewHandler(CORSMiddleware(cfg.AllowedOrigins)(router), "weather-lookup-service")
}
