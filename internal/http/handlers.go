package http

import (
	"net/http"
	"time"

	"github.com/kjstillabower/weather-lookup-service/internal/lifecycle"
	"github.com/kjstillabower/weather-lookup-service/internal/service"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	weatherService *service.WeatherService
}

// NewHandler returns a new Handler.
func NewHandler(weatherService *service.WeatherService) *Handler {
	return &Handler{weatherService: weatherService}
}

// GetWeather handles GET /weather?city={name}.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")

	result, err := h.weatherService.GetWeatherByCity(r.Context(), city)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HealthResponse is the liveness probe body.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// GetHealth handles GET /weather/health. It reports 503 once shutdown began.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC().Format(isoMillis)
	if lifecycle.IsShuttingDown() {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "shutting-down", Timestamp: now})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: now})
}
