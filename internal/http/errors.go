package http

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-lookup-service/internal/client"
	"github.com/kjstillabower/weather-lookup-service/internal/observability"
)

// isoMillis matches the ISO-8601 UTC form with millisecond precision.
const isoMillis = "2006-01-02T15:04:05.000Z"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

// StatusForKind maps an error kind to the response status.
func StatusForKind(kind client.Kind) int {
	switch kind {
	case client.KindInvalidInput:
		return http.StatusBadRequest
	case client.KindNotFound:
		return http.StatusNotFound
	case client.KindTimeout:
		return http.StatusRequestTimeout
	case client.KindUpstreamFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the standard error body for status with a user-safe message.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Timestamp:  time.Now().UTC().Format(isoMillis),
		Path:       r.URL.RequestURI(),
		Message:    message,
		Error:      http.StatusText(status),
	})
}

// writeServiceError maps a lookup error to its status and writes it. The
// cause is logged, never sent.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusForKind(client.KindOf(err))
	observability.LoggerFromContext(r.Context()).Debug("lookup error response",
		zap.Int("status", status),
		zap.Error(err))
	writeError(w, r, status, client.UserMessage(err))
}
