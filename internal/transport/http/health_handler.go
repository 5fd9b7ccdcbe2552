package http

import (
	"net/http"
	"time"

	"github.com/IgorGrieder/shortlink/pkg/httputils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Timestamp string `json:"timestamp" example:"2024-01-15T10:30:00Z"`
}

type IndexResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Error   string `json:"error,omitempty"`
}

// HealthHandler handles health, metrics and the index page
type HealthHandler struct {
	service string
	version string
}

func NewHealthHandler(service, version string) *HealthHandler {
	return &HealthHandler{service: service, version: version}
}

// Health returns the health status of the service
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputils.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Index is where the empty slug and the not-found redirect land.
func (h *HealthHandler) Index(w http.ResponseWriter, r *http.Request) {
	httputils.RespondJSON(w, http.StatusOK, IndexResponse{
		Service: h.service,
		Version: h.version,
		Error:   r.URL.Query().Get("error"),
	})
}

// Metrics returns Prometheus metrics
func (h *HealthHandler) Metrics() http.Handler {
	return promhttp.Handler()
}
