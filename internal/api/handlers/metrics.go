package handlers

import (
	"net/http"

	"github.com/ramonehamilton/draft-claw/internal/api/response"
	"github.com/ramonehamilton/draft-claw/internal/metrics"
	"github.com/ramonehamilton/draft-claw/internal/version"
)

// MetricsHandler exposes pipeline statistics.
type MetricsHandler struct {
	metrics *metrics.DraftMetrics
	clients func() int
}

// NewMetricsHandler creates a new MetricsHandler. clients reports the
// number of websocket subscribers.
func NewMetricsHandler(m *metrics.DraftMetrics, clients func() int) *MetricsHandler {
	return &MetricsHandler{metrics: m, clients: clients}
}

// MetricsResponse is the /metrics body.
type MetricsResponse struct {
	*metrics.DraftStats
	WebSocketClients int    `json:"websocket_clients"`
	Version          string `json:"version"`
}

// GetMetrics returns a snapshot of the counters and latencies.
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, _ *http.Request) {
	body := MetricsResponse{DraftStats: h.metrics.GetStats(), Version: version.GetVersion()}
	if h.clients != nil {
		body.WebSocketClients = h.clients()
	}
	response.Success(w, body)
}
