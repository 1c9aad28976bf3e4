package gateway

import (
	"net/http"
	"time"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Uptime   int64           `json:"uptime_seconds"`
	BaseURL  string          `json:"base_url"`
	Webhooks []string        `json:"webhooks"`
	Mounts   []string        `json:"mounts"`
	Metrics  MetricsSnapshot `json:"metrics"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			Uptime:   int64(time.Since(g.startedAt) / time.Second),
			BaseURL:  g.baseURL,
			Webhooks: g.dispatcher.Paths(),
			Mounts:   make([]string, 0, len(g.mounts)),
			Metrics:  g.metrics.Snapshot(),
		}
		for _, m := range g.mounts {
			resp.Mounts = append(resp.Mounts, m.prefix)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
