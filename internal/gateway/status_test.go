package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStatus_ReturnsMetrics(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.RecordEvent("message", "ok", 100*time.Millisecond)
	m.RecordEvent("message", "error", 100*time.Millisecond)
	m.RecordReply(1)

	d := NewWebhookDispatcher(testLogger(), m)
	d.Register("/callback", &mockWebhookHandler{})

	g := &Gateway{
		metrics:    m,
		dispatcher: d,
		baseURL:    "https://bot.example.com",
		mounts:     []mount{{prefix: "/static"}, {prefix: "/downloaded"}},
		startedAt:  time.Now().Add(-5 * time.Minute),
	}

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := httptest.NewRecorder()
	g.handleStatus().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp StatusResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.BaseURL != "https://bot.example.com" {
		t.Errorf("base_url = %q", resp.BaseURL)
	}
	if len(resp.Webhooks) != 1 || resp.Webhooks[0] != "/callback" {
		t.Errorf("webhooks = %v", resp.Webhooks)
	}
	if len(resp.Mounts) != 2 {
		t.Errorf("mounts = %v", resp.Mounts)
	}
	if resp.Metrics.Events != 2 {
		t.Errorf("events = %d, want 2", resp.Metrics.Events)
	}
	if resp.Metrics.Errors != 1 {
		t.Errorf("errors = %d, want 1", resp.Metrics.Errors)
	}
	if resp.Uptime < 299 {
		t.Errorf("uptime = %d, want >= 299", resp.Uptime)
	}
}
