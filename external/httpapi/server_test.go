package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/belmonts/belix/internal/discord"
	"github.com/belmonts/belix/internal/scheduler"
	"github.com/belmonts/belix/internal/status"
)

func newTestServer(t *testing.T, tracker *status.Tracker) *httptest.Server {
	t.Helper()
	s, err := NewServer(":0", tracker)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	h, err := s.Handler()
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, status.NewTracker(nil))
	resp := get(t, ts.URL+"/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "OK" || body.Timestamp.IsZero() {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestStatusOfflineIs503(t *testing.T) {
	ts := newTestServer(t, status.NewTracker(nil))
	resp := get(t, ts.URL+"/status")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.BotOnline || body.ConnectedAt != nil || body.NextScheduledUpdate != nil {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestStatusOnline(t *testing.T) {
	at := time.Date(2025, time.June, 15, 20, 0, 0, 0, time.UTC)
	tracker := status.NewTracker(func() (scheduler.NextRun, bool) {
		return scheduler.NextRun{Name: "terminology post", At: at}, true
	})
	tracker.HandleReady(discord.ReadyEvent{})
	tracker.HandleMessage(discord.MessageEvent{Author: discord.Member{UserID: "1"}})

	ts := newTestServer(t, tracker)
	resp := get(t, ts.URL+"/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.BotOnline || body.TotalMessagesSent != 1 || body.LastMessageSent == nil {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.NextScheduledUpdate == nil || body.NextScheduledUpdate.Name != "terminology post" || !body.NextScheduledUpdate.At.Equal(at) {
		t.Fatalf("unexpected next job: %+v", body.NextScheduledUpdate)
	}
}

func TestRootAndCORS(t *testing.T) {
	ts := newTestServer(t, status.NewTracker(nil))
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Origin", "https://example.com")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("unexpected allow origin: %q", got)
	}
	var body rootResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Service != status.ServiceName || body.Status != "offline" || body.Endpoints.Metrics != "/metrics" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, status.NewTracker(nil))
	resp := get(t, ts.URL+"/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, status.NewTracker(nil))
	resp, err := http.Post(ts.URL+"/health", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}
