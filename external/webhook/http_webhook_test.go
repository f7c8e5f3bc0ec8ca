package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/belmonts/belix/internal/webhook"
)

func TestSendMeetingReport_EmptyWebhookURL(t *testing.T) {
	sender := NewHTTPSender("")
	if err := sender.SendMeetingReport(context.Background(), webhook.MeetingReport{SessionID: "s"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestSendMeetingReport_Success(t *testing.T) {
	var got webhook.MeetingReport
	var gotSession string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type: %s", ct)
		}
		gotSession = r.Header.Get("X-Belix-Session-Id")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	report := webhook.MeetingReport{
		SessionID:       "0b7e4c1e-6a57-4d8e-9a43-1d1f0f3a2b11",
		MeetingID:       7,
		Title:           "Daily Gathering - 2025-06-15",
		AttendedMembers: 1,
		Attendance: []webhook.AttendanceEntry{
			{UserID: "1", Username: "alex", Percentage: 75, PointsAwarded: 5},
		},
	}
	sender := NewHTTPSender(server.URL)
	if err := sender.SendMeetingReport(context.Background(), report); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if gotSession != report.SessionID {
		t.Fatalf("unexpected session header: %s", gotSession)
	}
	if got.MeetingID != 7 || len(got.Attendance) != 1 || got.Attendance[0].PointsAwarded != 5 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestSendMeetingReport_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	if err := sender.SendMeetingReport(context.Background(), webhook.MeetingReport{}); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
