package repository

import (
	"testing"
	"time"
)

func TestSummarize(t *testing.T) {
	d1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	got := Summarize([]Activity{
		{ActivityType: "message", MessageCount: 2, ActivityDate: d1},
		{ActivityType: "message", MessageCount: 1, ActivityDate: d1},
		{ActivityType: "voice", VoiceDurationMinutes: 30, ActivityDate: d2},
		{ActivityType: "reaction", ReactionCount: 4, ActivityDate: d2},
	})
	if got.TotalMessages != 3 || got.TotalVoiceMinutes != 30 || got.TotalReactions != 4 {
		t.Fatalf("unexpected totals: %+v", got)
	}
	if got.ActiveDays != 2 {
		t.Fatalf("expected 2 active days, got %d", got.ActiveDays)
	}
	if got.ActivitiesByType["message"] != 2 {
		t.Fatalf("unexpected per-type counts: %+v", got.ActivitiesByType)
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)
	if got.ActiveDays != 0 || got.ActivitiesByType == nil {
		t.Fatalf("unexpected empty summary: %+v", got)
	}
}

func TestLeaderboardEntryName(t *testing.T) {
	if (LeaderboardEntry{MemberID: "1"}).Name() != "1" {
		t.Fatal("expected id fallback")
	}
	if (LeaderboardEntry{MemberID: "1", Username: "u"}).Name() != "u" {
		t.Fatal("expected username fallback")
	}
	if (LeaderboardEntry{MemberID: "1", Username: "u", DisplayName: "D"}).Name() != "D" {
		t.Fatal("expected display name")
	}
}
