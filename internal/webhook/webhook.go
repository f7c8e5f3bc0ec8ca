package webhook

import (
	"context"
	"time"
)

type AttendanceEntry struct {
	UserID          string  `json:"user_id"`
	Username        string  `json:"username"`
	DisplayName     string  `json:"display_name"`
	AttendedMinutes int     `json:"attended_minutes"`
	Percentage      float64 `json:"attendance_percentage"`
	PointsAwarded   int     `json:"points_awarded"`
}

// MeetingReport is posted once per closed gathering session.
type MeetingReport struct {
	SessionID       string            `json:"session_id"`
	MeetingID       int64             `json:"meeting_id,omitempty"`
	Title           string            `json:"title"`
	ScheduledTime   string            `json:"scheduled_time"`
	StartedAt       time.Time         `json:"started_at"`
	EndedAt         time.Time         `json:"ended_at"`
	DurationMinutes int               `json:"duration_minutes"`
	PlannedMinutes  int               `json:"planned_minutes"`
	EndReason       string            `json:"end_reason"`
	Threshold       float64           `json:"threshold_percent"`
	TotalMembers    int               `json:"total_members"`
	AttendedMembers int               `json:"attended_members"`
	Attendance      []AttendanceEntry `json:"attendance"`
}

type Sender interface {
	SendMeetingReport(ctx context.Context, report MeetingReport) error
}
