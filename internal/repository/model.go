package repository

import "time"

type Member struct {
	MemberID        string
	Username        string
	DisplayName     string
	DiscordUsername string
	Role            string
	Birthday        *time.Time
	JoinedAt        *time.Time
	BelmontsPoints  int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Points struct {
	MemberID   string
	Points     int
	LastUpdate time.Time
}

type LeaderboardEntry struct {
	MemberID    string
	Username    string
	DisplayName string
	Role        string
	Points      int
}

// Name returns the display name, falling back to the username and id.
func (e LeaderboardEntry) Name() string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	if e.Username != "" {
		return e.Username
	}
	return e.MemberID
}

type Meeting struct {
	ID              int64
	SessionID       string
	Title           string
	MeetingDate     time.Time
	MeetingTime     string
	ScheduledTime   string
	TotalMembers    int
	EndTime         *time.Time
	DurationMinutes int
	AttendedMembers int
	CreatedAt       time.Time
}

type Attendance struct {
	MeetingID            int64
	MemberID             string
	Username             string
	DisplayName          string
	TotalDurationMinutes int
	AttendancePercentage float64
	PointsAwarded        int
}

type GatheringStatus string

const (
	GatheringConfirmed GatheringStatus = "confirmed"
	GatheringCancelled GatheringStatus = "cancelled"
)

type GatheringConfirmation struct {
	GatheringDate time.Time
	Status        GatheringStatus
	ConfirmedByID string
	ConfirmedBy   string
	UpdatedAt     time.Time
}

type Activity struct {
	ID                   int64
	MemberID             string
	DiscordUsername      string
	DisplayName          string
	ActivityType         string
	ChannelID            string
	ChannelName          string
	MessageCount         int
	VoiceDurationMinutes int
	ReactionCount        int
	ActivityDate         time.Time
	ActivityTimestamp    time.Time
	Metadata             map[string]any
}

type ActivitySummary struct {
	TotalMessages     int
	TotalVoiceMinutes int
	TotalReactions    int
	ActivitiesByType  map[string]int
	ActiveDays        int
}
