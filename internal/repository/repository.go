package repository

import (
	"context"
	"time"
)

type SyncMemberInput struct {
	MemberID    string
	Username    string
	DisplayName string
	Role        string
	JoinedAt    *time.Time
}

type InsertMemberInput struct {
	MemberID        string
	Username        string
	DisplayName     string
	DiscordUsername string
	Role            string
	Birthday        *time.Time
	JoinedAt        *time.Time
	BelmontsPoints  int
}

type CreateMeetingInput struct {
	SessionID     string
	Title         string
	MeetingDate   time.Time
	MeetingTime   string
	ScheduledTime string
	TotalMembers  int
}

type UpdateMeetingEndInput struct {
	MeetingID       int64
	EndTime         time.Time
	DurationMinutes int
	AttendedMembers int
}

type TrackActivityInput struct {
	MemberID             string
	DiscordUsername      string
	DisplayName          string
	ActivityType         string
	ChannelID            string
	ChannelName          string
	MessageCount         int
	VoiceDurationMinutes int
	ReactionCount        int
	Metadata             map[string]any
	At                   time.Time
}

type MemberRepository interface {
	SyncMember(ctx context.Context, input SyncMemberInput) error
	InsertMember(ctx context.Context, input InsertMemberInput) error
	GetMember(ctx context.Context, memberID string) (*Member, error)
	GetMemberByUsername(ctx context.Context, username string) (*Member, error)
	GetMemberByDiscordUsername(ctx context.Context, discordUsername string) (*Member, error)
	UpdateMemberRole(ctx context.Context, memberID, role string) error
	UpdateMemberBirthday(ctx context.Context, memberID string, birthday *time.Time) error
	ListMembers(ctx context.Context) ([]Member, error)
	ListMembersWithBirthday(ctx context.Context) ([]Member, error)
	// AddBelmontsPointsByDiscordUsername returns nil when no member matches.
	AddBelmontsPointsByDiscordUsername(ctx context.Context, discordUsername string, points int) (*int, error)
}

type PointsRepository interface {
	InitializePoints(ctx context.Context, memberID string) error
	AddPoints(ctx context.Context, memberID string, points int) (int, error)
	GetPoints(ctx context.Context, memberID string) (*Points, error)
	SetPoints(ctx context.Context, memberID string, points int) error
	GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

type AwardRepository interface {
	// GrantDailyAward records the award key and adds points in one step. It
	// returns granted=false without touching points when the key exists, and
	// leaves no key behind when adding the points fails.
	GrantDailyAward(ctx context.Context, memberID, reason string, day time.Time, points int) (total int, granted bool, err error)
}

type MeetingRepository interface {
	CreateMeeting(ctx context.Context, input CreateMeetingInput) (*Meeting, error)
	UpdateMeetingEnd(ctx context.Context, input UpdateMeetingEndInput) error
	RecordAttendance(ctx context.Context, meetingID int64, records []Attendance) error
}

type GatheringRepository interface {
	ConfirmGathering(ctx context.Context, day time.Time, confirmedByID, confirmedBy string) error
	CancelGathering(ctx context.Context, day time.Time) error
	GetGatheringStatus(ctx context.Context, day time.Time) (*GatheringConfirmation, error)
}

type ActivityRepository interface {
	TrackActivity(ctx context.Context, input TrackActivityInput) error
	ListActivity(ctx context.Context, memberID string, from, to *time.Time) ([]Activity, error)
	SummarizeActivity(ctx context.Context, memberID string, since time.Time) (*ActivitySummary, error)
}

type Repository interface {
	MemberRepository
	PointsRepository
	AwardRepository
	MeetingRepository
	GatheringRepository
	ActivityRepository
}
