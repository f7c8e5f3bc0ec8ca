package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type ClockTime struct {
	Hour   int
	Minute int
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseClockTime parses a 24-hour "HH:MM" string.
func ParseClockTime(s string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return ClockTime{}, fmt.Errorf("clock time %q must be HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return ClockTime{}, fmt.Errorf("clock time %q has invalid hour", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return ClockTime{}, fmt.Errorf("clock time %q has invalid minute", s)
	}
	return ClockTime{Hour: h, Minute: m}, nil
}

type Config struct {
	Env            string
	DiscordToken   string
	DiscordGuildID string
	DatabaseURL    string
	Timezone       string
	HTTPAddr       string
	DataDir        string
	ScheduleFile   string

	ChannelIntroductionID  string
	ChannelAnnouncementsID string
	ChannelCommonHallID    string
	ChannelTinkeringID     string
	MeetingVoiceChannelID  string
	MeetingTextChannelID   string

	MeetingPromptTime     ClockTime
	GatheringPromptTime   ClockTime
	BirthdayCheckTime     ClockTime
	TerminologyPostTime   ClockTime
	QuestionPostTime      ClockTime
	MeetingEndIdleMinutes int
	MeetingDurationMin    int
	AttendanceThreshold   float64
	AttendancePoints      int
	MeetingTrackedUsers   []string
	MeetingManagers       []string
	GatheringManagers     []string
	MeetingReportWebhook  string

	RookieRoleName string
	ProgressPoints int
	ReactionPoints int
	QuestionRoleID string

	ScheduledReminders []ScheduledReminder

	OTelEndpoint string
}

// ScheduledReminder is a broadcast embed posted every day at a fixed time.
type ScheduledReminder struct {
	Name         string
	Time         ClockTime
	Title        string
	Description  string
	Color        int
	ChannelID    string
	ChannelNames []string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}
	if c.MeetingEndIdleMinutes <= 0 {
		return fmt.Errorf("MEETING_END_IDLE_MINUTES must be positive, got %d", c.MeetingEndIdleMinutes)
	}
	if c.MeetingDurationMin < 0 {
		return fmt.Errorf("MEETING_DURATION_MINUTES must not be negative, got %d", c.MeetingDurationMin)
	}
	if c.AttendanceThreshold < 0 || c.AttendanceThreshold > 100 {
		return fmt.Errorf("MEETING_ATTENDANCE_THRESHOLD_PERCENT must be within 0-100, got %v", c.AttendanceThreshold)
	}
	if c.AttendancePoints < 0 || c.ProgressPoints < 0 || c.ReactionPoints < 0 {
		return fmt.Errorf("point awards must not be negative")
	}
	for _, r := range c.ScheduledReminders {
		if r.Name == "" || r.Title == "" {
			return fmt.Errorf("scheduled reminder requires name and title")
		}
		if r.ChannelID == "" && len(r.ChannelNames) == 0 {
			return fmt.Errorf("scheduled reminder %q needs a channel id or channel names", r.Name)
		}
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DISCORD_TOKEN", value: c.DiscordToken},
		{name: "DISCORD_GUILD_ID", value: c.DiscordGuildID},
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "TIMEZONE", value: c.Timezone},
		{name: "DATA_DIR", value: c.DataDir},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Location falls back to UTC when the timezone cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) MeetingIdle() time.Duration {
	return time.Duration(c.MeetingEndIdleMinutes) * time.Minute
}

func (c *Config) MeetingDuration() time.Duration {
	return time.Duration(c.MeetingDurationMin) * time.Minute
}
