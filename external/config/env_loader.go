package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	internalconfig "github.com/belmonts/belix/internal/config"
)

type envConfig struct {
	Env            string `env:"ENV" envDefault:"production"`
	DiscordToken   string `env:"DISCORD_TOKEN,required"`
	DiscordGuildID string `env:"DISCORD_GUILD_ID,required"`
	DatabaseURL    string `env:"DATABASE_URL,required"`
	Timezone       string `env:"TIMEZONE" envDefault:"Asia/Kolkata"`
	HTTPAddr       string `env:"HTTP_ADDR" envDefault:":3000"`
	DataDir        string `env:"DATA_DIR" envDefault:"./data"`
	ScheduleFile   string `env:"SCHEDULE_FILE"`

	ChannelIntroductionID  string `env:"CHANNEL_INTRODUCTION_ID"`
	ChannelAnnouncementsID string `env:"CHANNEL_ANNOUNCEMENTS_ID"`
	ChannelCommonHallID    string `env:"CHANNEL_COMMON_HALL_ID"`
	ChannelTinkeringID     string `env:"CHANNEL_TINKERING_ID"`
	MeetingVoiceChannelID  string `env:"MEETING_VOICE_CHANNEL_ID"`
	MeetingTextChannelID   string `env:"MEETING_TEXT_CHANNEL_ID"`

	MeetingPromptTime   string `env:"MEETING_PROMPT_TIME" envDefault:"18:30"`
	GatheringPromptTime string `env:"GATHERING_PROMPT_TIME" envDefault:"18:00"`
	BirthdayCheckTime   string `env:"BIRTHDAY_CHECK_TIME" envDefault:"06:00"`
	TerminologyPostTime string `env:"TERMINOLOGY_POST_TIME" envDefault:"20:00"`
	QuestionPostTime    string `env:"QUESTION_POST_TIME" envDefault:"08:00"`

	MeetingEndIdleMinutes int      `env:"MEETING_END_IDLE_MINUTES" envDefault:"5"`
	MeetingDurationMin    int      `env:"MEETING_DURATION_MINUTES" envDefault:"0"`
	AttendanceThreshold   float64  `env:"MEETING_ATTENDANCE_THRESHOLD_PERCENT" envDefault:"50"`
	AttendancePoints      int      `env:"MEETING_ATTENDANCE_POINTS" envDefault:"5"`
	MeetingTrackedUsers   []string `env:"MEETING_TRACKED_USERNAMES" envSeparator:"," envDefault:"aadzmsa,amruthaab,andreabetrina,geonithin,sriiiharshiii,jesh04,maxwellrubert,michalnithesh,primsajun,samuel93601,sowmi2207,ancy03115"`
	MeetingManagers       []string `env:"MEETING_MANAGERS" envSeparator:"," envDefault:"geonithin,sriiiharshiii"`
	GatheringManagers     []string `env:"GATHERING_MANAGERS" envSeparator:"," envDefault:"geonithin,sriiiharshiii,michalnithesh"`
	MeetingReportWebhook  string   `env:"MEETING_REPORT_WEBHOOK_URL"`

	RookieRoleName string `env:"ROOKIE_ROLE_NAME" envDefault:"rookies"`
	ProgressPoints int    `env:"PROGRESS_POINTS" envDefault:"5"`
	ReactionPoints int    `env:"REACTION_POINTS" envDefault:"1"`
	QuestionRoleID string `env:"QUESTION_ROLE_ID"`

	OTelEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads an optional .env file, then the process environment and the
// optional schedule file, and returns a validated Config.
func Load() (*internalconfig.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                    raw.Env,
		DiscordToken:           raw.DiscordToken,
		DiscordGuildID:         raw.DiscordGuildID,
		DatabaseURL:            raw.DatabaseURL,
		Timezone:               raw.Timezone,
		HTTPAddr:               raw.HTTPAddr,
		DataDir:                raw.DataDir,
		ScheduleFile:           raw.ScheduleFile,
		ChannelIntroductionID:  raw.ChannelIntroductionID,
		ChannelAnnouncementsID: raw.ChannelAnnouncementsID,
		ChannelCommonHallID:    raw.ChannelCommonHallID,
		ChannelTinkeringID:     raw.ChannelTinkeringID,
		MeetingVoiceChannelID:  raw.MeetingVoiceChannelID,
		MeetingTextChannelID:   raw.MeetingTextChannelID,
		MeetingEndIdleMinutes:  raw.MeetingEndIdleMinutes,
		MeetingDurationMin:     raw.MeetingDurationMin,
		AttendanceThreshold:    raw.AttendanceThreshold,
		AttendancePoints:       raw.AttendancePoints,
		MeetingTrackedUsers:    normalizeNames(raw.MeetingTrackedUsers),
		MeetingManagers:        normalizeNames(raw.MeetingManagers),
		GatheringManagers:      normalizeNames(raw.GatheringManagers),
		MeetingReportWebhook:   raw.MeetingReportWebhook,
		RookieRoleName:         strings.ToLower(strings.TrimSpace(raw.RookieRoleName)),
		ProgressPoints:         raw.ProgressPoints,
		ReactionPoints:         raw.ReactionPoints,
		QuestionRoleID:         raw.QuestionRoleID,
		OTelEndpoint:           raw.OTelEndpoint,
	}

	clocks := []struct {
		name  string
		value string
		dst   *internalconfig.ClockTime
	}{
		{name: "MEETING_PROMPT_TIME", value: raw.MeetingPromptTime, dst: &cfg.MeetingPromptTime},
		{name: "GATHERING_PROMPT_TIME", value: raw.GatheringPromptTime, dst: &cfg.GatheringPromptTime},
		{name: "BIRTHDAY_CHECK_TIME", value: raw.BirthdayCheckTime, dst: &cfg.BirthdayCheckTime},
		{name: "TERMINOLOGY_POST_TIME", value: raw.TerminologyPostTime, dst: &cfg.TerminologyPostTime},
		{name: "QUESTION_POST_TIME", value: raw.QuestionPostTime, dst: &cfg.QuestionPostTime},
	}
	for _, c := range clocks {
		parsed, err := internalconfig.ParseClockTime(c.value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.name, err)
		}
		*c.dst = parsed
	}

	reminders, err := LoadSchedule(raw.ScheduleFile, cfg.ChannelAnnouncementsID)
	if err != nil {
		return nil, err
	}
	cfg.ScheduledReminders = reminders

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func normalizeNames(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
