package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	internalconfig "github.com/belmonts/belix/internal/config"
)

type scheduleFile struct {
	Reminders []scheduleEntry `toml:"reminder"`
}

type scheduleEntry struct {
	Name         string   `toml:"name"`
	Time         string   `toml:"time"`
	Title        string   `toml:"title"`
	Description  string   `toml:"description"`
	Color        string   `toml:"color"`
	ChannelID    string   `toml:"channel_id"`
	ChannelNames []string `toml:"channel_names"`
}

var defaultSchedule = []scheduleEntry{
	{
		Name:         "Daily Gathering",
		Time:         "18:30",
		Title:        "🎯 **Daily Gathering Time!** 🎯",
		Description:  "It's time for our daily gathering! Let's connect, share, and grow together. See you in the voice channel! 🎤",
		Color:        "#FFD700",
		ChannelNames: []string{"announcements", "general", "common-hall", "common hall"},
	},
	{
		Name:         "Progress Update (1st)",
		Time:         "21:30",
		Title:        "📊 **Progress Update Time - Round 1** 📊",
		Description:  "Time to share your progress! What have you accomplished today? Share your wins in Byte Bash Blitz! 💪",
		Color:        "#00D9FF",
		ChannelNames: []string{"byte-bash-blitz", "progress", "updates", "announcements"},
	},
	{
		Name:         "Progress Update (2nd)",
		Time:         "22:00",
		Title:        "📈 **Progress Update Time - Round 2** 📈",
		Description:  "Second round of progress updates! Keep sharing your achievements and updates. Let's celebrate every milestone! 🎉",
		Color:        "#00FF88",
		ChannelNames: []string{"byte-bash-blitz", "progress", "updates", "announcements"},
	},
}

// LoadSchedule decodes the broadcast reminder file at path. An empty path
// yields the built-in reminders; entries without a channel id inherit
// fallbackChannelID.
func LoadSchedule(path, fallbackChannelID string) ([]internalconfig.ScheduledReminder, error) {
	entries := defaultSchedule
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read schedule file: %w", err)
		}
		var file scheduleFile
		if _, err := toml.Decode(string(data), &file); err != nil {
			return nil, fmt.Errorf("failed to parse schedule file %s: %w", path, err)
		}
		entries = file.Reminders
	}

	out := make([]internalconfig.ScheduledReminder, 0, len(entries))
	for _, e := range entries {
		clock, err := internalconfig.ParseClockTime(e.Time)
		if err != nil {
			return nil, fmt.Errorf("reminder %q: %w", e.Name, err)
		}
		color, err := parseColor(e.Color)
		if err != nil {
			return nil, fmt.Errorf("reminder %q: %w", e.Name, err)
		}
		channelID := e.ChannelID
		if channelID == "" {
			channelID = fallbackChannelID
		}
		out = append(out, internalconfig.ScheduledReminder{
			Name:         e.Name,
			Time:         clock,
			Title:        e.Title,
			Description:  e.Description,
			Color:        color,
			ChannelID:    channelID,
			ChannelNames: e.ChannelNames,
		})
	}
	return out, nil
}

func parseColor(s string) (int, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	return int(v), nil
}
