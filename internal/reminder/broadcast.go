package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/belmonts/belix/internal/config"
	"github.com/belmonts/belix/internal/discord"
	"github.com/belmonts/belix/internal/scheduler"
)

// Broadcaster posts the configured daily reminder embeds.
type Broadcaster struct {
	cfg     *config.Config
	discord discord.Client
	now     func() time.Time
}

func NewBroadcaster(cfg *config.Config, dc discord.Client) *Broadcaster {
	return &Broadcaster{cfg: cfg, discord: dc, now: time.Now}
}

func (b *Broadcaster) Jobs() []scheduler.Job {
	jobs := make([]scheduler.Job, 0, len(b.cfg.ScheduledReminders))
	for _, r := range b.cfg.ScheduledReminders {
		jobs = append(jobs, scheduler.Job{
			Name: "reminder: " + r.Name,
			At:   r.Time,
			Run: func(ctx context.Context) error {
				return b.Send(ctx, r)
			},
		})
	}
	return jobs
}

func (b *Broadcaster) Send(_ context.Context, r config.ScheduledReminder) error {
	channels, err := b.discord.ListGuildChannels(b.cfg.DiscordGuildID)
	if err != nil {
		return fmt.Errorf("list channels: %w", err)
	}
	ch := discord.FindChannel(channels, r.ChannelID, discord.ChannelTypeText, r.ChannelNames...)
	if ch == nil {
		slog.Warn("no suitable channel for scheduled reminder", "reminder", r.Name)
		return nil
	}
	embed := discord.Embed{
		Title:       r.Title,
		Description: r.Description,
		Color:       r.Color,
		Timestamp:   b.now(),
	}
	if _, err := b.discord.SendMessage(ch.ID, discord.Message{Embeds: []discord.Embed{embed}}); err != nil {
		return fmt.Errorf("send scheduled reminder %q: %w", r.Name, err)
	}
	slog.Info("scheduled reminder sent", "reminder", r.Name, "channel", ch.Name)
	return nil
}
