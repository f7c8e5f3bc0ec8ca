package gathering

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/belmonts/belix/internal/config"
	"github.com/belmonts/belix/internal/discord"
	"github.com/belmonts/belix/internal/repository"
	"github.com/belmonts/belix/internal/scheduler"
)

const statusColor = 0x7f56d9

var (
	tinkeringChannelNames  = []string{"tinkering"}
	commonHallChannelNames = []string{"common hall", "common-hall", "commonhall"}
)

// Confirmations handles the daily gathering go/no-go prompt.
type Confirmations struct {
	cfg     *config.Config
	repo    repository.GatheringRepository
	discord discord.Client
	now     func() time.Time
}

func NewConfirmations(cfg *config.Config, repo repository.GatheringRepository, dc discord.Client) *Confirmations {
	return &Confirmations{cfg: cfg, repo: repo, discord: dc, now: time.Now}
}

func (c *Confirmations) Jobs() []scheduler.Job {
	return []scheduler.Job{{Name: "gathering prompt", At: c.cfg.GatheringPromptTime, Run: c.SendPrompt}}
}

func (c *Confirmations) today() time.Time {
	n := c.now().In(c.cfg.Location())
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

func (c *Confirmations) timeLabel() string {
	t := c.cfg.GatheringPromptTime
	return formatTimeLabel(time.Date(2000, time.January, 1, t.Hour, t.Minute, 0, 0, time.UTC))
}

func (c *Confirmations) SendPrompt(_ context.Context) error {
	channels, err := c.discord.ListGuildChannels(c.cfg.DiscordGuildID)
	if err != nil {
		return fmt.Errorf("list channels: %w", err)
	}
	ch := discord.FindChannel(channels, c.cfg.ChannelTinkeringID, discord.ChannelTypeText, tinkeringChannelNames...)
	if ch == nil {
		slog.Warn("tinkering channel not found")
		return nil
	}
	embed := gatheringPromptEmbed(c.timeLabel(), "Only gathering managers can confirm")
	embed.Timestamp = c.now()
	if _, err := c.discord.SendMessage(ch.ID, discord.Message{
		Embeds:     []discord.Embed{embed},
		Components: gatheringButtons(),
	}); err != nil {
		return fmt.Errorf("send gathering prompt: %w", err)
	}
	slog.Info("gathering prompt sent", "channel", ch.Name)
	return nil
}

func (c *Confirmations) HandlesButton(customID string) bool {
	return customID == ButtonConfirm || customID == ButtonCancel
}

func (c *Confirmations) HandleButton(ctx context.Context, event discord.InteractionEvent) {
	if !discord.NameMatches(event.Member, c.cfg.GatheringManagers) {
		respond(event, messageGatherNotManager)
		return
	}
	day := c.today()
	switch event.CustomID {
	case ButtonConfirm:
		if err := c.repo.ConfirmGathering(ctx, day, event.Member.UserID, event.Member.Username); err != nil {
			slog.Error("failed to confirm gathering", "error", err)
			respond(event, messageGatherFailed)
			return
		}
		c.announce(event.Member.Username)
		slog.Info("gathering confirmed", "by", event.Member.Username)
		respond(event, messageGatherConfirmed)
	case ButtonCancel:
		if err := c.repo.CancelGathering(ctx, day); err != nil {
			slog.Error("failed to cancel gathering", "error", err)
			respond(event, messageGatherFailed)
			return
		}
		slog.Info("gathering cancelled", "by", event.Member.Username)
		respond(event, messageGatherCancelled)
	}
}

func (c *Confirmations) announce(confirmedBy string) {
	channels, err := c.discord.ListGuildChannels(c.cfg.DiscordGuildID)
	if err != nil {
		slog.Error("failed to list channels", "error", err)
		return
	}
	ch := discord.FindChannel(channels, c.cfg.ChannelCommonHallID, discord.ChannelTypeText, commonHallChannelNames...)
	if ch == nil {
		slog.Warn("common hall channel not found")
		return
	}
	embed := confirmationEmbed(confirmedBy, c.timeLabel())
	embed.Timestamp = c.now()
	if _, err := c.discord.SendMessage(ch.ID, discord.Message{Embeds: []discord.Embed{embed}}); err != nil {
		slog.Error("failed to post gathering confirmation", "error", err)
	}
}

// Status describes today's gathering decision.
func (c *Confirmations) Status(ctx context.Context) discord.Embed {
	embed := discord.Embed{
		Title:     "📡 Today's Gathering",
		Color:     statusColor,
		Timestamp: c.now(),
	}
	status, err := c.repo.GetGatheringStatus(ctx, c.today())
	switch {
	case err != nil:
		slog.Error("failed to get gathering status", "error", err)
		embed.Description = "⚠️ Could not load today's gathering status."
	case status == nil:
		embed.Description = "⏳ Today's gathering has not been confirmed yet."
	case status.Status == repository.GatheringConfirmed:
		embed.Description = fmt.Sprintf("✨ Gathering is ON! Confirmed by %s.", status.ConfirmedBy)
		embed.Fields = []discord.EmbedField{
			{Name: "Location", Value: "📡 tinkering channel", Inline: true},
			{Name: "Time", Value: c.timeLabel(), Inline: true},
		}
	default:
		embed.Description = "❌ Gathering cancelled for today."
	}
	return embed
}
