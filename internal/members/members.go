package members

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/belmonts/belix/internal/config"
	"github.com/belmonts/belix/internal/discord"
	"github.com/belmonts/belix/internal/repository"
)

const (
	welcomeColor = 0xd5a147

	ChessChannelName  = "chamber-of-chess"
	chessChannelTopic = "♟️ A place for all chess enthusiasts to discuss strategies, games, and challenges!"

	ActivityJoin          = "join"
	ActivityProfileUpdate = "profile_update"
)

var welcomeChannelNames = []string{"introduction", "introductions", "welcome", "general"}

type SyncState struct {
	LastMonthlySync *time.Time `json:"lastMonthlySync"`
}

type SyncStateStore interface {
	Load() (SyncState, error)
	Save(state SyncState) error
}

type Service struct {
	cfg     *config.Config
	repo    repository.Repository
	discord discord.Client
	state   SyncStateStore
	now     func() time.Time
}

func NewService(cfg *config.Config, repo repository.Repository, dc discord.Client, state SyncStateStore) *Service {
	return &Service{cfg: cfg, repo: repo, discord: dc, state: state, now: time.Now}
}

func WelcomeEmbed(m discord.Member, memberNumber int, now time.Time) discord.Embed {
	return discord.Embed{
		Title: "🎉 Welcome to Belmonts!",
		Description: fmt.Sprintf("**Welcome %s!**\n\n"+
			"You're officially part of a community where developers, sysadmins, AI/ML explorers, "+
			"data scientists, and hardware tinkerers all come together. 🎉\n\n"+
			"You are member **#%d**", m.DisplayName(), memberNumber),
		Color:        welcomeColor,
		ThumbnailURL: m.AvatarURL,
		Footer:       "Belmonts Server",
		Timestamp:    now,
	}
}

// welcomeChannel prefers the configured channel, then an exact well-known
// name, then the guild system channel, then any text channel.
func welcomeChannel(channels []discord.Channel, configuredID, systemID string) *discord.Channel {
	var firstText *discord.Channel
	for i := range channels {
		if channels[i].Type != discord.ChannelTypeText {
			continue
		}
		if configuredID != "" && channels[i].ID == configuredID {
			return &channels[i]
		}
		if firstText == nil {
			firstText = &channels[i]
		}
	}
	for i := range channels {
		if channels[i].Type == discord.ChannelTypeText && slices.Contains(welcomeChannelNames, strings.ToLower(channels[i].Name)) {
			return &channels[i]
		}
	}
	if systemID != "" {
		for i := range channels {
			if channels[i].ID == systemID {
				return &channels[i]
			}
		}
	}
	return firstText
}

func (s *Service) HandleMemberAdd(event discord.MemberEvent) {
	if event.Member.IsBot {
		return
	}
	ctx := context.Background()
	slog.Info("new member joined", "user", event.Member.Username)
	if err := s.Welcome(event.Member); err != nil {
		slog.Error("failed to send welcome message", "error", err, "user", event.Member.Username)
	}
	s.track(ctx, event.Member, ActivityJoin, "server-join", func(isNew bool) map[string]any {
		guildName := ""
		if g, err := s.discord.GetGuild(s.cfg.DiscordGuildID); err == nil && g != nil {
			guildName = g.Name
		}
		return map[string]any{
			"joinedAt":    s.now().UTC().Format(time.RFC3339Nano),
			"guild":       guildName,
			"isNewMember": isNew,
		}
	})
}

// Welcome greets m in the introduction channel.
func (s *Service) Welcome(m discord.Member) error {
	guild, err := s.discord.GetGuild(s.cfg.DiscordGuildID)
	if err != nil {
		return fmt.Errorf("get guild: %w", err)
	}
	channels, err := s.discord.ListGuildChannels(s.cfg.DiscordGuildID)
	if err != nil {
		return fmt.Errorf("list channels: %w", err)
	}
	ch := welcomeChannel(channels, s.cfg.ChannelIntroductionID, guild.SystemChannelID)
	if ch == nil {
		slog.Warn("no welcome channel found")
		return nil
	}
	if _, err := s.discord.SendMessage(ch.ID, discord.Message{
		Content: m.Mention(),
		Embeds:  []discord.Embed{WelcomeEmbed(m, guild.MemberCount, s.now())},
	}); err != nil {
		return fmt.Errorf("send welcome: %w", err)
	}
	slog.Info("welcome message sent", "user", m.Username, "channel", ch.Name, "member_number", guild.MemberCount)
	return nil
}

func (s *Service) HandleMemberUpdate(event discord.MemberUpdateEvent) {
	m := event.After
	if m.IsBot {
		return
	}
	ctx := context.Background()
	if roleChanged(event.Before, m) {
		s.updateRole(ctx, m, false)
	}
	s.trackProfile(ctx, m)
}

func roleChanged(before *discord.Member, after discord.Member) bool {
	if before == nil {
		return true
	}
	b, bok := before.HighestRole()
	a, aok := after.HighestRole()
	return bok != aok || b.ID != a.ID
}

// HandleReady runs the start-up member maintenance.
func (s *Service) HandleReady(_ discord.ReadyEvent) {
	ctx := context.Background()
	if _, err := s.EnsureChessChannel(); err != nil {
		slog.Error("failed to ensure chess channel", "error", err)
	}
	if _, err := s.MonthlySync(ctx); err != nil {
		slog.Error("monthly member sync failed", "error", err)
	}
}

// EnsureChessChannel creates the chess text channel when it is missing.
func (s *Service) EnsureChessChannel() (*discord.Channel, error) {
	channels, err := s.discord.ListGuildChannels(s.cfg.DiscordGuildID)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	for i := range channels {
		if channels[i].Name == ChessChannelName && channels[i].Type == discord.ChannelTypeText {
			slog.Debug("chess channel already exists", "channel_id", channels[i].ID)
			return &channels[i], nil
		}
	}
	ch, err := s.discord.CreateTextChannel(s.cfg.DiscordGuildID, ChessChannelName, chessChannelTopic)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", ChessChannelName, err)
	}
	slog.Info("created chess channel", "channel_id", ch.ID)
	return ch, nil
}

// MonthlySync refreshes roles and profile activity for every member, once
// per UTC calendar month. It reports whether a sync ran.
func (s *Service) MonthlySync(ctx context.Context) (bool, error) {
	state, err := s.state.Load()
	if err != nil {
		slog.Warn("failed to load member sync state", "error", err)
		state = SyncState{}
	}
	now := s.now().UTC()
	if last := state.LastMonthlySync; last != nil {
		l := last.UTC()
		if l.Year() == now.Year() && l.Month() == now.Month() {
			slog.Info("monthly member sync already completed")
			return false, nil
		}
	}

	members, err := s.discord.ListGuildMembers(s.cfg.DiscordGuildID)
	if err != nil {
		return false, fmt.Errorf("list guild members: %w", err)
	}
	synced := 0
	for _, m := range members {
		if m.IsBot {
			continue
		}
		s.updateRole(ctx, m, true)
		s.trackProfile(ctx, m)
		synced++
	}
	slog.Info("monthly member sync finished", "members", synced)

	state.LastMonthlySync = &now
	if err := s.state.Save(state); err != nil {
		return true, fmt.Errorf("save member sync state: %w", err)
	}
	return true, nil
}

func (s *Service) updateRole(ctx context.Context, m discord.Member, quiet bool) {
	existing, err := s.repo.GetMemberByDiscordUsername(ctx, m.Username)
	if err != nil {
		slog.Error("failed to look up member", "error", err, "user", m.Username)
		return
	}
	if existing == nil {
		if !quiet {
			slog.Info("member not in database, skipping role update", "user", m.Username)
		}
		return
	}
	role := m.RoleName()
	if err := s.repo.UpdateMemberRole(ctx, existing.MemberID, role); err != nil {
		slog.Error("failed to update member role", "error", err, "user", m.Username)
		return
	}
	if !quiet {
		slog.Info("updated member role", "user", m.Username, "role", role)
	}
}

func (s *Service) trackProfile(ctx context.Context, m discord.Member) {
	s.track(ctx, m, ActivityProfileUpdate, "profile-sync", func(isNew bool) map[string]any {
		roles := make([]string, 0, len(m.Roles))
		for _, r := range m.Roles {
			roles = append(roles, r.Name)
		}
		var joinedAt any
		if !m.JoinedAt.IsZero() {
			joinedAt = m.JoinedAt.UTC().Format(time.RFC3339Nano)
		}
		return map[string]any{
			"displayName": m.DisplayName(),
			"roles":       roles,
			"joinedAt":    joinedAt,
			"isNewMember": isNew,
		}
	})
}

// track records an activity row whether or not the member is known.
func (s *Service) track(ctx context.Context, m discord.Member, kind, channelName string, metadata func(isNew bool) map[string]any) {
	existing, err := s.repo.GetMemberByDiscordUsername(ctx, m.Username)
	if err != nil {
		slog.Error("failed to look up member", "error", err, "user", m.Username)
	}
	memberID := ""
	if existing != nil {
		memberID = existing.MemberID
	}
	if err := s.repo.TrackActivity(ctx, repository.TrackActivityInput{
		MemberID:        memberID,
		DiscordUsername: m.Username,
		DisplayName:     m.DisplayName(),
		ActivityType:    kind,
		ChannelName:     channelName,
		Metadata:        metadata(existing == nil),
		At:              s.now(),
	}); err != nil {
		slog.Error("failed to track member activity", "error", err, "user", m.Username, "type", kind)
	}
}
