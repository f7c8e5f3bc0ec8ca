package points

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/belmonts/belix/internal/config"
	"github.com/belmonts/belix/internal/discord"
	"github.com/belmonts/belix/internal/repository"
	"github.com/belmonts/belix/internal/telemetry"
)

const (
	ReasonProgress = "progress"
	ReasonReaction = "reaction"

	reactionKeyTTL = 7 * 24 * time.Hour
	handlerTimeout = 10 * time.Second

	messageProgressFormat = "✅ **Daily Progress Recorded!**\nYou earned **+%d points**!\nTotal Points: **%d**"
	messageAlreadyPosted  = "⚠️ You've already posted your daily progress today! Check back tomorrow."

	leaderboardButtonPrefix = "leaderboard_"
)

var progressChannelNames = []string{"blitz-daily-progress", "daily-progress", "progress", "daily"}

type Service struct {
	cfg     *config.Config
	repo    repository.Repository
	discord discord.Client
	now     func() time.Time

	reactions *ttlcache.Cache[string, struct{}]
}

func NewService(cfg *config.Config, repo repository.Repository, dc discord.Client) *Service {
	return &Service{
		cfg:     cfg,
		repo:    repo,
		discord: dc,
		now:     time.Now,
		reactions: ttlcache.New[string, struct{}](
			ttlcache.WithTTL[string, struct{}](reactionKeyTTL),
			ttlcache.WithDisableTouchOnHit[string, struct{}](),
		),
	}
}

// Today returns the current calendar day in the configured zone.
func (s *Service) Today() time.Time {
	now := s.now().In(s.cfg.Location())
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func IsProgressChannel(name string) bool {
	lower := strings.ToLower(name)
	for _, n := range progressChannelNames {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

func (s *Service) HandleMessage(event discord.MessageEvent) {
	if event.Author.IsBot {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	switch strings.ToLower(strings.TrimSpace(event.Content)) {
	case "!points", "!leaderboard":
		s.replyTopTen(ctx, event)
		return
	case "!mypoints":
		s.replyMyPoints(ctx, event)
		return
	}
	if IsProgressChannel(event.ChannelName) {
		s.recordProgress(ctx, event)
	}
}

func reply(event discord.MessageEvent, msg discord.Message) {
	if event.Reply == nil {
		return
	}
	if err := event.Reply(msg); err != nil {
		slog.Error("could not send reply", "error", err, "channel_id", event.ChannelID)
	}
}

// ensureMember keeps the member row and the points row present so the
// leaderboard can show a name.
func (s *Service) ensureMember(ctx context.Context, m discord.Member) {
	var joinedAt *time.Time
	if !m.JoinedAt.IsZero() {
		joinedAt = &m.JoinedAt
	}
	if err := s.repo.SyncMember(ctx, repository.SyncMemberInput{
		MemberID:    m.UserID,
		Username:    m.Username,
		DisplayName: m.DisplayName(),
		Role:        m.RoleName(),
		JoinedAt:    joinedAt,
	}); err != nil {
		slog.Error("failed to sync member", "error", err, "user_id", m.UserID)
	}
	if err := s.repo.InitializePoints(ctx, m.UserID); err != nil {
		slog.Error("failed to initialize points", "error", err, "user_id", m.UserID)
	}
}

func (s *Service) recordProgress(ctx context.Context, event discord.MessageEvent) {
	author := event.Author
	s.ensureMember(ctx, author)

	total, granted, err := s.repo.GrantDailyAward(ctx, author.UserID, ReasonProgress, s.Today(), s.cfg.ProgressPoints)
	if err != nil {
		slog.Error("failed to grant progress points", "error", err, "user_id", author.UserID)
		return
	}
	if !granted {
		reply(event, discord.Message{Content: messageAlreadyPosted})
		return
	}
	telemetry.AddPoints(ReasonProgress, s.cfg.ProgressPoints)
	slog.Info("awarded progress points", "user", author.Username, "points", s.cfg.ProgressPoints, "total", total)
	reply(event, discord.Message{Content: fmt.Sprintf(messageProgressFormat, s.cfg.ProgressPoints, total)})
}

func reactionKey(event discord.ReactionEvent) string {
	return event.MessageID + "-" + event.UserID + "-" + event.Emoji
}

// HandleReaction awards a point once per message, user and emoji. Removing
// the reaction forgets the key so reacting again awards again.
func (s *Service) HandleReaction(event discord.ReactionEvent) {
	if event.UserIsBot {
		return
	}
	key := reactionKey(event)
	if !event.Added {
		s.reactions.Delete(key)
		return
	}
	if s.reactions.Has(key) {
		slog.Debug("reaction already tracked", "key", key)
		return
	}
	s.reactions.Set(key, struct{}{}, ttlcache.DefaultTTL)

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	total, err := s.repo.AddPoints(ctx, event.UserID, s.cfg.ReactionPoints)
	if err != nil {
		s.reactions.Delete(key)
		slog.Error("failed to add reaction points", "error", err, "user_id", event.UserID)
		return
	}
	telemetry.AddPoints(ReasonReaction, s.cfg.ReactionPoints)
	slog.Info("awarded reaction points", "user_id", event.UserID, "emoji", event.Emoji, "total", total)
}

func (s *Service) leaderboard(ctx context.Context) ([]repository.LeaderboardEntry, error) {
	entries, err := s.repo.GetLeaderboard(ctx, leaderboardFetch)
	if err != nil {
		return nil, fmt.Errorf("get leaderboard: %w", err)
	}
	SortLeaderboard(entries)
	return entries, nil
}

func (s *Service) LeaderboardPage(ctx context.Context, page int) (discord.Message, error) {
	entries, err := s.leaderboard(ctx)
	if err != nil {
		return discord.Message{}, err
	}
	return LeaderboardMessage(entries, page, s.now()), nil
}

func HandlesButton(customID string) bool {
	return strings.HasPrefix(customID, leaderboardButtonPrefix)
}

// HandleButton renders the page named by a leaderboard_<dir>_<page> button.
func (s *Service) HandleButton(ctx context.Context, customID string) (discord.Message, error) {
	parts := strings.Split(strings.TrimPrefix(customID, leaderboardButtonPrefix), "_")
	if len(parts) != 2 {
		return discord.Message{}, fmt.Errorf("unexpected button id %q", customID)
	}
	page, err := strconv.Atoi(parts[1])
	if err != nil {
		return discord.Message{}, fmt.Errorf("unexpected button id %q: %w", customID, err)
	}
	return s.LeaderboardPage(ctx, page)
}

// MyPoints looks the member up by user id, then by username.
func (s *Service) MyPoints(ctx context.Context, m discord.Member) (discord.Message, error) {
	member, err := s.repo.GetMember(ctx, m.UserID)
	if err != nil {
		return discord.Message{}, fmt.Errorf("get member: %w", err)
	}
	if member == nil {
		member, err = s.repo.GetMemberByUsername(ctx, m.Username)
		if err != nil {
			return discord.Message{}, fmt.Errorf("get member by username: %w", err)
		}
	}
	if member == nil {
		return discord.Message{Embeds: []discord.Embed{NotFoundEmbed(m.DisplayName(), s.now())}}, nil
	}
	p, err := s.repo.GetPoints(ctx, member.MemberID)
	if err != nil {
		return discord.Message{}, fmt.Errorf("get points: %w", err)
	}
	if p == nil {
		p = &repository.Points{MemberID: member.MemberID, LastUpdate: s.now()}
	}
	name := member.DisplayName
	if name == "" {
		name = m.DisplayName()
	}
	return discord.Message{Embeds: []discord.Embed{MyPointsEmbed(name, *p, s.cfg.Location(), s.now())}}, nil
}

func (s *Service) replyTopTen(ctx context.Context, event discord.MessageEvent) {
	entries, err := s.leaderboard(ctx)
	if err != nil {
		slog.Error("failed to load leaderboard", "error", err)
		return
	}
	if len(entries) == 0 {
		reply(event, discord.Message{Content: messageNoPoints})
		return
	}
	reply(event, discord.Message{Embeds: []discord.Embed{TopTenEmbed(entries, s.now())}})
}

func (s *Service) replyMyPoints(ctx context.Context, event discord.MessageEvent) {
	p, err := s.repo.GetPoints(ctx, event.Author.UserID)
	if err != nil {
		slog.Error("failed to load points", "error", err, "user_id", event.Author.UserID)
		return
	}
	if p == nil {
		reply(event, discord.Message{Content: messageNoPersonalScore})
		return
	}
	reply(event, discord.Message{Embeds: []discord.Embed{MyPointsEmbed(event.Author.Username, *p, s.cfg.Location(), s.now())}})
}
