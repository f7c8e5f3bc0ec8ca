package questions

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/belmonts/belix/internal/config"
	"github.com/belmonts/belix/internal/discord"
	"github.com/belmonts/belix/internal/scheduler"
)

const (
	PageSize  = 5
	MaxNumber = 129

	listColor   = 0xf39c12
	detailColor = 0x27ae60
	dailyColor  = 0xFF6B9D

	prefixList       = "questions_"
	prefixDifficulty = "qd_"

	MessageNoneToday = "❌ No question available for today."
)

type Store interface {
	Load() (Document, error)
}

type Service struct {
	cfg     *config.Config
	store   Store
	discord discord.Client
	now     func() time.Time
}

func NewService(cfg *config.Config, store Store, dc discord.Client) *Service {
	return &Service{cfg: cfg, store: store, discord: dc, now: time.Now}
}

func (s *Service) Jobs() []scheduler.Job {
	return []scheduler.Job{{Name: "daily question", At: s.cfg.QuestionPostTime, Run: s.PostDaily}}
}

// Today returns today's question message.
func (s *Service) Today() (discord.Message, error) {
	doc, err := s.store.Load()
	if err != nil {
		return discord.Message{}, err
	}
	q := doc.Today(s.now(), s.cfg.Location())
	if q == nil {
		return discord.Message{Content: MessageNoneToday}, nil
	}
	return discord.Message{Embeds: []discord.Embed{DetailEmbed(*q, s.now())}}, nil
}

// Rookie returns today's rookie question message.
func (s *Service) Rookie() (discord.Message, error) {
	doc, err := s.store.Load()
	if err != nil {
		return discord.Message{}, err
	}
	n := doc.RookieNumber(s.now(), s.cfg.Location())
	q := doc.ByDay(n)
	if q == nil {
		return discord.Message{Content: fmt.Sprintf("❌ Today's rookie question #%d not found.", n)}, nil
	}
	return discord.Message{Embeds: []discord.Embed{DetailEmbed(*q, s.now())}}, nil
}

func (s *Service) ByNumber(n int) (discord.Message, error) {
	doc, err := s.store.Load()
	if err != nil {
		return discord.Message{}, err
	}
	q := doc.ByDay(n)
	if q == nil {
		return discord.Message{Content: fmt.Sprintf("❌ Question #%d not found. Available questions: 1-%d", n, MaxNumber)}, nil
	}
	return discord.Message{Embeds: []discord.Embed{DetailEmbed(*q, s.now())}}, nil
}

// ListPage renders one page of every question. Pages start at 1 and are
// clamped to the available range.
func (s *Service) ListPage(page int) (discord.Message, error) {
	doc, err := s.store.Load()
	if err != nil {
		return discord.Message{}, err
	}
	page, total := clampPage(page, len(doc.Questions))
	start := (page - 1) * PageSize
	embed := listEmbed("📝 Daily Programming Questions", "Select a question to view details", doc.Questions, start)
	return discord.Message{
		Embeds:     []discord.Embed{embed},
		Components: []discord.ActionRow{navigation(func(dir string, p int) string { return fmt.Sprintf("questions_%s_%d", dir, p) }, "questions_page", page, total)},
	}, nil
}

func (s *Service) DifficultyPage(difficulty string, page int) (discord.Message, error) {
	doc, err := s.store.Load()
	if err != nil {
		return discord.Message{}, err
	}
	filtered := doc.ByDifficulty(difficulty)
	if len(filtered) == 0 {
		return discord.Message{Content: fmt.Sprintf("❌ No %s difficulty questions found.", difficulty)}, nil
	}
	page, total := clampPage(page, len(filtered))
	start := (page - 1) * PageSize
	embed := listEmbed(
		fmt.Sprintf("📝 %s Difficulty Questions", difficulty),
		fmt.Sprintf("Showing %s level programming questions", difficulty),
		filtered, start)
	return discord.Message{
		Embeds:     []discord.Embed{embed},
		Components: []discord.ActionRow{navigation(func(dir string, p int) string { return fmt.Sprintf("qd_%s_%s_%d", dir, difficulty, p) }, "qd_page", page, total)},
	}, nil
}

// HandlesButton reports whether customID belongs to question pagination.
func HandlesButton(customID string) bool {
	return strings.HasPrefix(customID, prefixList) || strings.HasPrefix(customID, prefixDifficulty)
}

// HandleButton renders the page a pagination button points at. The page in
// the custom id is the target page.
func (s *Service) HandleButton(customID string) (discord.Message, error) {
	if rest, ok := strings.CutPrefix(customID, prefixDifficulty); ok {
		parts := strings.Split(rest, "_")
		if len(parts) != 3 {
			return discord.Message{}, fmt.Errorf("unexpected button id %q", customID)
		}
		page, err := strconv.Atoi(parts[2])
		if err != nil {
			return discord.Message{}, fmt.Errorf("unexpected button id %q: %w", customID, err)
		}
		return s.DifficultyPage(parts[1], page)
	}
	rest := strings.TrimPrefix(customID, prefixList)
	parts := strings.Split(rest, "_")
	if len(parts) != 2 {
		return discord.Message{}, fmt.Errorf("unexpected button id %q", customID)
	}
	page, err := strconv.Atoi(parts[1])
	if err != nil {
		return discord.Message{}, fmt.Errorf("unexpected button id %q: %w", customID, err)
	}
	return s.ListPage(page)
}

// PostDaily posts today's question to the vibe-code channel.
func (s *Service) PostDaily(_ context.Context) error {
	doc, err := s.store.Load()
	if err != nil {
		return err
	}
	q := doc.Today(s.now(), s.cfg.Location())
	if q == nil {
		slog.Warn("no daily question available")
		return nil
	}
	channels, err := s.discord.ListGuildChannels(s.cfg.DiscordGuildID)
	if err != nil {
		return fmt.Errorf("list channels: %w", err)
	}
	ch := findVibeCodeChannel(channels)
	if ch == nil {
		slog.Warn("no vibe-code channel found", "guild_id", s.cfg.DiscordGuildID)
		return nil
	}
	content := "Daily Coding Challenge! 🚀"
	if s.cfg.QuestionRoleID != "" {
		content = discord.RoleMention(s.cfg.QuestionRoleID) + " " + content
	}
	if _, err := s.discord.SendMessage(ch.ID, discord.Message{
		Content: content,
		Embeds:  []discord.Embed{DailyEmbed(*q, s.now())},
	}); err != nil {
		return fmt.Errorf("post daily question: %w", err)
	}
	slog.Info("posted daily question", "day", q.Day, "channel", ch.Name)
	return nil
}

func findVibeCodeChannel(channels []discord.Channel) *discord.Channel {
	for i := range channels {
		name := strings.ToLower(channels[i].Name)
		if channels[i].Type == discord.ChannelTypeText && strings.Contains(name, "vibe") && strings.Contains(name, "code") {
			return &channels[i]
		}
	}
	return nil
}

func clampPage(page, count int) (int, int) {
	total := (count + PageSize - 1) / PageSize
	if total < 1 {
		total = 1
	}
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}
	return page, total
}

func navigation(buttonID func(direction string, page int) string, pageID string, page, total int) discord.ActionRow {
	var row discord.ActionRow
	if page > 1 {
		row.Buttons = append(row.Buttons, discord.Button{
			CustomID: buttonID("back", page-1),
			Label:    "⬅️ Previous",
			Style:    discord.ButtonPrimary,
		})
	}
	row.Buttons = append(row.Buttons, discord.Button{
		CustomID: pageID,
		Label:    fmt.Sprintf("Page %d/%d", page, total),
		Style:    discord.ButtonSecondary,
		Disabled: true,
	})
	if page < total {
		row.Buttons = append(row.Buttons, discord.Button{
			CustomID: buttonID("next", page+1),
			Label:    "Next ➡️",
			Style:    discord.ButtonPrimary,
		})
	}
	return row
}
