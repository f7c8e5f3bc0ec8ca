package terminology

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/belmonts/belix/internal/config"
	"github.com/belmonts/belix/internal/discord"
	"github.com/belmonts/belix/internal/scheduler"
)

const (
	embedColor = 0x4a90e2

	footerDaily    = "Learn something new every day! 🚀"
	footerToday    = "Posted daily at 8:00 PM"
	footerNext     = "Preview only"
	footerPrevious = "Previous terminology"

	MessageNoTerminologies = "No terminologies available."
)

var commonHallNames = []string{"common-hall", "commonhall", "common", "hall", "general"}

var ErrEmpty = errors.New("no terminologies available")

type Term struct {
	Term       string `json:"term" validate:"required"`
	Definition string `json:"definition" validate:"required"`
	Category   string `json:"category"`
}

type Document struct {
	Terminologies  []Term `json:"terminologies"`
	CurrentIndex   int    `json:"currentIndex"`
	LastPostedDate string `json:"lastPostedDate"`
}

func (d *Document) Prune(keep func(entry any) bool) int {
	kept := d.Terminologies[:0]
	for i := range d.Terminologies {
		if keep(&d.Terminologies[i]) {
			kept = append(kept, d.Terminologies[i])
		}
	}
	dropped := len(d.Terminologies) - len(kept)
	d.Terminologies = kept
	return dropped
}

// index normalizes CurrentIndex against the current list length.
func (d *Document) index(offset int) int {
	n := len(d.Terminologies)
	return ((d.CurrentIndex+offset)%n + n) % n
}

type Store interface {
	Load() (Document, error)
	Update(fn func(doc *Document) error) error
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
	return []scheduler.Job{{Name: "terminology post", At: s.cfg.TerminologyPostTime, Run: s.PostDaily}}
}

// Today returns the embed for the current term.
func (s *Service) Today() (discord.Embed, error) {
	return s.preview(0, "📚 Today's Tech Term: ", footerToday)
}

// Next previews the term after today's without advancing.
func (s *Service) Next() (discord.Embed, error) {
	return s.preview(1, "📚 Next Tech Term: ", footerNext)
}

// Previous previews the term before today's without advancing.
func (s *Service) Previous() (discord.Embed, error) {
	return s.preview(-1, "📚 Previous Tech Term: ", footerPrevious)
}

func (s *Service) preview(offset int, titlePrefix, footer string) (discord.Embed, error) {
	doc, err := s.store.Load()
	if err != nil {
		return discord.Embed{}, err
	}
	if len(doc.Terminologies) == 0 {
		return discord.Embed{}, ErrEmpty
	}
	return termEmbed(doc, doc.index(offset), titlePrefix, footer, s.now()), nil
}

// PostDaily posts the current term to the common hall and advances the index.
func (s *Service) PostDaily(_ context.Context) error {
	err := s.store.Update(func(doc *Document) error {
		if len(doc.Terminologies) == 0 {
			slog.Info("no terminologies available to post")
			return ErrEmpty
		}
		idx := doc.index(0)
		channels, err := s.discord.ListGuildChannels(s.cfg.DiscordGuildID)
		if err != nil {
			return fmt.Errorf("list channels: %w", err)
		}
		ch := discord.FindChannel(channels, s.cfg.ChannelCommonHallID, discord.ChannelTypeText, commonHallNames...)
		if ch == nil {
			slog.Warn("no common hall channel found", "guild_id", s.cfg.DiscordGuildID)
		} else {
			embed := termEmbed(*doc, idx, "📚 Daily Tech Term: ", footerDaily, s.now())
			if _, err := s.discord.SendMessage(ch.ID, discord.Message{Embeds: []discord.Embed{embed}}); err != nil {
				slog.Error("failed to post terminology", "error", err, "channel_id", ch.ID)
			} else {
				slog.Info("posted daily terminology", "channel", ch.Name, "term", doc.Terminologies[idx].Term)
			}
		}
		doc.CurrentIndex = (idx + 1) % len(doc.Terminologies)
		doc.LastPostedDate = s.now().UTC().Format(time.RFC3339)
		slog.Info("next terminology index", "index", doc.CurrentIndex)
		return nil
	})
	if errors.Is(err, ErrEmpty) {
		return nil
	}
	return err
}

func termEmbed(doc Document, idx int, titlePrefix, footer string, now time.Time) discord.Embed {
	t := doc.Terminologies[idx]
	category := t.Category
	if category == "" {
		category = "General"
	}
	return discord.Embed{
		Title:       titlePrefix + t.Term,
		Description: t.Definition,
		Color:       embedColor,
		Fields: []discord.EmbedField{
			{Name: "📂 Category", Value: category, Inline: true},
			{Name: "📅 Term #", Value: fmt.Sprintf("%d/%d", idx+1, len(doc.Terminologies)), Inline: true},
		},
		Footer:    footer,
		Timestamp: now,
	}
}
