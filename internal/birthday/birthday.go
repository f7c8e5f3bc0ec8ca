package birthday

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/belmonts/belix/internal/config"
	"github.com/belmonts/belix/internal/discord"
	"github.com/belmonts/belix/internal/repository"
	"github.com/belmonts/belix/internal/scheduler"
)

const embedColor = 0xff69b4

var announcementNames = []string{"announcement", "📢"}

// IsBirthday reports whether birthday falls on day's month and day, ignoring
// the year. Feb 29 birthdays are celebrated on Feb 28 in non-leap years.
func IsBirthday(birthday, day time.Time) bool {
	if birthday.Month() == day.Month() && birthday.Day() == day.Day() {
		return true
	}
	return birthday.Month() == time.February && birthday.Day() == 29 &&
		day.Month() == time.February && day.Day() == 28 && !isLeap(day.Year())
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Celebrants filters members whose birthday is on day.
func Celebrants(members []repository.Member, day time.Time) []repository.Member {
	var out []repository.Member
	for _, m := range members {
		if m.Birthday != nil && IsBirthday(*m.Birthday, day) {
			out = append(out, m)
		}
	}
	return out
}

func displayName(m repository.Member) string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Username
}

func Embed(members []repository.Member, now time.Time) discord.Embed {
	e := discord.Embed{
		Title:     "🎉 Birthday Celebration! 🎂",
		Color:     embedColor,
		Timestamp: now,
	}
	if len(members) == 1 {
		e.Description = fmt.Sprintf("🎊 **Happy Birthday %s!** 🎊\n\n"+
			"Wishing you an amazing day filled with joy, success, and wonderful memories! 🎈\n"+
			"May this year bring you closer to all your dreams! 🌟", displayName(members[0]))
		return e
	}
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, fmt.Sprintf("🎂 **%s**", displayName(m)))
	}
	e.Description = fmt.Sprintf("🎊 **Multiple Birthday Celebrations Today!** 🎊\n\n%s\n\n"+
		"Wishing you all an incredible day filled with happiness and success! 🎈🌟", strings.Join(names, "\n"))
	return e
}

type Service struct {
	cfg     *config.Config
	repo    repository.MemberRepository
	discord discord.Client
	now     func() time.Time
}

func NewService(cfg *config.Config, repo repository.MemberRepository, dc discord.Client) *Service {
	return &Service{cfg: cfg, repo: repo, discord: dc, now: time.Now}
}

func (s *Service) Jobs() []scheduler.Job {
	return []scheduler.Job{{Name: "birthday check", At: s.cfg.BirthdayCheckTime, Run: s.Announce}}
}

// Announce posts one embed for everyone celebrating today.
func (s *Service) Announce(ctx context.Context) error {
	members, err := s.repo.ListMembersWithBirthday(ctx)
	if err != nil {
		return fmt.Errorf("list birthdays: %w", err)
	}
	today := s.now().In(s.cfg.Location())
	celebrants := Celebrants(members, today)
	if len(celebrants) == 0 {
		slog.Info("no birthdays today")
		return nil
	}
	slog.Info("found birthdays today", "count", len(celebrants))

	channels, err := s.discord.ListGuildChannels(s.cfg.DiscordGuildID)
	if err != nil {
		return fmt.Errorf("list channels: %w", err)
	}
	ch := discord.FindChannel(channels, s.cfg.ChannelAnnouncementsID, discord.ChannelTypeText, announcementNames...)
	if ch == nil {
		slog.Warn("no announcements channel found", "guild_id", s.cfg.DiscordGuildID)
		return nil
	}

	embed := Embed(celebrants, s.now())
	mentions := s.mentions(celebrants)
	if len(celebrants) == 1 && len(mentions) == 1 && mentions[0].AvatarURL != "" {
		embed.ThumbnailURL = mentions[0].AvatarURL
	}
	parts := make([]string, 0, len(mentions))
	for _, m := range mentions {
		parts = append(parts, m.Mention())
	}
	if _, err := s.discord.SendMessage(ch.ID, discord.Message{
		Content: strings.Join(parts, " "),
		Embeds:  []discord.Embed{embed},
	}); err != nil {
		return fmt.Errorf("post birthday announcement: %w", err)
	}
	slog.Info("birthday announcement posted", "channel", ch.Name, "count", len(celebrants))
	return nil
}

// mentions resolves celebrants present in the guild, by member id first and
// then by discord username.
func (s *Service) mentions(celebrants []repository.Member) []discord.Member {
	var (
		out    []discord.Member
		guild  []discord.Member
		loaded bool
	)
	for _, c := range celebrants {
		gm, err := s.discord.GetGuildMember(s.cfg.DiscordGuildID, c.MemberID)
		if err != nil {
			slog.Debug("guild member lookup failed", "error", err, "member_id", c.MemberID)
		}
		if gm != nil {
			out = append(out, *gm)
			continue
		}
		if c.DiscordUsername == "" {
			continue
		}
		if !loaded {
			loaded = true
			guild, err = s.discord.ListGuildMembers(s.cfg.DiscordGuildID)
			if err != nil {
				slog.Error("failed to list guild members", "error", err)
			}
		}
		for _, m := range guild {
			if strings.EqualFold(m.Username, c.DiscordUsername) {
				out = append(out, m)
				break
			}
		}
	}
	return out
}
