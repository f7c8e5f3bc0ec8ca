package members

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/belmonts/belix/internal/config"
	"github.com/belmonts/belix/internal/discord"
)

type Rookie struct {
	Username    string   `json:"username" validate:"required"`
	UserID      string   `json:"userId" validate:"required"`
	DisplayName string   `json:"displayName"`
	JoinedAt    *string  `json:"joinedAt"`
	Roles       []string `json:"roles"`
}

// RookieData is the rookie roster exported by the rookies command.
type RookieData struct {
	Rookies      []Rookie `json:"rookiesmembersData"`
	RoleName     string   `json:"roleName"`
	GuildID      string   `json:"guildId"`
	TotalRookies int      `json:"totalRookies"`
	LastUpdated  string   `json:"lastUpdated"`
}

func (d *RookieData) Prune(keep func(entry any) bool) int {
	kept := d.Rookies[:0]
	for i := range d.Rookies {
		if keep(&d.Rookies[i]) {
			kept = append(kept, d.Rookies[i])
		}
	}
	dropped := len(d.Rookies) - len(kept)
	d.Rookies = kept
	return dropped
}

// Contains matches by user id first, then case-insensitively by username.
func (d RookieData) Contains(userID, username string) bool {
	for _, r := range d.Rookies {
		if userID != "" && r.UserID == userID {
			return true
		}
		if username != "" && strings.EqualFold(r.Username, username) {
			return true
		}
	}
	return false
}

type RookieStore interface {
	Load() (RookieData, error)
	Save(data RookieData) error
}

type RookieChecker struct {
	cfg   *config.Config
	store RookieStore
}

func NewRookieChecker(cfg *config.Config, store RookieStore) *RookieChecker {
	return &RookieChecker{cfg: cfg, store: store}
}

// IsRookie reports whether the member carries the rookie role or is listed in
// the exported roster.
func (c *RookieChecker) IsRookie(m discord.Member) bool {
	if m.HasRoleNamed(c.cfg.RookieRoleName) {
		return true
	}
	data, err := c.store.Load()
	if err != nil {
		slog.Error("failed to load rookies data", "error", err)
		return false
	}
	return data.Contains(m.UserID, m.Username)
}

// RookieRoster builds the roster of non-bot members holding roleName.
func RookieRoster(members []discord.Member, roleName, guildID string, now time.Time) RookieData {
	roleName = strings.ToLower(strings.TrimSpace(roleName))
	data := RookieData{
		Rookies:     []Rookie{},
		RoleName:    roleName,
		GuildID:     guildID,
		LastUpdated: now.UTC().Format(time.RFC3339Nano),
	}
	for _, m := range members {
		if m.IsBot || !m.HasRoleNamed(roleName) {
			continue
		}
		r := Rookie{
			Username:    m.Username,
			UserID:      m.UserID,
			DisplayName: m.DisplayName(),
			Roles:       make([]string, 0, len(m.Roles)),
		}
		if !m.JoinedAt.IsZero() {
			joined := m.JoinedAt.UTC().Format(time.RFC3339Nano)
			r.JoinedAt = &joined
		}
		for _, role := range m.Roles {
			r.Roles = append(r.Roles, role.Name)
		}
		data.Rookies = append(data.Rookies, r)
	}
	data.TotalRookies = len(data.Rookies)
	return data
}

// ExportRookies writes the rookie roster of the configured guild and returns
// how many rookies were saved.
func ExportRookies(cfg *config.Config, dc discord.Client, store RookieStore, now time.Time) (int, error) {
	members, err := dc.ListGuildMembers(cfg.DiscordGuildID)
	if err != nil {
		return 0, fmt.Errorf("list guild members: %w", err)
	}
	data := RookieRoster(members, cfg.RookieRoleName, cfg.DiscordGuildID, now)
	if err := store.Save(data); err != nil {
		return 0, fmt.Errorf("save rookies: %w", err)
	}
	return data.TotalRookies, nil
}
