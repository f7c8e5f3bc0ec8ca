package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/jellydator/ttlcache/v3"

	discordpkg "github.com/belmonts/belix/internal/discord"
)

const guildMembersPageSize = 1000

func (c *Client) SendMessage(channelID string, msg discordpkg.Message) (string, error) {
	send := toMessageSend(msg)
	if msg.ReplyToID != "" {
		send.Reference = &discordgo.MessageReference{MessageID: msg.ReplyToID, ChannelID: channelID}
	}
	sent, err := c.session.ChannelMessageSendComplex(channelID, send)
	if err != nil {
		return "", err
	}
	return sent.ID, nil
}

func (c *Client) SendDirectMessage(userID string, msg discordpkg.Message) error {
	ch, err := c.session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("failed to open dm channel: %w", err)
	}
	_, err = c.session.ChannelMessageSendComplex(ch.ID, toMessageSend(msg))
	return err
}

func (c *Client) GetGuild(guildID string) (*discordpkg.Guild, error) {
	var g *discordgo.Guild
	if c.session.State != nil {
		if cached, err := c.session.State.Guild(guildID); err == nil && cached != nil && cached.Name != "" {
			g = cached
		}
	}
	if g == nil {
		fetched, err := c.session.GuildWithCounts(guildID)
		if err != nil {
			if isRESTNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		g = fetched
	}
	count := g.MemberCount
	if count == 0 {
		count = g.ApproximateMemberCount
	}
	return &discordpkg.Guild{
		ID:              g.ID,
		Name:            g.Name,
		MemberCount:     count,
		SystemChannelID: g.SystemChannelID,
		IconURL:         g.IconURL("256"),
	}, nil
}

func (c *Client) ListGuildChannels(guildID string) ([]discordpkg.Channel, error) {
	var channels []*discordgo.Channel
	if c.session.State != nil {
		if guild, err := c.session.State.Guild(guildID); err == nil && guild != nil {
			channels = guild.Channels
		}
	}
	if len(channels) == 0 {
		fetched, err := c.session.GuildChannels(guildID)
		if err != nil {
			return nil, err
		}
		channels = fetched
	}
	out := make([]discordpkg.Channel, 0, len(channels))
	for _, ch := range channels {
		if ch != nil {
			out = append(out, toChannel(ch))
		}
	}
	return out, nil
}

func (c *Client) CreateTextChannel(guildID, name, topic string) (*discordpkg.Channel, error) {
	ch, err := c.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:  name,
		Type:  discordgo.ChannelTypeGuildText,
		Topic: topic,
	})
	if err != nil {
		return nil, err
	}
	out := toChannel(ch)
	return &out, nil
}

// ListGuildMembers pages through the whole member list; results are cached
// per guild until a member event invalidates them.
func (c *Client) ListGuildMembers(guildID string) ([]discordpkg.Member, error) {
	if item := c.members.Get(guildID); item != nil {
		return item.Value(), nil
	}
	var (
		out   []discordpkg.Member
		after string
	)
	for {
		page, err := c.session.GuildMembers(guildID, after, guildMembersPageSize)
		if err != nil {
			return nil, err
		}
		for _, m := range page {
			if m == nil || m.User == nil {
				continue
			}
			out = append(out, c.toMember(guildID, m))
		}
		if len(page) < guildMembersPageSize {
			break
		}
		after = page[len(page)-1].User.ID
	}
	c.members.Set(guildID, out, ttlcache.DefaultTTL)
	return out, nil
}

func (c *Client) GetGuildMember(guildID, userID string) (*discordpkg.Member, error) {
	if c.session.State != nil {
		if m, err := c.session.State.Member(guildID, userID); err == nil && m != nil && m.User != nil {
			out := c.toMember(guildID, m)
			return &out, nil
		}
	}
	m, err := c.session.GuildMember(guildID, userID)
	if err != nil {
		if isRESTNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	out := c.toMember(guildID, m)
	return &out, nil
}

func (c *Client) ListVoiceChannelParticipants(guildID, channelID string) ([]discordpkg.VoiceParticipant, error) {
	if c.session.State == nil {
		return nil, nil
	}
	guild, err := c.session.State.Guild(guildID)
	if err != nil || guild == nil {
		return nil, nil
	}
	participants := make([]discordpkg.VoiceParticipant, 0)
	seen := make(map[string]struct{})
	for _, state := range guild.VoiceStates {
		if state == nil || state.ChannelID != channelID || state.UserID == "" {
			continue
		}
		if _, exists := seen[state.UserID]; exists {
			continue
		}
		seen[state.UserID] = struct{}{}
		isBot := false
		if state.Member != nil && state.Member.User != nil {
			isBot = state.Member.User.Bot
		} else {
			isBot = c.resolveUserIsBot(guildID, state.UserID)
		}
		participants = append(participants, discordpkg.VoiceParticipant{
			UserID: state.UserID,
			IsBot:  isBot,
		})
	}
	return participants, nil
}
