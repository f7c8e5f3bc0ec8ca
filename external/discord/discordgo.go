package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jellydator/ttlcache/v3"

	discordpkg "github.com/belmonts/belix/internal/discord"
)

const memberCacheTTL = 5 * time.Minute

type Client struct {
	session   *discordgo.Session
	token     string
	botUserID string
	members   *ttlcache.Cache[string, []discordpkg.Member]
}

func NewClient(token string) (*Client, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.MakeIntent(
		discordgo.IntentsGuilds |
			discordgo.IntentsGuildMembers |
			discordgo.IntentsGuildMessages |
			discordgo.IntentsGuildMessageReactions |
			discordgo.IntentsGuildVoiceStates |
			discordgo.IntentsMessageContent |
			discordgo.IntentsDirectMessages,
	)
	s.State.TrackVoice = true
	s.State.TrackMembers = true
	return newClientWithSession(s, token), nil
}

func newClientWithSession(s *discordgo.Session, token string) *Client {
	return &Client{
		session: s,
		token:   token,
		members: ttlcache.New[string, []discordpkg.Member](
			ttlcache.WithTTL[string, []discordpkg.Member](memberCacheTTL),
			ttlcache.WithDisableTouchOnHit[string, []discordpkg.Member](),
		),
	}
}

func (c *Client) Connect(ctx context.Context) error {
	_ = ctx
	if err := c.session.Open(); err != nil {
		return err
	}
	go c.members.Start()
	userID, err := c.GetBotUserID()
	if err != nil {
		return err
	}
	c.botUserID = userID
	return nil
}

func (c *Client) Close() error {
	c.members.Stop()
	return c.session.Close()
}

func (c *Client) GetBotUserID() (string, error) {
	if c.botUserID != "" {
		return c.botUserID, nil
	}
	if c.session.State != nil && c.session.State.User != nil && c.session.State.User.ID != "" {
		c.botUserID = c.session.State.User.ID
		return c.botUserID, nil
	}
	u, err := c.session.User("@me")
	if err != nil {
		return "", err
	}
	c.botUserID = u.ID
	return c.botUserID, nil
}

func (c *Client) RegisterReadyHandler(handler func(discordpkg.ReadyEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		if r == nil {
			return
		}
		event := discordpkg.ReadyEvent{}
		if r.User != nil {
			event.BotUserID = r.User.ID
		}
		for _, g := range r.Guilds {
			if g != nil {
				event.GuildIDs = append(event.GuildIDs, g.ID)
			}
		}
		slog.Info("discord ready", "bot_user_id", event.BotUserID, "guilds", len(event.GuildIDs))
		handler(event)
	})
}

func (c *Client) RegisterMemberAddHandler(handler func(discordpkg.MemberEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		if m == nil || m.Member == nil || m.User == nil {
			return
		}
		c.members.Delete(m.GuildID)
		handler(discordpkg.MemberEvent{
			GuildID: m.GuildID,
			Member:  c.toMember(m.GuildID, m.Member),
		})
	})
}

func (c *Client) RegisterMemberUpdateHandler(handler func(discordpkg.MemberUpdateEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
		if m == nil || m.Member == nil || m.User == nil {
			return
		}
		c.members.Delete(m.GuildID)
		event := discordpkg.MemberUpdateEvent{
			GuildID: m.GuildID,
			After:   c.toMember(m.GuildID, m.Member),
		}
		if m.BeforeUpdate != nil && m.BeforeUpdate.User != nil {
			before := c.toMember(m.GuildID, m.BeforeUpdate)
			event.Before = &before
		}
		handler(event)
	})
}

func (c *Client) RegisterMessageHandler(handler func(discordpkg.MessageEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m == nil || m.Message == nil || m.Author == nil {
			return
		}
		author := discordpkg.Member{
			UserID:     m.Author.ID,
			Username:   m.Author.Username,
			GlobalName: m.Author.GlobalName,
			IsBot:      m.Author.Bot,
			AvatarURL:  m.Author.AvatarURL("256"),
		}
		if m.Member != nil {
			m.Member.User = m.Author
			author = c.toMember(m.GuildID, m.Member)
		}
		ref := m.Reference()
		channelID := m.ChannelID
		handler(discordpkg.MessageEvent{
			GuildID:     m.GuildID,
			ChannelID:   channelID,
			ChannelName: c.channelName(channelID),
			MessageID:   m.ID,
			Author:      author,
			Content:     m.Content,
			Reply: func(msg discordpkg.Message) error {
				send := toMessageSend(msg)
				send.Reference = ref
				_, err := s.ChannelMessageSendComplex(channelID, send)
				return err
			},
		})
	})
}

func (c *Client) RegisterReactionHandler(handler func(discordpkg.ReactionEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		if r == nil || r.MessageReaction == nil {
			return
		}
		isBot, ok := false, false
		if r.Member != nil && r.Member.User != nil {
			isBot, ok = r.Member.User.Bot, true
		}
		if !ok {
			isBot = c.resolveUserIsBot(r.GuildID, r.UserID)
		}
		handler(toReactionEvent(r.MessageReaction, isBot, true))
	})
	c.session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
		if r == nil || r.MessageReaction == nil {
			return
		}
		handler(toReactionEvent(r.MessageReaction, c.resolveUserIsBot(r.GuildID, r.UserID), false))
	})
}

func toReactionEvent(r *discordgo.MessageReaction, isBot, added bool) discordpkg.ReactionEvent {
	emoji := r.Emoji.Name
	if r.Emoji.ID != "" {
		emoji = r.Emoji.APIName()
	}
	return discordpkg.ReactionEvent{
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		UserID:    r.UserID,
		UserIsBot: isBot,
		Emoji:     emoji,
		Added:     added,
	}
}

func (c *Client) RegisterVoiceStateUpdateHandler(handler func(discordpkg.VoiceStateEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
		if vs == nil || vs.VoiceState == nil {
			return
		}
		beforeChannelID := ""
		if vs.BeforeUpdate != nil {
			beforeChannelID = vs.BeforeUpdate.ChannelID
		}
		afterChannelID := vs.ChannelID
		if beforeChannelID == afterChannelID {
			return
		}
		if vs.GuildID == "" || vs.UserID == "" {
			return
		}
		isBot := false
		if vs.Member != nil && vs.Member.User != nil {
			isBot = vs.Member.User.Bot
		} else {
			isBot = c.resolveUserIsBot(vs.GuildID, vs.UserID)
		}
		handler(discordpkg.VoiceStateEvent{
			GuildID:         vs.GuildID,
			UserID:          vs.UserID,
			UserIsBot:       isBot,
			BeforeChannelID: beforeChannelID,
			AfterChannelID:  afterChannelID,
		})
	})
}

func (c *Client) UpsertGuildSlashCommands(guildID string, defs []discordpkg.SlashCommandDefinition) error {
	appID := c.applicationID()
	if appID == "" {
		return fmt.Errorf("discord application id is not available")
	}
	existing, err := c.session.ApplicationCommands(appID, guildID)
	if err != nil {
		return err
	}
	existingByName := make(map[string]*discordgo.ApplicationCommand, len(existing))
	for _, cmd := range existing {
		if cmd == nil || cmd.Name == "" {
			continue
		}
		existingByName[cmd.Name] = cmd
	}
	for _, def := range defs {
		if err := c.upsertGuildSlashCommand(appID, guildID, def, existingByName); err != nil {
			return fmt.Errorf("failed to upsert command %s: %w", def.Name, err)
		}
	}
	return nil
}

func (c *Client) upsertGuildSlashCommand(appID, guildID string, def discordpkg.SlashCommandDefinition, existingByName map[string]*discordgo.ApplicationCommand) error {
	if def.Name == "" {
		return nil
	}
	payload := toApplicationCommand(def)
	cmd, ok := existingByName[def.Name]
	if !ok {
		_, err := c.session.ApplicationCommandCreate(appID, guildID, payload)
		return err
	}
	if cmd.Description == def.Description && len(cmd.Options) == len(payload.Options) {
		return nil
	}
	_, err := c.session.ApplicationCommandEdit(appID, guildID, cmd.ID, payload)
	return err
}

func (c *Client) applicationID() string {
	if c.session.State == nil {
		return ""
	}
	if c.session.State.Application != nil && c.session.State.Application.ID != "" {
		return c.session.State.Application.ID
	}
	if c.session.State.User != nil {
		return c.session.State.User.ID
	}
	return ""
}

func (c *Client) resolveUserIsBot(guildID, userID string) bool {
	if c.session.State != nil {
		if c.session.State.User != nil && c.session.State.User.ID == userID {
			return true
		}
		member, err := c.session.State.Member(guildID, userID)
		if err == nil && member != nil && member.User != nil {
			return member.User.Bot
		}
	}
	u, err := c.session.User(userID)
	if err != nil {
		return false
	}
	return u.Bot
}

func (c *Client) channelName(channelID string) string {
	if c.session.State != nil {
		ch, err := c.session.State.Channel(channelID)
		if err == nil && ch != nil {
			return ch.Name
		}
	}
	ch, err := c.session.Channel(channelID)
	if err != nil || ch == nil {
		return ""
	}
	return ch.Name
}

func isRESTNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Response == nil {
		return false
	}
	return restErr.Response.StatusCode == http.StatusNotFound
}
