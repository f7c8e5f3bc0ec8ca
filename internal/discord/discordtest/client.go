// Package discordtest provides an in-memory discord.Client for tests.
package discordtest

import (
	"context"
	"strconv"
	"sync"

	"github.com/belmonts/belix/internal/discord"
)

type SentMessage struct {
	ChannelID string
	Message   discord.Message
}

type Client struct {
	BotUserID    string
	Guild        *discord.Guild
	Channels     []discord.Channel
	Members      []discord.Member
	Participants map[string][]discord.VoiceParticipant

	SendErr error

	mu       sync.Mutex
	sent     []SentMessage
	dms      []SentMessage
	created  []discord.Channel
	commands []discord.SlashCommandDefinition
	nextID   int
}

var _ discord.Client = (*Client)(nil)

func (c *Client) Connect(_ context.Context) error { return nil }
func (c *Client) Close() error                    { return nil }

func (c *Client) GetBotUserID() (string, error) {
	if c.BotUserID == "" {
		return "bot-self", nil
	}
	return c.BotUserID, nil
}

func (c *Client) RegisterReadyHandler(_ func(discord.ReadyEvent))               {}
func (c *Client) RegisterMemberAddHandler(_ func(discord.MemberEvent))          {}
func (c *Client) RegisterMemberUpdateHandler(_ func(discord.MemberUpdateEvent)) {}
func (c *Client) RegisterMessageHandler(_ func(discord.MessageEvent))           {}
func (c *Client) RegisterReactionHandler(_ func(discord.ReactionEvent))         {}
func (c *Client) RegisterVoiceStateUpdateHandler(_ func(discord.VoiceStateEvent)) {
}
func (c *Client) RegisterInteractionHandler(_ func(discord.InteractionEvent)) {}

func (c *Client) UpsertGuildSlashCommands(_ string, defs []discord.SlashCommandDefinition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commands = append([]discord.SlashCommandDefinition(nil), defs...)
	return nil
}

func (c *Client) SendMessage(channelID string, msg discord.Message) (string, error) {
	if c.SendErr != nil {
		return "", c.SendErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, SentMessage{ChannelID: channelID, Message: msg})
	c.nextID++
	return "msg-" + strconv.Itoa(c.nextID), nil
}

func (c *Client) SendDirectMessage(userID string, msg discord.Message) error {
	if c.SendErr != nil {
		return c.SendErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dms = append(c.dms, SentMessage{ChannelID: userID, Message: msg})
	return nil
}

func (c *Client) GetGuild(guildID string) (*discord.Guild, error) {
	if c.Guild != nil {
		return c.Guild, nil
	}
	return &discord.Guild{ID: guildID, Name: "Belmonts", MemberCount: len(c.Members)}, nil
}

func (c *Client) ListGuildChannels(_ string) ([]discord.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]discord.Channel(nil), c.Channels...), nil
}

func (c *Client) CreateTextChannel(_, name, _ string) (*discord.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := discord.Channel{ID: "created-" + name, Name: name, Type: discord.ChannelTypeText}
	c.Channels = append(c.Channels, ch)
	c.created = append(c.created, ch)
	return &ch, nil
}

func (c *Client) ListGuildMembers(_ string) ([]discord.Member, error) {
	return append([]discord.Member(nil), c.Members...), nil
}

func (c *Client) GetGuildMember(_, userID string) (*discord.Member, error) {
	for i := range c.Members {
		if c.Members[i].UserID == userID {
			m := c.Members[i]
			return &m, nil
		}
	}
	return nil, nil
}

func (c *Client) ListVoiceChannelParticipants(_, channelID string) ([]discord.VoiceParticipant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]discord.VoiceParticipant(nil), c.Participants[channelID]...), nil
}

// Sent returns the channel messages sent so far.
func (c *Client) Sent() []SentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]SentMessage(nil), c.sent...)
}

func (c *Client) DirectMessages() []SentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]SentMessage(nil), c.dms...)
}

func (c *Client) CreatedChannels() []discord.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]discord.Channel(nil), c.created...)
}

func (c *Client) Commands() []discord.SlashCommandDefinition {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]discord.SlashCommandDefinition(nil), c.commands...)
}

func (c *Client) SetParticipants(channelID string, ps ...discord.VoiceParticipant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Participants == nil {
		c.Participants = make(map[string][]discord.VoiceParticipant)
	}
	c.Participants[channelID] = ps
}

// Interaction records the responses given to a fake interaction.
type Interaction struct {
	mu        sync.Mutex
	Responses []discord.Message
	Ephemeral []bool
	Edits     []discord.Message
	Updates   []discord.Message
	Modals    []discord.Modal
	Deferred  bool
}

// Bind fills the response closures of ev so they record into r.
func (r *Interaction) Bind(ev *discord.InteractionEvent) {
	ev.Respond = func(msg discord.Message, ephemeral bool) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.Responses = append(r.Responses, msg)
		r.Ephemeral = append(r.Ephemeral, ephemeral)
		return nil
	}
	ev.Defer = func(bool) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.Deferred = true
		return nil
	}
	ev.EditResponse = func(msg discord.Message) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.Edits = append(r.Edits, msg)
		return nil
	}
	ev.UpdateMessage = func(msg discord.Message) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.Updates = append(r.Updates, msg)
		return nil
	}
	ev.ShowModal = func(modal discord.Modal) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.Modals = append(r.Modals, modal)
		return nil
	}
}
