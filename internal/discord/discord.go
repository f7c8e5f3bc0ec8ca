package discord

import (
	"context"
	"strings"
	"time"
)

type Role struct {
	ID       string
	Name     string
	Position int
}

type Member struct {
	UserID     string
	Username   string
	GlobalName string
	Nick       string
	IsBot      bool
	Roles      []Role
	JoinedAt   time.Time
	AvatarURL  string
}

// DisplayName prefers the guild nickname, then the global name, then the username.
func (m Member) DisplayName() string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.GlobalName != "" {
		return m.GlobalName
	}
	return m.Username
}

// HighestRole returns the role with the greatest position, if any.
func (m Member) HighestRole() (Role, bool) {
	if len(m.Roles) == 0 {
		return Role{}, false
	}
	best := m.Roles[0]
	for _, r := range m.Roles[1:] {
		if r.Position > best.Position {
			best = r
		}
	}
	return best, true
}

// RoleName is the highest role's name, or "Member" when only @everyone applies.
func (m Member) RoleName() string {
	if r, ok := m.HighestRole(); ok && r.Name != "" && r.Name != "@everyone" {
		return r.Name
	}
	return "Member"
}

func (m Member) HasRoleNamed(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}
	for _, r := range m.Roles {
		if strings.ToLower(r.Name) == name {
			return true
		}
	}
	return false
}

// Mention renders the chat mention markup for the member.
func (m Member) Mention() string {
	return Mention(m.UserID)
}

func Mention(userID string) string {
	return "<@" + userID + ">"
}

func RoleMention(roleID string) string {
	return "<@&" + roleID + ">"
}

type ChannelType int

const (
	ChannelTypeOther ChannelType = iota
	ChannelTypeText
	ChannelTypeVoice
)

type Channel struct {
	ID   string
	Name string
	Type ChannelType
}

type Guild struct {
	ID              string
	Name            string
	MemberCount     int
	SystemChannelID string
	IconURL         string
}

type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

type Embed struct {
	Title        string
	Description  string
	Color        int
	Fields       []EmbedField
	Footer       string
	ThumbnailURL string
	Timestamp    time.Time
}

type ButtonStyle int

const (
	ButtonPrimary ButtonStyle = iota
	ButtonSecondary
	ButtonSuccess
	ButtonDanger
)

type Button struct {
	CustomID string
	Label    string
	Style    ButtonStyle
	Disabled bool
}

type ActionRow struct {
	Buttons []Button
}

type Message struct {
	Content    string
	Embeds     []Embed
	Components []ActionRow
	// ReplyToID makes the message a reply when set.
	ReplyToID string
}

type TextInput struct {
	CustomID    string
	Label       string
	Placeholder string
}

type Modal struct {
	CustomID string
	Title    string
	Inputs   []TextInput
}

type OptionType int

const (
	OptionString OptionType = iota
	OptionInteger
)

type SlashCommandOption struct {
	Name        string
	Description string
	Type        OptionType
	Required    bool
	MinValue    *float64
	MaxValue    float64
	Choices     []string
}

type SlashCommandDefinition struct {
	Name        string
	Description string
	Options     []SlashCommandOption
}

type ReadyEvent struct {
	BotUserID string
	GuildIDs  []string
}

type MemberEvent struct {
	GuildID string
	Member  Member
}

type MemberUpdateEvent struct {
	GuildID string
	// Before is nil when the previous state was not cached.
	Before *Member
	After  Member
}

type MessageEvent struct {
	GuildID     string
	ChannelID   string
	ChannelName string
	MessageID   string
	Author      Member
	Content     string
	Reply       func(msg Message) error
}

type ReactionEvent struct {
	GuildID   string
	ChannelID string
	MessageID string
	UserID    string
	UserIsBot bool
	Emoji     string
	Added     bool
}

type VoiceStateEvent struct {
	GuildID         string
	UserID          string
	UserIsBot       bool
	BeforeChannelID string
	AfterChannelID  string
}

type InteractionKind int

const (
	InteractionCommand InteractionKind = iota
	InteractionButton
	InteractionModalSubmit
)

type InteractionEvent struct {
	Kind        InteractionKind
	GuildID     string
	ChannelID   string
	Member      Member
	CommandName string
	Options     map[string]string
	CustomID    string
	ModalValues map[string]string

	Respond       func(msg Message, ephemeral bool) error
	Defer         func(ephemeral bool) error
	EditResponse  func(msg Message) error
	UpdateMessage func(msg Message) error
	ShowModal     func(modal Modal) error
}

type VoiceParticipant struct {
	UserID string
	IsBot  bool
}

type Client interface {
	Connect(ctx context.Context) error
	Close() error
	GetBotUserID() (string, error)

	RegisterReadyHandler(handler func(ReadyEvent))
	RegisterMemberAddHandler(handler func(MemberEvent))
	RegisterMemberUpdateHandler(handler func(MemberUpdateEvent))
	RegisterMessageHandler(handler func(MessageEvent))
	RegisterReactionHandler(handler func(ReactionEvent))
	RegisterVoiceStateUpdateHandler(handler func(VoiceStateEvent))
	RegisterInteractionHandler(handler func(InteractionEvent))
	UpsertGuildSlashCommands(guildID string, defs []SlashCommandDefinition) error

	SendMessage(channelID string, msg Message) (string, error)
	SendDirectMessage(userID string, msg Message) error
	GetGuild(guildID string) (*Guild, error)
	ListGuildChannels(guildID string) ([]Channel, error)
	CreateTextChannel(guildID, name, topic string) (*Channel, error)
	ListGuildMembers(guildID string) ([]Member, error)
	GetGuildMember(guildID, userID string) (*Member, error)
	ListVoiceChannelParticipants(guildID, channelID string) ([]VoiceParticipant, error)
}

// FindChannel returns the channel with the given id when it exists and has the
// wanted type, otherwise the first channel of that type whose lower-cased name
// contains any of names.
func FindChannel(channels []Channel, id string, kind ChannelType, names ...string) *Channel {
	if id != "" {
		for i := range channels {
			if channels[i].ID == id && channels[i].Type == kind {
				return &channels[i]
			}
		}
	}
	for i := range channels {
		if channels[i].Type != kind {
			continue
		}
		lower := strings.ToLower(channels[i].Name)
		for _, n := range names {
			if strings.Contains(lower, strings.ToLower(n)) {
				return &channels[i]
			}
		}
	}
	return nil
}

// NameMatches reports whether the member's username or display name, lower-cased
// and trimmed, is in names.
func NameMatches(m Member, names []string) bool {
	username := strings.ToLower(strings.TrimSpace(m.Username))
	display := strings.ToLower(strings.TrimSpace(m.DisplayName()))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if n == username || n == display {
			return true
		}
	}
	return false
}
