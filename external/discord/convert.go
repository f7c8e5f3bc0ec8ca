package discord

import (
	"time"

	"github.com/bwmarrin/discordgo"

	discordpkg "github.com/belmonts/belix/internal/discord"
)

func (c *Client) toMember(guildID string, m *discordgo.Member) discordpkg.Member {
	out := discordpkg.Member{
		Nick:     m.Nick,
		JoinedAt: m.JoinedAt,
		Roles:    c.resolveRoles(guildID, m.Roles),
	}
	if m.User != nil {
		out.UserID = m.User.ID
		out.Username = m.User.Username
		out.GlobalName = m.User.GlobalName
		out.IsBot = m.User.Bot
		out.AvatarURL = m.User.AvatarURL("256")
	}
	return out
}

func (c *Client) resolveRoles(guildID string, roleIDs []string) []discordpkg.Role {
	if len(roleIDs) == 0 {
		return nil
	}
	byID := make(map[string]*discordgo.Role)
	if c.session.State != nil {
		if guild, err := c.session.State.Guild(guildID); err == nil && guild != nil {
			for _, r := range guild.Roles {
				if r != nil {
					byID[r.ID] = r
				}
			}
		}
	}
	if len(byID) == 0 {
		roles, err := c.session.GuildRoles(guildID)
		if err == nil {
			for _, r := range roles {
				if r != nil {
					byID[r.ID] = r
				}
			}
		}
	}
	out := make([]discordpkg.Role, 0, len(roleIDs))
	for _, id := range roleIDs {
		r, ok := byID[id]
		if !ok {
			out = append(out, discordpkg.Role{ID: id})
			continue
		}
		out = append(out, discordpkg.Role{ID: r.ID, Name: r.Name, Position: r.Position})
	}
	return out
}

func toChannelType(t discordgo.ChannelType) discordpkg.ChannelType {
	switch t {
	case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
		return discordpkg.ChannelTypeText
	case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
		return discordpkg.ChannelTypeVoice
	default:
		return discordpkg.ChannelTypeOther
	}
}

func toChannel(ch *discordgo.Channel) discordpkg.Channel {
	return discordpkg.Channel{ID: ch.ID, Name: ch.Name, Type: toChannelType(ch.Type)}
}

func toEmbeds(embeds []discordpkg.Embed) []*discordgo.MessageEmbed {
	out := make([]*discordgo.MessageEmbed, 0, len(embeds))
	for _, e := range embeds {
		me := &discordgo.MessageEmbed{
			Title:       e.Title,
			Description: e.Description,
			Color:       e.Color,
		}
		for _, f := range e.Fields {
			me.Fields = append(me.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
		}
		if e.Footer != "" {
			me.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
		}
		if e.ThumbnailURL != "" {
			me.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: e.ThumbnailURL}
		}
		if !e.Timestamp.IsZero() {
			me.Timestamp = e.Timestamp.Format(time.RFC3339)
		}
		out = append(out, me)
	}
	return out
}

func toButtonStyle(s discordpkg.ButtonStyle) discordgo.ButtonStyle {
	switch s {
	case discordpkg.ButtonSecondary:
		return discordgo.SecondaryButton
	case discordpkg.ButtonSuccess:
		return discordgo.SuccessButton
	case discordpkg.ButtonDanger:
		return discordgo.DangerButton
	default:
		return discordgo.PrimaryButton
	}
}

func toComponents(rows []discordpkg.ActionRow) []discordgo.MessageComponent {
	out := make([]discordgo.MessageComponent, 0, len(rows))
	for _, row := range rows {
		buttons := make([]discordgo.MessageComponent, 0, len(row.Buttons))
		for _, b := range row.Buttons {
			buttons = append(buttons, discordgo.Button{
				CustomID: b.CustomID,
				Label:    b.Label,
				Style:    toButtonStyle(b.Style),
				Disabled: b.Disabled,
			})
		}
		out = append(out, discordgo.ActionsRow{Components: buttons})
	}
	return out
}

func toMessageSend(msg discordpkg.Message) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content:    msg.Content,
		Embeds:     toEmbeds(msg.Embeds),
		Components: toComponents(msg.Components),
	}
}

func toResponseData(msg discordpkg.Message) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Content:    msg.Content,
		Embeds:     toEmbeds(msg.Embeds),
		Components: toComponents(msg.Components),
	}
}

func toModalData(modal discordpkg.Modal) *discordgo.InteractionResponseData {
	rows := make([]discordgo.MessageComponent, 0, len(modal.Inputs))
	for _, in := range modal.Inputs {
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:    in.CustomID,
				Label:       in.Label,
				Style:       discordgo.TextInputShort,
				Placeholder: in.Placeholder,
			},
		}})
	}
	return &discordgo.InteractionResponseData{
		CustomID:   modal.CustomID,
		Title:      modal.Title,
		Components: rows,
	}
}

func toApplicationCommand(def discordpkg.SlashCommandDefinition) *discordgo.ApplicationCommand {
	cmd := &discordgo.ApplicationCommand{
		Name:        def.Name,
		Description: def.Description,
	}
	for _, opt := range def.Options {
		o := &discordgo.ApplicationCommandOption{
			Name:        opt.Name,
			Description: opt.Description,
			Required:    opt.Required,
			Type:        discordgo.ApplicationCommandOptionString,
		}
		if opt.Type == discordpkg.OptionInteger {
			o.Type = discordgo.ApplicationCommandOptionInteger
			o.MinValue = opt.MinValue
			o.MaxValue = opt.MaxValue
		}
		for _, choice := range opt.Choices {
			o.Choices = append(o.Choices, &discordgo.ApplicationCommandOptionChoice{Name: choice, Value: choice})
		}
		cmd.Options = append(cmd.Options, o)
	}
	return cmd
}
