package discord

import (
	"log/slog"
	"strconv"

	"github.com/bwmarrin/discordgo"

	discordpkg "github.com/belmonts/belix/internal/discord"
)

func (c *Client) RegisterInteractionHandler(handler func(discordpkg.InteractionEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		if ic == nil || ic.Interaction == nil {
			return
		}
		event, ok := c.toInteractionEvent(s, ic)
		if !ok {
			return
		}
		slog.Info("interaction received", "guild_id", ic.GuildID, "channel_id", ic.ChannelID, "command", event.CommandName, "custom_id", event.CustomID, "user_id", event.Member.UserID)
		handler(event)
	})
}

func (c *Client) toInteractionEvent(s *discordgo.Session, ic *discordgo.InteractionCreate) (discordpkg.InteractionEvent, bool) {
	event := discordpkg.InteractionEvent{
		GuildID:   ic.GuildID,
		ChannelID: ic.ChannelID,
	}
	switch {
	case ic.Member != nil && ic.Member.User != nil:
		event.Member = c.toMember(ic.GuildID, ic.Member)
	case ic.User != nil:
		event.Member = discordpkg.Member{
			UserID:     ic.User.ID,
			Username:   ic.User.Username,
			GlobalName: ic.User.GlobalName,
			IsBot:      ic.User.Bot,
		}
	default:
		return event, false
	}

	switch ic.Type {
	case discordgo.InteractionApplicationCommand:
		data := ic.ApplicationCommandData()
		if data.Name == "" {
			return event, false
		}
		event.Kind = discordpkg.InteractionCommand
		event.CommandName = data.Name
		event.Options = commandOptions(data.Options)
	case discordgo.InteractionMessageComponent:
		event.Kind = discordpkg.InteractionButton
		event.CustomID = ic.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		data := ic.ModalSubmitData()
		event.Kind = discordpkg.InteractionModalSubmit
		event.CustomID = data.CustomID
		event.ModalValues = modalValues(data.Components)
	default:
		return event, false
	}

	interaction := ic.Interaction
	event.Respond = func(msg discordpkg.Message, ephemeral bool) error {
		data := toResponseData(msg)
		if ephemeral {
			data.Flags = discordgo.MessageFlagsEphemeral
		}
		return s.InteractionRespond(interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: data,
		})
	}
	event.Defer = func(ephemeral bool) error {
		resp := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource}
		if ephemeral {
			resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
		}
		return s.InteractionRespond(interaction, resp)
	}
	event.EditResponse = func(msg discordpkg.Message) error {
		content := msg.Content
		embeds := toEmbeds(msg.Embeds)
		components := toComponents(msg.Components)
		_, err := s.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{
			Content:    &content,
			Embeds:     &embeds,
			Components: &components,
		})
		return err
	}
	event.UpdateMessage = func(msg discordpkg.Message) error {
		return s.InteractionRespond(interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: toResponseData(msg),
		})
	}
	event.ShowModal = func(modal discordpkg.Modal) error {
		return s.InteractionRespond(interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: toModalData(modal),
		})
	}
	return event, true
}

func commandOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]string {
	out := make(map[string]string, len(opts))
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt.Type {
		case discordgo.ApplicationCommandOptionInteger:
			out[opt.Name] = strconv.FormatInt(opt.IntValue(), 10)
		case discordgo.ApplicationCommandOptionString:
			out[opt.Name] = opt.StringValue()
		}
	}
	return out
}

func modalValues(components []discordgo.MessageComponent) map[string]string {
	out := make(map[string]string)
	for _, comp := range components {
		row, ok := comp.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok {
				out[input.CustomID] = input.Value
			}
		}
	}
	return out
}
