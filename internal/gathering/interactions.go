package gathering

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/belmonts/belix/internal/discord"
)

func respond(event discord.InteractionEvent, content string) {
	if event.Respond == nil {
		return
	}
	if err := event.Respond(discord.Message{Content: content}, true); err != nil {
		slog.Error("failed to respond to interaction", "error", err, "custom_id", event.CustomID)
	}
}

func (m *Manager) HandlesButton(customID string) bool {
	return strings.HasPrefix(customID, ButtonTimePrefix)
}

func (m *Manager) HandlesModal(customID string) bool {
	return customID == ModalTime
}

// HandleButton answers the meeting time buttons.
func (m *Manager) HandleButton(_ context.Context, event discord.InteractionEvent) {
	if !m.isManager(event.Member) {
		respond(event, messageMeetingNotManager)
		return
	}
	if event.CustomID == ButtonTimeManual {
		if event.ShowModal == nil {
			return
		}
		if err := event.ShowModal(timeModal()); err != nil {
			slog.Error("failed to show meeting time modal", "error", err)
		}
		return
	}
	value := strings.TrimPrefix(event.CustomID, ButtonTimePrefix)
	respond(event, m.choose(value, messageTimeUnparsable, messageTimeNotFutureClick))
}

// HandleModal answers the manual meeting time form.
func (m *Manager) HandleModal(_ context.Context, event discord.InteractionEvent) {
	if !m.isManager(event.Member) {
		respond(event, messageMeetingNotManager)
		return
	}
	respond(event, m.choose(event.ModalValues[InputTime], messageTimeInvalidInput, messageTimeNotFutureInput))
}

func (m *Manager) choose(input, invalid, notFuture string) string {
	now := m.now().In(m.cfg.Location())
	at, ok := ParseTimeInput(input, now)
	if !ok {
		return invalid
	}
	if !at.After(now) {
		return notFuture
	}
	m.Schedule(at)
	return fmt.Sprintf(messageScheduledFormat, formatTimeLabel(at))
}

// EndMeetingCommand closes the meeting on a manager's request and returns the
// reply text.
func (m *Manager) EndMeetingCommand(ctx context.Context, member discord.Member) string {
	if !m.isManager(member) {
		return messageEndNotManager
	}
	if !m.End(ctx, stopReasonManual) {
		return messageNoMeeting
	}
	return messageEndedManually
}
