package gathering

import (
	"fmt"
	"strings"

	"github.com/belmonts/belix/internal/discord"
)

const (
	stopReasonIdle     = "idle"
	stopReasonDuration = "duration"
	stopReasonManual   = "manual"
	stopReasonShutdown = "shutdown"

	promptColor       = 0x7f56d9
	reportColor       = 0x12b76a
	confirmationColor = 0x12b76a

	ButtonTimePrefix = "meeting_time_"
	ButtonTimeManual = "meeting_time_manual"
	ModalTime        = "meeting_time_modal"
	InputTime        = "meeting_time_input"

	ButtonConfirm = "gather_confirm"
	ButtonCancel  = "gather_cancel"

	messageMeetingNotManager  = "Only meeting managers can set the meeting time."
	messageTimeUnparsable     = "Could not parse that meeting time."
	messageTimeInvalidInput   = "Please enter a valid time like 7:30 PM or 19:30."
	messageTimeNotFutureClick = "Please choose a future time for today’s meeting."
	messageTimeNotFutureInput = "Please enter a future time for today’s meeting."
	messageScheduledFormat    = "Meeting scheduled for %s."
	messageStartedFormat      = "🔔 Meeting started in **%s**. Attendance is now being tracked."
	messageNoAttendance       = "No attendance recorded."
	messageEndNotManager      = "❌ Only meeting managers can end the meeting."
	messageNoMeeting          = "There is no meeting in progress."
	messageEndedManually      = "🛑 Meeting ended. The report has been posted."

	messageGatherNotManager = "❌ Only gathering managers can confirm or cancel gatherings!"
	messageGatherConfirmed  = "✅ Gathering confirmed! Message sent to 🗻 common-hall"
	messageGatherCancelled  = "❌ Gathering cancelled for today."
	messageGatherFailed     = "⚠️ Could not save the gathering status. Please try again."
)

type timeOption struct {
	label string
	value string
}

var timeOptions = []timeOption{
	{label: "7:00 PM", value: "19:00"},
	{label: "7:15 PM", value: "19:15"},
	{label: "7:30 PM", value: "19:30"},
	{label: "8:00 PM", value: "20:00"},
	{label: "8:30 PM", value: "20:30"},
}

func stopReasonDetail(reason string) string {
	switch reason {
	case stopReasonIdle:
		return "Everyone left the meeting channel."
	case stopReasonDuration:
		return "The planned meeting duration elapsed."
	case stopReasonManual:
		return "A meeting manager ended the meeting."
	case stopReasonShutdown:
		return "The bot was shut down."
	default:
		return "The meeting ended."
	}
}

func promptEmbed(guildName, managerMentions string) discord.Embed {
	labels := make([]string, 0, len(timeOptions))
	for _, o := range timeOptions {
		labels = append(labels, o.label)
	}
	return discord.Embed{
		Title: "📅 Clan Gathering Meeting Time",
		Description: fmt.Sprintf("Hi %s! Please choose the meeting time for today.\nOptions: %s, or enter a manual time.",
			managerMentions, strings.Join(labels, ", ")),
		Color:  promptColor,
		Footer: "Server: " + guildName,
	}
}

func timeButtons() []discord.ActionRow {
	row := discord.ActionRow{}
	for _, o := range timeOptions {
		row.Buttons = append(row.Buttons, discord.Button{
			CustomID: ButtonTimePrefix + o.value,
			Label:    o.label,
			Style:    discord.ButtonPrimary,
		})
	}
	manual := discord.ActionRow{Buttons: []discord.Button{{
		CustomID: ButtonTimeManual,
		Label:    "Manual time",
		Style:    discord.ButtonSecondary,
	}}}
	return []discord.ActionRow{row, manual}
}

func timeModal() discord.Modal {
	return discord.Modal{
		CustomID: ModalTime,
		Title:    "Enter Meeting Time",
		Inputs: []discord.TextInput{{
			CustomID: InputTime,
			Label:    "Time (e.g. 7:45 PM or 19:45)",
		}},
	}
}

type reportView struct {
	date      string
	scheduled string
	duration  string
	lines     []string
	reason    string
}

func reportEmbed(v reportView) discord.Embed {
	attendance := strings.Join(v.lines, "\n")
	if attendance == "" {
		attendance = messageNoAttendance
	}
	return discord.Embed{
		Title: "✅ Clan Gathering Meeting Report",
		Color: reportColor,
		Fields: []discord.EmbedField{
			{Name: "Date", Value: v.date, Inline: true},
			{Name: "Meeting Time", Value: v.scheduled, Inline: true},
			{Name: "Meeting Duration", Value: v.duration, Inline: true},
			{Name: "Attendance", Value: attendance},
		},
		Footer: stopReasonDetail(v.reason),
	}
}

func gatheringPromptEmbed(timeLabel, footer string) discord.Embed {
	return discord.Embed{
		Title:       "📡 Daily Gathering Confirmation",
		Description: fmt.Sprintf("It's %s! Is the daily gathering confirmed for today?", timeLabel),
		Color:       promptColor,
		Fields: []discord.EmbedField{
			{Name: "Location", Value: "📡 tinkering channel", Inline: true},
			{Name: "Time", Value: timeLabel, Inline: true},
		},
		Footer: footer,
	}
}

func gatheringButtons() []discord.ActionRow {
	return []discord.ActionRow{{Buttons: []discord.Button{
		{CustomID: ButtonConfirm, Label: "✅ Confirm", Style: discord.ButtonSuccess},
		{CustomID: ButtonCancel, Label: "❌ Cancel", Style: discord.ButtonDanger},
	}}}
}

func confirmationEmbed(confirmedBy, timeLabel string) discord.Embed {
	return discord.Embed{
		Title:       "✅ Daily Gathering Confirmed!",
		Description: fmt.Sprintf("The daily gathering has been confirmed by %s!", confirmedBy),
		Color:       confirmationColor,
		Fields: []discord.EmbedField{
			{Name: "Location", Value: "📡 tinkering channel", Inline: true},
			{Name: "Time", Value: timeLabel, Inline: true},
			{Name: "Status", Value: "✨ Gathering is ON!"},
		},
	}
}
