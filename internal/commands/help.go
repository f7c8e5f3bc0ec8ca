package commands

import (
	"time"

	"github.com/belmonts/belix/internal/discord"
)

const (
	helpColor       = 0x5b9bd5
	rookieHelpColor = 0xffd700

	MessageRookieRestricted = "⚠️ As a rookie member, you only have access to the `/rookiequestions` command. Focus on learning and solving problems! 🚀"
	MessageCommandFailed    = "❌ An error occurred while processing your command."
	MessageButtonFailed     = "❌ Could not update this message. Please try the command again."
	messageInvalidNumber    = "❌ Please provide a question number between 1 and 129."
	messageUnknownCommand   = "❌ Unknown command."
)

func HelpEmbed(now time.Time) discord.Embed {
	return discord.Embed{
		Title:       "🤖 Bot Commands",
		Description: "Here are all available slash commands and what they do:",
		Color:       helpColor,
		Fields: []discord.EmbedField{
			{Name: "/help", Value: "Show all commands and their usage."},
			{Name: "/leaderboard", Value: "Show top 10 users."},
			{Name: "/mypoints", Value: "Show your personal points and last update."},
			{Name: "/terminology", Value: "Show today's terminology."},
			{Name: "/next", Value: "Preview the next terminology (without changing today's)."},
			{Name: "/prev", Value: "Preview the previous terminology."},
			{Name: "/dailyquestions", Value: "View today's daily programming question."},
			{Name: "/rookiequestions", Value: "View today's rookie question number."},
			{Name: "/question <number>", Value: "View a specific question (1-129) with full details."},
			{Name: "/qd <difficulty>", Value: "Filter questions by difficulty level (Easy/Medium)."},
			{Name: "/questions [page]", Value: "Browse every programming question, five per page."},
			{Name: "/gathering", Value: "Show whether today's gathering is confirmed."},
			{Name: "/endmeeting", Value: "End the running meeting (meeting managers only)."},
			{Name: "/remind <when> <what>", Value: "Get a reminder in this channel at the given time."},
		},
		Timestamp: now,
	}
}

func RookieHelpEmbed(now time.Time) discord.Embed {
	return discord.Embed{
		Title:       "🎯 Rookie Commands",
		Description: "As a rookie member, here's your available command:",
		Color:       rookieHelpColor,
		Fields: []discord.EmbedField{
			{Name: "/rookiequestions", Value: "View today's rookie question with full details and explanation."},
		},
		Footer:    "🚀 Focus on learning and growth!",
		Timestamp: now,
	}
}
