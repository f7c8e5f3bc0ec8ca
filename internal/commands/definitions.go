package commands

import (
	"github.com/belmonts/belix/internal/discord"
	"github.com/belmonts/belix/internal/questions"
)

const (
	CommandHelp            = "help"
	CommandLeaderboard     = "leaderboard"
	CommandMyPoints        = "mypoints"
	CommandTerminology     = "terminology"
	CommandNext            = "next"
	CommandPrev            = "prev"
	CommandDailyQuestions  = "dailyquestions"
	CommandRookieQuestions = "rookiequestions"
	CommandQuestion        = "question"
	CommandQD              = "qd"
	CommandQuestions       = "questions"
	CommandGathering       = "gathering"
	CommandEndMeeting      = "endmeeting"
	CommandRemind          = "remind"

	OptionNumber     = "number"
	OptionDifficulty = "difficulty"
	OptionPage       = "page"
	OptionWhen       = "when"
	OptionWhat       = "what"
)

func ptr[T any](v T) *T { return &v }

// Definitions lists every slash command registered on the guild.
func Definitions() []discord.SlashCommandDefinition {
	return []discord.SlashCommandDefinition{
		{Name: CommandHelp, Description: "Show all available commands."},
		{Name: CommandLeaderboard, Description: "Show the leaderboard (top 10 users)."},
		{Name: CommandMyPoints, Description: "Show your personal points."},
		{Name: CommandTerminology, Description: "Show today's terminology."},
		{Name: CommandNext, Description: "Preview the next terminology (without changing today's)."},
		{Name: CommandPrev, Description: "Preview the previous terminology."},
		{Name: CommandDailyQuestions, Description: "View today's daily programming question."},
		{Name: CommandRookieQuestions, Description: "View today's rookie question number."},
		{
			Name:        CommandQuestion,
			Description: "Get a specific programming question by number (1-129).",
			Options: []discord.SlashCommandOption{{
				Name:        OptionNumber,
				Description: "Question number (1-129)",
				Type:        discord.OptionInteger,
				Required:    true,
				MinValue:    ptr(1.0),
				MaxValue:    questions.MaxNumber,
			}},
		},
		{
			Name:        CommandQD,
			Description: "Get questions filtered by difficulty level.",
			Options: []discord.SlashCommandOption{{
				Name:        OptionDifficulty,
				Description: "Choose difficulty: Easy or Medium",
				Type:        discord.OptionString,
				Required:    true,
				Choices:     []string{"Easy", "Medium"},
			}},
		},
		{
			Name:        CommandQuestions,
			Description: "Browse all programming questions.",
			Options: []discord.SlashCommandOption{{
				Name:        OptionPage,
				Description: "Page to open",
				Type:        discord.OptionInteger,
				MinValue:    ptr(1.0),
			}},
		},
		{Name: CommandGathering, Description: "Show today's gathering status."},
		{Name: CommandEndMeeting, Description: "End the running meeting and post the attendance report."},
		{
			Name:        CommandRemind,
			Description: "Set a personal reminder.",
			Options: []discord.SlashCommandOption{
				{Name: OptionWhen, Description: "When to remind you (e.g. in 10 minutes, tomorrow at 9am)", Type: discord.OptionString, Required: true},
				{Name: OptionWhat, Description: "What to remind you about", Type: discord.OptionString, Required: true},
			},
		},
	}
}
