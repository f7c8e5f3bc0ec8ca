package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/belmonts/belix/internal/config"
	"github.com/belmonts/belix/internal/discord"
	"github.com/belmonts/belix/internal/points"
	"github.com/belmonts/belix/internal/questions"
	"github.com/belmonts/belix/internal/telemetry"
	"github.com/belmonts/belix/internal/terminology"
)

const interactionTimeout = 15 * time.Second

type Points interface {
	LeaderboardPage(ctx context.Context, page int) (discord.Message, error)
	MyPoints(ctx context.Context, m discord.Member) (discord.Message, error)
	HandleButton(ctx context.Context, customID string) (discord.Message, error)
}

type Questions interface {
	Today() (discord.Message, error)
	Rookie() (discord.Message, error)
	ByNumber(n int) (discord.Message, error)
	ListPage(page int) (discord.Message, error)
	DifficultyPage(difficulty string, page int) (discord.Message, error)
	HandleButton(customID string) (discord.Message, error)
}

type Terminology interface {
	Today() (discord.Embed, error)
	Next() (discord.Embed, error)
	Previous() (discord.Embed, error)
}

type Meetings interface {
	HandlesButton(customID string) bool
	HandlesModal(customID string) bool
	HandleButton(ctx context.Context, event discord.InteractionEvent)
	HandleModal(ctx context.Context, event discord.InteractionEvent)
	EndMeetingCommand(ctx context.Context, member discord.Member) string
}

type Gatherings interface {
	HandlesButton(customID string) bool
	HandleButton(ctx context.Context, event discord.InteractionEvent)
	Status(ctx context.Context) discord.Embed
}

type Reminders interface {
	HandleCommand(userID, channelID, when, what string) string
}

type RookieChecker interface {
	IsRookie(m discord.Member) bool
}

// Router answers slash commands, pagination buttons and the meeting forms.
type Router struct {
	cfg         *config.Config
	discord     discord.Client
	points      Points
	questions   Questions
	terminology Terminology
	meetings    Meetings
	gatherings  Gatherings
	reminders   Reminders
	rookies     RookieChecker
	now         func() time.Time
}

type Services struct {
	Points      Points
	Questions   Questions
	Terminology Terminology
	Meetings    Meetings
	Gatherings  Gatherings
	Reminders   Reminders
	Rookies     RookieChecker
}

func NewRouter(cfg *config.Config, dc discord.Client, s Services) *Router {
	return &Router{
		cfg:         cfg,
		discord:     dc,
		points:      s.Points,
		questions:   s.Questions,
		terminology: s.Terminology,
		meetings:    s.Meetings,
		gatherings:  s.Gatherings,
		reminders:   s.Reminders,
		rookies:     s.Rookies,
		now:         time.Now,
	}
}

// Register upserts the slash commands on the configured guild.
func (r *Router) Register() error {
	defs := Definitions()
	if err := r.discord.UpsertGuildSlashCommands(r.cfg.DiscordGuildID, defs); err != nil {
		return fmt.Errorf("register slash commands: %w", err)
	}
	slog.Info("registered slash commands", "count", len(defs), "guild_id", r.cfg.DiscordGuildID)
	return nil
}

func (r *Router) HandleReady(_ discord.ReadyEvent) {
	if err := r.Register(); err != nil {
		slog.Error("failed to register slash commands", "error", err)
	}
}

// HandleMessage answers a plain "/help" text message.
func (r *Router) HandleMessage(event discord.MessageEvent) {
	if event.Author.IsBot || event.Reply == nil {
		return
	}
	if strings.ToLower(strings.TrimSpace(event.Content)) != "/help" {
		return
	}
	if err := event.Reply(discord.Message{Embeds: []discord.Embed{HelpEmbed(r.now())}}); err != nil {
		slog.Error("failed to reply with help", "error", err, "channel_id", event.ChannelID)
	}
}

func (r *Router) HandleInteraction(event discord.InteractionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()
	if id, err := gonanoid.New(); err == nil {
		ctx = telemetry.WithCorrelation(ctx, id)
	}

	switch event.Kind {
	case discord.InteractionCommand:
		r.handleCommand(ctx, event)
	case discord.InteractionButton:
		r.handleButton(ctx, event)
	case discord.InteractionModalSubmit:
		if r.meetings != nil && r.meetings.HandlesModal(event.CustomID) {
			r.meetings.HandleModal(ctx, event)
		}
	}
}

func (r *Router) handleButton(ctx context.Context, event discord.InteractionEvent) {
	log := telemetry.LoggerWithCorr(ctx).With("custom_id", event.CustomID)
	id := event.CustomID

	var (
		msg discord.Message
		err error
	)
	switch {
	case r.meetings != nil && r.meetings.HandlesButton(id):
		r.meetings.HandleButton(ctx, event)
		return
	case r.gatherings != nil && r.gatherings.HandlesButton(id):
		r.gatherings.HandleButton(ctx, event)
		return
	case points.HandlesButton(id):
		msg, err = r.points.HandleButton(ctx, id)
	case questions.HandlesButton(id):
		msg, err = r.questions.HandleButton(id)
	default:
		log.Debug("ignoring unknown button")
		return
	}

	if err != nil {
		log.Error("failed to render page", "error", err)
		if event.Respond != nil {
			if rerr := event.Respond(discord.Message{Content: MessageButtonFailed}, true); rerr != nil {
				log.Error("failed to respond to button", "error", rerr)
			}
		}
		return
	}
	if event.UpdateMessage == nil {
		return
	}
	if err := event.UpdateMessage(msg); err != nil {
		log.Error("failed to update message", "error", err)
	}
}

func (r *Router) handleCommand(ctx context.Context, event discord.InteractionEvent) {
	log := telemetry.LoggerWithCorr(ctx).With("command", event.CommandName, "user_id", event.Member.UserID)
	if event.Defer != nil {
		if err := event.Defer(false); err != nil {
			log.Error("failed to defer command", "error", err)
		}
	}
	telemetry.IncCommand(event.CommandName)

	msg, err := r.dispatch(ctx, event)
	if err != nil {
		log.Error("command failed", "error", err)
		msg = discord.Message{Content: MessageCommandFailed}
	}
	if event.EditResponse == nil {
		return
	}
	if err := event.EditResponse(msg); err != nil {
		log.Error("failed to edit command response", "error", err)
	}
}

func embedMessage(e discord.Embed) discord.Message {
	return discord.Message{Embeds: []discord.Embed{e}}
}

func (r *Router) dispatch(ctx context.Context, event discord.InteractionEvent) (discord.Message, error) {
	name := event.CommandName
	rookie := r.rookies != nil && r.rookies.IsRookie(event.Member)
	if rookie && name != CommandRookieQuestions && name != CommandHelp {
		return discord.Message{Content: MessageRookieRestricted}, nil
	}

	switch name {
	case CommandHelp:
		if rookie {
			return embedMessage(RookieHelpEmbed(r.now())), nil
		}
		return embedMessage(HelpEmbed(r.now())), nil
	case CommandLeaderboard:
		return r.points.LeaderboardPage(ctx, 1)
	case CommandMyPoints:
		return r.points.MyPoints(ctx, event.Member)
	case CommandTerminology:
		return r.term(r.terminology.Today)
	case CommandNext:
		return r.term(r.terminology.Next)
	case CommandPrev:
		return r.term(r.terminology.Previous)
	case CommandDailyQuestions:
		return r.questions.Today()
	case CommandRookieQuestions:
		return r.questions.Rookie()
	case CommandQuestion:
		n, err := strconv.Atoi(event.Options[OptionNumber])
		if err != nil || n < 1 || n > questions.MaxNumber {
			return discord.Message{Content: messageInvalidNumber}, nil
		}
		return r.questions.ByNumber(n)
	case CommandQD:
		return r.questions.DifficultyPage(event.Options[OptionDifficulty], 1)
	case CommandQuestions:
		page := 1
		if v, ok := event.Options[OptionPage]; ok {
			if p, err := strconv.Atoi(v); err == nil {
				page = p
			}
		}
		return r.questions.ListPage(page)
	case CommandGathering:
		return embedMessage(r.gatherings.Status(ctx)), nil
	case CommandEndMeeting:
		return discord.Message{Content: r.meetings.EndMeetingCommand(ctx, event.Member)}, nil
	case CommandRemind:
		reply := r.reminders.HandleCommand(event.Member.UserID, event.ChannelID, event.Options[OptionWhen], event.Options[OptionWhat])
		return discord.Message{Content: reply}, nil
	default:
		return discord.Message{Content: messageUnknownCommand}, nil
	}
}

func (r *Router) term(preview func() (discord.Embed, error)) (discord.Message, error) {
	e, err := preview()
	if errors.Is(err, terminology.ErrEmpty) {
		return discord.Message{Content: terminology.MessageNoTerminologies}, nil
	}
	if err != nil {
		return discord.Message{}, err
	}
	return embedMessage(e), nil
}
