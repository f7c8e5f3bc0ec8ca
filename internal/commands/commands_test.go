package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belmonts/belix/internal/config"
	"github.com/belmonts/belix/internal/discord"
	"github.com/belmonts/belix/internal/discord/discordtest"
	"github.com/belmonts/belix/internal/terminology"
)

type fakePoints struct {
	pages   []int
	buttons []string
	err     error
}

func (f *fakePoints) LeaderboardPage(_ context.Context, page int) (discord.Message, error) {
	f.pages = append(f.pages, page)
	return discord.Message{Content: fmt.Sprintf("leaderboard %d", page)}, f.err
}

func (f *fakePoints) MyPoints(_ context.Context, m discord.Member) (discord.Message, error) {
	return discord.Message{Content: "points of " + m.Username}, f.err
}

func (f *fakePoints) HandleButton(_ context.Context, customID string) (discord.Message, error) {
	f.buttons = append(f.buttons, customID)
	return discord.Message{Content: "page " + customID}, f.err
}

type fakeQuestions struct {
	numbers []int
	lists   []int
	filters []string
}

func (f *fakeQuestions) Today() (discord.Message, error) { return discord.Message{Content: "today"}, nil }

func (f *fakeQuestions) Rookie() (discord.Message, error) {
	return discord.Message{Content: "rookie"}, nil
}

func (f *fakeQuestions) ByNumber(n int) (discord.Message, error) {
	f.numbers = append(f.numbers, n)
	return discord.Message{Content: fmt.Sprintf("question %d", n)}, nil
}

func (f *fakeQuestions) ListPage(page int) (discord.Message, error) {
	f.lists = append(f.lists, page)
	return discord.Message{Content: fmt.Sprintf("list %d", page)}, nil
}

func (f *fakeQuestions) DifficultyPage(d string, page int) (discord.Message, error) {
	f.filters = append(f.filters, fmt.Sprintf("%s/%d", d, page))
	return discord.Message{Content: d}, nil
}

func (f *fakeQuestions) HandleButton(customID string) (discord.Message, error) {
	return discord.Message{Content: "questions " + customID}, nil
}

type fakeTerms struct{ err error }

func (f fakeTerms) Today() (discord.Embed, error)    { return discord.Embed{Title: "today"}, f.err }
func (f fakeTerms) Next() (discord.Embed, error)     { return discord.Embed{Title: "next"}, f.err }
func (f fakeTerms) Previous() (discord.Embed, error) { return discord.Embed{Title: "prev"}, f.err }

type fakeMeetings struct {
	buttons []string
	modals  []string
}

func (f *fakeMeetings) HandlesButton(id string) bool { return strings.HasPrefix(id, "meeting_time_") }
func (f *fakeMeetings) HandlesModal(id string) bool  { return id == "meeting_time_modal" }

func (f *fakeMeetings) HandleButton(_ context.Context, ev discord.InteractionEvent) {
	f.buttons = append(f.buttons, ev.CustomID)
}

func (f *fakeMeetings) HandleModal(_ context.Context, ev discord.InteractionEvent) {
	f.modals = append(f.modals, ev.ModalValues["meeting_time_input"])
}

func (f *fakeMeetings) EndMeetingCommand(_ context.Context, m discord.Member) string {
	return "ended by " + m.Username
}

type fakeGatherings struct{ buttons []string }

func (f *fakeGatherings) HandlesButton(id string) bool { return strings.HasPrefix(id, "gather_") }

func (f *fakeGatherings) HandleButton(_ context.Context, ev discord.InteractionEvent) {
	f.buttons = append(f.buttons, ev.CustomID)
}

func (f *fakeGatherings) Status(context.Context) discord.Embed {
	return discord.Embed{Title: "status"}
}

type fakeReminders struct{ calls []string }

func (f *fakeReminders) HandleCommand(userID, channelID, when, what string) string {
	f.calls = append(f.calls, strings.Join([]string{userID, channelID, when, what}, "|"))
	return "reminder set"
}

type rookieSet map[string]bool

func (r rookieSet) IsRookie(m discord.Member) bool { return r[m.UserID] }

type fixture struct {
	router     *Router
	dc         *discordtest.Client
	points     *fakePoints
	questions  *fakeQuestions
	meetings   *fakeMeetings
	gatherings *fakeGatherings
	reminders  *fakeReminders
}

var (
	alex   = discord.Member{UserID: "1", Username: "alex"}
	rookie = discord.Member{UserID: "2", Username: "newbie"}
	now    = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		dc:         &discordtest.Client{},
		points:     &fakePoints{},
		questions:  &fakeQuestions{},
		meetings:   &fakeMeetings{},
		gatherings: &fakeGatherings{},
		reminders:  &fakeReminders{},
	}
	f.router = NewRouter(&config.Config{DiscordGuildID: "g", Timezone: "UTC"}, f.dc, Services{
		Points:      f.points,
		Questions:   f.questions,
		Terminology: fakeTerms{},
		Meetings:    f.meetings,
		Gatherings:  f.gatherings,
		Reminders:   f.reminders,
		Rookies:     rookieSet{rookie.UserID: true},
	})
	f.router.now = func() time.Time { return now }
	return f
}

func command(name string, member discord.Member, options map[string]string) (discord.InteractionEvent, *discordtest.Interaction) {
	rec := &discordtest.Interaction{}
	ev := discord.InteractionEvent{
		Kind:        discord.InteractionCommand,
		GuildID:     "g",
		ChannelID:   "c",
		Member:      member,
		CommandName: name,
		Options:     options,
	}
	rec.Bind(&ev)
	return ev, rec
}

func TestDefinitions(t *testing.T) {
	defs := Definitions()
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
		assert.NotEmpty(t, d.Description, d.Name)
	}
	assert.Equal(t, []string{
		"help", "leaderboard", "mypoints", "terminology", "next", "prev",
		"dailyquestions", "rookiequestions", "question", "qd", "questions",
		"gathering", "endmeeting", "remind",
	}, names)

	question := defs[8]
	require.Len(t, question.Options, 1)
	opt := question.Options[0]
	assert.Equal(t, discord.OptionInteger, opt.Type)
	assert.True(t, opt.Required)
	require.NotNil(t, opt.MinValue)
	assert.InDelta(t, 1, *opt.MinValue, 0)
	assert.InDelta(t, 129, opt.MaxValue, 0)

	assert.Equal(t, []string{"Easy", "Medium"}, defs[9].Options[0].Choices)
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	f.router.HandleReady(discord.ReadyEvent{})
	assert.Len(t, f.dc.Commands(), len(Definitions()))
}

func TestCommandsAreDeferredThenEdited(t *testing.T) {
	tests := []struct {
		name    string
		options map[string]string
		want    string
	}{
		{name: CommandLeaderboard, want: "leaderboard 1"},
		{name: CommandMyPoints, want: "points of alex"},
		{name: CommandDailyQuestions, want: "today"},
		{name: CommandRookieQuestions, want: "rookie"},
		{name: CommandQuestion, options: map[string]string{OptionNumber: "42"}, want: "question 42"},
		{name: CommandQuestion, options: map[string]string{OptionNumber: "130"}, want: messageInvalidNumber},
		{name: CommandQD, options: map[string]string{OptionDifficulty: "Medium"}, want: "Medium"},
		{name: CommandQuestions, want: "list 1"},
		{name: CommandQuestions, options: map[string]string{OptionPage: "3"}, want: "list 3"},
		{name: CommandEndMeeting, want: "ended by alex"},
		{name: CommandRemind, options: map[string]string{OptionWhen: "in 5 minutes", OptionWhat: "stretch"}, want: "reminder set"},
		{name: "nope", want: messageUnknownCommand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ev, rec := command(tt.name, alex, tt.options)
			f.router.HandleInteraction(ev)

			assert.True(t, rec.Deferred)
			require.Len(t, rec.Edits, 1)
			assert.Equal(t, tt.want, rec.Edits[0].Content)
		})
	}
}

func TestRemindPassesOptions(t *testing.T) {
	f := newFixture(t)
	ev, _ := command(CommandRemind, alex, map[string]string{OptionWhen: "tomorrow at 9am", OptionWhat: "standup"})
	f.router.HandleInteraction(ev)
	assert.Equal(t, []string{"1|c|tomorrow at 9am|standup"}, f.reminders.calls)
}

func TestEmbedCommands(t *testing.T) {
	tests := map[string]string{
		CommandHelp:        "🤖 Bot Commands",
		CommandTerminology: "today",
		CommandNext:        "next",
		CommandPrev:        "prev",
		CommandGathering:   "status",
	}
	for name, title := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			ev, rec := command(name, alex, nil)
			f.router.HandleInteraction(ev)
			require.Len(t, rec.Edits, 1)
			require.Len(t, rec.Edits[0].Embeds, 1)
			assert.Equal(t, title, rec.Edits[0].Embeds[0].Title)
		})
	}
}

func TestTerminologyEmpty(t *testing.T) {
	f := newFixture(t)
	f.router.terminology = fakeTerms{err: terminology.ErrEmpty}
	ev, rec := command(CommandTerminology, alex, nil)
	f.router.HandleInteraction(ev)
	require.Len(t, rec.Edits, 1)
	assert.Equal(t, terminology.MessageNoTerminologies, rec.Edits[0].Content)
}

func TestCommandErrorIsReported(t *testing.T) {
	f := newFixture(t)
	f.points.err = errors.New("db down")
	ev, rec := command(CommandLeaderboard, alex, nil)
	f.router.HandleInteraction(ev)
	require.Len(t, rec.Edits, 1)
	assert.Equal(t, MessageCommandFailed, rec.Edits[0].Content)
}

func TestRookieRestrictions(t *testing.T) {
	f := newFixture(t)

	ev, rec := command(CommandLeaderboard, rookie, nil)
	f.router.HandleInteraction(ev)
	require.Len(t, rec.Edits, 1)
	assert.Equal(t, MessageRookieRestricted, rec.Edits[0].Content)
	assert.Empty(t, f.points.pages)

	ev, rec = command(CommandHelp, rookie, nil)
	f.router.HandleInteraction(ev)
	require.Len(t, rec.Edits[0].Embeds, 1)
	assert.Equal(t, "🎯 Rookie Commands", rec.Edits[0].Embeds[0].Title)

	ev, rec = command(CommandRookieQuestions, rookie, nil)
	f.router.HandleInteraction(ev)
	assert.Equal(t, "rookie", rec.Edits[0].Content)
}

func button(id string) (discord.InteractionEvent, *discordtest.Interaction) {
	rec := &discordtest.Interaction{}
	ev := discord.InteractionEvent{Kind: discord.InteractionButton, CustomID: id, Member: alex}
	rec.Bind(&ev)
	return ev, rec
}

func TestPaginationButtonsUpdateMessage(t *testing.T) {
	f := newFixture(t)

	ev, rec := button("leaderboard_next_2")
	f.router.HandleInteraction(ev)
	require.Len(t, rec.Updates, 1)
	assert.Equal(t, "page leaderboard_next_2", rec.Updates[0].Content)
	assert.False(t, rec.Deferred)

	ev, rec = button("qd_back_Easy_1")
	f.router.HandleInteraction(ev)
	require.Len(t, rec.Updates, 1)
	assert.Equal(t, "questions qd_back_Easy_1", rec.Updates[0].Content)

	ev, rec = button("questions_next_2")
	f.router.HandleInteraction(ev)
	require.Len(t, rec.Updates, 1)
}

func TestPaginationButtonError(t *testing.T) {
	f := newFixture(t)
	f.points.err = errors.New("db down")
	ev, rec := button("leaderboard_back_1")
	f.router.HandleInteraction(ev)
	assert.Empty(t, rec.Updates)
	require.Len(t, rec.Responses, 1)
	assert.Equal(t, MessageButtonFailed, rec.Responses[0].Content)
	assert.True(t, rec.Ephemeral[0])
}

func TestMeetingAndGatheringRouting(t *testing.T) {
	f := newFixture(t)

	ev, _ := button("meeting_time_19:30")
	f.router.HandleInteraction(ev)
	ev, _ = button("gather_confirm")
	f.router.HandleInteraction(ev)
	ev, rec := button("unknown")
	f.router.HandleInteraction(ev)

	modal := discord.InteractionEvent{
		Kind:        discord.InteractionModalSubmit,
		CustomID:    "meeting_time_modal",
		ModalValues: map[string]string{"meeting_time_input": "8pm"},
	}
	f.router.HandleInteraction(modal)

	assert.Equal(t, []string{"meeting_time_19:30"}, f.meetings.buttons)
	assert.Equal(t, []string{"gather_confirm"}, f.gatherings.buttons)
	assert.Equal(t, []string{"8pm"}, f.meetings.modals)
	assert.Empty(t, rec.Responses)
	assert.Empty(t, rec.Updates)
}

func TestTextHelp(t *testing.T) {
	f := newFixture(t)
	var replies []discord.Message
	reply := func(m discord.Message) error {
		replies = append(replies, m)
		return nil
	}

	f.router.HandleMessage(discord.MessageEvent{Author: alex, Content: "  /HELP ", Reply: reply})
	f.router.HandleMessage(discord.MessageEvent{Author: alex, Content: "/help me", Reply: reply})
	f.router.HandleMessage(discord.MessageEvent{Author: discord.Member{IsBot: true}, Content: "/help", Reply: reply})

	require.Len(t, replies, 1)
	assert.Equal(t, "🤖 Bot Commands", replies[0].Embeds[0].Title)
}
