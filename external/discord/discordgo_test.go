package discord

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	discordpkg "github.com/belmonts/belix/internal/discord"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestSession(t *testing.T, rt roundTripFunc) *discordgo.Session {
	t.Helper()
	s, err := discordgo.New("Bot test-token")
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if rt != nil {
		s.Client = &http.Client{Transport: rt}
	}
	return s
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestGetGuildMember_UsesStateCacheFirst(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected REST call: %s %s", req.Method, req.URL.String())
		return nil, nil
	})
	if err := s.State.GuildAdd(&discordgo.Guild{
		ID:    "guild-1",
		Roles: []*discordgo.Role{{ID: "role-1", Name: "Rookies", Position: 2}},
		Members: []*discordgo.Member{
			{GuildID: "guild-1", Nick: "Geo", Roles: []string{"role-1"}, User: &discordgo.User{ID: "user-1", Username: "geonithin"}},
		},
	}); err != nil {
		t.Fatalf("failed to add guild to state: %v", err)
	}

	c := newClientWithSession(s, "test-token")
	member, err := c.GetGuildMember("guild-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if member == nil || member.Username != "geonithin" || member.DisplayName() != "Geo" {
		t.Fatalf("unexpected member: %+v", member)
	}
	if !member.HasRoleNamed("rookies") {
		t.Fatalf("expected resolved role names, got %+v", member.Roles)
	}
}

func TestGetGuildMember_ReturnsNilOnRESTNotFound(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, `{"message":"Unknown Member","code":10007}`), nil
	})

	c := newClientWithSession(s, "test-token")
	member, err := c.GetGuildMember("guild-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if member != nil {
		t.Fatalf("expected nil member, got %+v", member)
	}
}

func TestListGuildChannels_FallsBackToREST(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		if !strings.HasSuffix(req.URL.Path, "/guilds/guild-1/channels") {
			t.Fatalf("unexpected request path: %s", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, `[{"id":"c1","name":"common-hall","type":0},{"id":"c2","name":"Common Hall","type":2},{"id":"c3","name":"category","type":4}]`), nil
	})

	c := newClientWithSession(s, "test-token")
	channels, err := c.ListGuildChannels("guild-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(channels) != 3 {
		t.Fatalf("expected 3 channels, got %d", len(channels))
	}
	if channels[0].Type != discordpkg.ChannelTypeText || channels[1].Type != discordpkg.ChannelTypeVoice || channels[2].Type != discordpkg.ChannelTypeOther {
		t.Fatalf("unexpected channel types: %+v", channels)
	}
}

func TestListGuildMembers_CachesResult(t *testing.T) {
	calls := 0
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		calls++
		if strings.HasSuffix(req.URL.Path, "/roles") {
			return jsonResponse(http.StatusOK, `[]`), nil
		}
		return jsonResponse(http.StatusOK, `[{"user":{"id":"u1","username":"one"},"roles":[]},{"user":{"id":"u2","username":"two","bot":true},"roles":[]}]`), nil
	})

	c := newClientWithSession(s, "test-token")
	members, err := c.ListGuildMembers("guild-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(members) != 2 || !members[1].IsBot {
		t.Fatalf("unexpected members: %+v", members)
	}
	before := calls
	if _, err := c.ListGuildMembers("guild-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != before {
		t.Fatalf("expected cached member list, got %d extra calls", calls-before)
	}
}

func TestListVoiceChannelParticipants_FiltersChannel(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected REST call: %s %s", req.Method, req.URL.String())
		return nil, nil
	})
	if err := s.State.GuildAdd(&discordgo.Guild{
		ID: "guild-1",
		VoiceStates: []*discordgo.VoiceState{
			{GuildID: "guild-1", ChannelID: "vc-1", UserID: "user-1", Member: &discordgo.Member{User: &discordgo.User{ID: "user-1"}}},
			{GuildID: "guild-1", ChannelID: "vc-2", UserID: "user-2", Member: &discordgo.Member{User: &discordgo.User{ID: "user-2"}}},
			{GuildID: "guild-1", ChannelID: "vc-1", UserID: "bot-1", Member: &discordgo.Member{User: &discordgo.User{ID: "bot-1", Bot: true}}},
		},
	}); err != nil {
		t.Fatalf("failed to add guild to state: %v", err)
	}

	c := newClientWithSession(s, "test-token")
	participants, err := c.ListVoiceChannelParticipants("guild-1", "vc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(participants) != 2 {
		t.Fatalf("expected 2 participants, got %+v", participants)
	}
	if participants[0].UserID != "user-1" || participants[1].IsBot != true {
		t.Fatalf("unexpected participants: %+v", participants)
	}
}

func TestToApplicationCommand_IntegerOption(t *testing.T) {
	minValue := 1.0
	cmd := toApplicationCommand(discordpkg.SlashCommandDefinition{
		Name:        "question",
		Description: "Get a question",
		Options: []discordpkg.SlashCommandOption{
			{Name: "number", Description: "Question number", Type: discordpkg.OptionInteger, Required: true, MinValue: &minValue, MaxValue: 129},
		},
	})
	if len(cmd.Options) != 1 {
		t.Fatalf("expected one option, got %d", len(cmd.Options))
	}
	opt := cmd.Options[0]
	if opt.Type != discordgo.ApplicationCommandOptionInteger || !opt.Required || opt.MaxValue != 129 || *opt.MinValue != 1 {
		t.Fatalf("unexpected option: %+v", opt)
	}
}

func TestModalValues(t *testing.T) {
	values := modalValues([]discordgo.MessageComponent{
		&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.TextInput{CustomID: "meeting_time_input", Value: "7:45 pm"},
		}},
	})
	if values["meeting_time_input"] != "7:45 pm" {
		t.Fatalf("unexpected modal values: %+v", values)
	}
}
