package members

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belmonts/belix/internal/config"
	"github.com/belmonts/belix/internal/discord"
	"github.com/belmonts/belix/internal/discord/discordtest"
	"github.com/belmonts/belix/internal/repository"
	"github.com/belmonts/belix/internal/repository/repositorytest"
)

type memoryState struct {
	state SyncState
	saves int
}

func (m *memoryState) Load() (SyncState, error) { return m.state, nil }
func (m *memoryState) Save(s SyncState) error {
	m.state = s
	m.saves++
	return nil
}

type memoryRookies struct {
	data RookieData
}

func (m *memoryRookies) Load() (RookieData, error) { return m.data, nil }
func (m *memoryRookies) Save(d RookieData) error {
	m.data = d
	return nil
}

var fixedNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, dc *discordtest.Client) (*Service, *repositorytest.Memory, *memoryState) {
	t.Helper()
	repo := repositorytest.NewMemory()
	state := &memoryState{}
	s := NewService(&config.Config{DiscordGuildID: "g"}, repo, dc, state)
	s.now = func() time.Time { return fixedNow }
	return s, repo, state
}

func TestWelcomeChannelFallbacks(t *testing.T) {
	channels := []discord.Channel{
		{ID: "v", Name: "welcome", Type: discord.ChannelTypeVoice},
		{ID: "a", Name: "random", Type: discord.ChannelTypeText},
		{ID: "b", Name: "Introductions", Type: discord.ChannelTypeText},
		{ID: "sys", Name: "system", Type: discord.ChannelTypeText},
	}
	assert.Equal(t, "a", welcomeChannel(channels, "a", "sys").ID)
	assert.Equal(t, "b", welcomeChannel(channels, "", "sys").ID)
	assert.Equal(t, "sys", welcomeChannel(channels[3:], "", "sys").ID)
	assert.Equal(t, "a", welcomeChannel(channels[:2], "", "").ID)
	assert.Nil(t, welcomeChannel(channels[:1], "", ""))
}

func TestHandleMemberAddWelcomesAndTracks(t *testing.T) {
	dc := &discordtest.Client{
		Guild:    &discord.Guild{ID: "g", Name: "Belmonts", MemberCount: 87},
		Channels: []discord.Channel{{ID: "intro", Name: "introduction", Type: discord.ChannelTypeText}},
	}
	s, repo, _ := newService(t, dc)
	require.NoError(t, repo.InsertMember(t.Context(), repository.InsertMemberInput{MemberID: "BEL-7", Username: "alex", DiscordUsername: "alex"}))

	s.HandleMemberAdd(discord.MemberEvent{GuildID: "g", Member: discord.Member{UserID: "42", Username: "alex", Nick: "Alex"}})

	sent := dc.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "intro", sent[0].ChannelID)
	assert.Equal(t, "<@42>", sent[0].Message.Content)
	assert.Contains(t, sent[0].Message.Embeds[0].Description, "**Welcome Alex!**")
	assert.Contains(t, sent[0].Message.Embeds[0].Description, "You are member **#87**")

	activity := repo.Activity()
	require.Len(t, activity, 1)
	assert.Equal(t, ActivityJoin, activity[0].ActivityType)
	assert.Equal(t, "BEL-7", activity[0].MemberID)
	assert.Equal(t, "server-join", activity[0].ChannelName)
	assert.Equal(t, false, activity[0].Metadata["isNewMember"])
	assert.Equal(t, "Belmonts", activity[0].Metadata["guild"])
}

func TestHandleMemberAddSkipsBots(t *testing.T) {
	dc := &discordtest.Client{Channels: []discord.Channel{{ID: "intro", Name: "introduction", Type: discord.ChannelTypeText}}}
	s, repo, _ := newService(t, dc)
	s.HandleMemberAdd(discord.MemberEvent{Member: discord.Member{UserID: "b", Username: "bot", IsBot: true}})
	assert.Empty(t, dc.Sent())
	assert.Empty(t, repo.Activity())
}

func TestHandleMemberUpdateChangesRole(t *testing.T) {
	dc := &discordtest.Client{}
	s, repo, _ := newService(t, dc)
	require.NoError(t, repo.InsertMember(t.Context(), repository.InsertMemberInput{MemberID: "BEL-7", Username: "alex", DiscordUsername: "alex", Role: "Member"}))

	before := discord.Member{Username: "alex", Roles: []discord.Role{{ID: "r1", Name: "Rookies", Position: 1}}}
	after := discord.Member{Username: "alex", Roles: []discord.Role{{ID: "r1", Name: "Rookies", Position: 1}, {ID: "r2", Name: "Mentor", Position: 3}}}
	s.HandleMemberUpdate(discord.MemberUpdateEvent{Before: &before, After: after})

	m, err := repo.GetMember(t.Context(), "BEL-7")
	require.NoError(t, err)
	assert.Equal(t, "Mentor", m.Role)
	activity := repo.Activity()
	require.Len(t, activity, 1)
	assert.Equal(t, ActivityProfileUpdate, activity[0].ActivityType)
	assert.Equal(t, []string{"Rookies", "Mentor"}, activity[0].Metadata["roles"])
}

func TestHandleMemberUpdateKeepsRoleWhenHighestUnchanged(t *testing.T) {
	dc := &discordtest.Client{}
	s, repo, _ := newService(t, dc)
	require.NoError(t, repo.InsertMember(t.Context(), repository.InsertMemberInput{MemberID: "BEL-7", Username: "alex", DiscordUsername: "alex", Role: "Custom"}))

	m := discord.Member{Username: "alex", Nick: "Al", Roles: []discord.Role{{ID: "r2", Name: "Mentor", Position: 3}}}
	s.HandleMemberUpdate(discord.MemberUpdateEvent{Before: &m, After: m})

	got, err := repo.GetMember(t.Context(), "BEL-7")
	require.NoError(t, err)
	assert.Equal(t, "Custom", got.Role)
	assert.Len(t, repo.Activity(), 1)
}

func TestMonthlySyncRunsOncePerMonth(t *testing.T) {
	dc := &discordtest.Client{Members: []discord.Member{
		{UserID: "1", Username: "alex"},
		{UserID: "2", Username: "sam"},
		{UserID: "3", Username: "belix", IsBot: true},
	}}
	s, repo, state := newService(t, dc)

	ran, err := s.MonthlySync(t.Context())
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Len(t, repo.Activity(), 2)
	require.NotNil(t, state.state.LastMonthlySync)

	s.now = func() time.Time { return fixedNow.AddDate(0, 0, 10) }
	ran, err = s.MonthlySync(t.Context())
	require.NoError(t, err)
	assert.False(t, ran)

	s.now = func() time.Time { return fixedNow.AddDate(0, 1, 0) }
	ran, err = s.MonthlySync(t.Context())
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 2, state.saves)
}

func TestEnsureChessChannel(t *testing.T) {
	dc := &discordtest.Client{}
	s, _, _ := newService(t, dc)

	ch, err := s.EnsureChessChannel()
	require.NoError(t, err)
	assert.Equal(t, ChessChannelName, ch.Name)

	_, err = s.EnsureChessChannel()
	require.NoError(t, err)
	assert.Len(t, dc.CreatedChannels(), 1)
}

func TestRookieRosterAndChecker(t *testing.T) {
	joined := time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC)
	guild := []discord.Member{
		{UserID: "1", Username: "alex", Roles: []discord.Role{{Name: "Rookies"}}, JoinedAt: joined},
		{UserID: "2", Username: "sam", Roles: []discord.Role{{Name: "Mentor"}}},
		{UserID: "3", Username: "bot", IsBot: true, Roles: []discord.Role{{Name: "rookies"}}},
	}
	data := RookieRoster(guild, " Rookies ", "g", fixedNow)
	require.Len(t, data.Rookies, 1)
	assert.Equal(t, "rookies", data.RoleName)
	assert.Equal(t, 1, data.TotalRookies)
	require.NotNil(t, data.Rookies[0].JoinedAt)
	assert.Equal(t, "2025-01-02T03:04:05Z", *data.Rookies[0].JoinedAt)

	store := &memoryRookies{data: RookieData{Rookies: []Rookie{{UserID: "9", Username: "Kim"}}}}
	checker := NewRookieChecker(&config.Config{RookieRoleName: "rookies"}, store)
	assert.True(t, checker.IsRookie(guild[0]))
	assert.False(t, checker.IsRookie(guild[1]))
	assert.True(t, checker.IsRookie(discord.Member{UserID: "9"}))
	assert.True(t, checker.IsRookie(discord.Member{UserID: "x", Username: "kim"}))
}

func TestExportRookies(t *testing.T) {
	dc := &discordtest.Client{Members: []discord.Member{{UserID: "1", Username: "alex", Roles: []discord.Role{{Name: "rookies"}}}}}
	store := &memoryRookies{}
	n, err := ExportRookies(&config.Config{DiscordGuildID: "g", RookieRoleName: "rookies"}, dc, store, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "g", store.data.GuildID)
}

func TestImportMembers(t *testing.T) {
	records, err := ParseImport([]byte(`[
		{"member_id": 12, "name": "Alex", "discord_username": "alex", "date_of_birth": "2001-03-10", "belmonts_points": 40},
		{"member_id": "BEL-2", "name": "Sam"},
		{"name": "Nobody"},
		{"member_id": 3, "name": "Kim", "date_of_birth": "not a date"}
	]`))
	require.NoError(t, err)
	require.Len(t, records, 4)

	repo := repositorytest.NewMemory()
	res := ImportMembers(t.Context(), repo, records)
	assert.Equal(t, ImportResult{Inserted: 2, Failed: 2}, res)

	alex, err := repo.GetMember(t.Context(), "12")
	require.NoError(t, err)
	require.NotNil(t, alex)
	assert.Equal(t, "alex", alex.Username)
	assert.Equal(t, "Alex", alex.DisplayName)
	assert.Equal(t, 40, alex.BelmontsPoints)
	require.NotNil(t, alex.Birthday)
	assert.Equal(t, time.March, alex.Birthday.Month())

	sam, err := repo.GetMember(t.Context(), "BEL-2")
	require.NoError(t, err)
	assert.Equal(t, "Sam", sam.Username)
}
