package points

import (
	"errors"
	"fmt"
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

func newTestService(repo repository.Repository, now *time.Time) *Service {
	cfg := &config.Config{Timezone: "UTC", ProgressPoints: 5, ReactionPoints: 1}
	s := NewService(cfg, repo, &discordtest.Client{})
	s.now = func() time.Time { return *now }
	return s
}

func progressMessage(user string, replies *[]string) discord.MessageEvent {
	return discord.MessageEvent{
		ChannelID:   "progress-1",
		ChannelName: "blitz-daily-progress",
		Author:      discord.Member{UserID: user, Username: user, Roles: []discord.Role{{ID: "r", Name: "Basher", Position: 2}}},
		Content:     "shipped the login page",
		Reply: func(msg discord.Message) error {
			*replies = append(*replies, msg.Content)
			return nil
		},
	}
}

func TestProgressAwardedOncePerDay(t *testing.T) {
	repo := repositorytest.NewMemory()
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	s := newTestService(repo, &now)
	var replies []string

	s.HandleMessage(progressMessage("alex", &replies))
	s.HandleMessage(progressMessage("alex", &replies))
	now = now.Add(24 * time.Hour)
	s.HandleMessage(progressMessage("alex", &replies))

	require.Len(t, replies, 3)
	assert.Equal(t, "✅ **Daily Progress Recorded!**\nYou earned **+5 points**!\nTotal Points: **5**", replies[0])
	assert.Equal(t, messageAlreadyPosted, replies[1])
	assert.Contains(t, replies[2], "Total Points: **10**")

	member, err := repo.GetMember(t.Context(), "alex")
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.Equal(t, "Basher", member.Role)
}

func TestProgressRetryAfterFailedGrant(t *testing.T) {
	repo := repositorytest.NewMemory()
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	s := newTestService(repo, &now)
	var replies []string

	repo.GrantErr = errors.New("connection reset")
	s.HandleMessage(progressMessage("alex", &replies))
	assert.Empty(t, replies)

	repo.GrantErr = nil
	s.HandleMessage(progressMessage("alex", &replies))
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "Total Points: **5**")
}

func TestProgressIgnoresOtherChannelsAndBots(t *testing.T) {
	repo := repositorytest.NewMemory()
	now := time.Now()
	s := newTestService(repo, &now)
	var replies []string

	ev := progressMessage("alex", &replies)
	ev.ChannelName = "general"
	s.HandleMessage(ev)

	bot := progressMessage("bot", &replies)
	bot.Author.IsBot = true
	s.HandleMessage(bot)

	assert.Empty(t, replies)
	p, err := repo.GetPoints(t.Context(), "alex")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestIsProgressChannel(t *testing.T) {
	assert.True(t, IsProgressChannel("📈Blitz-Daily-Progress"))
	assert.True(t, IsProgressChannel("daily-standup"))
	assert.False(t, IsProgressChannel("general"))
}

func TestReactionPointsDedupe(t *testing.T) {
	repo := repositorytest.NewMemory()
	now := time.Now()
	s := newTestService(repo, &now)

	react := discord.ReactionEvent{MessageID: "m1", UserID: "u1", Emoji: "🔥", Added: true}
	s.HandleReaction(react)
	s.HandleReaction(react)

	other := react
	other.Emoji = "👍"
	s.HandleReaction(other)

	p, err := repo.GetPoints(t.Context(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Points)

	removed := react
	removed.Added = false
	s.HandleReaction(removed)
	s.HandleReaction(react)

	p, err = repo.GetPoints(t.Context(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Points)

	s.HandleReaction(discord.ReactionEvent{MessageID: "m1", UserID: "bot", UserIsBot: true, Emoji: "🔥", Added: true})
	p, err = repo.GetPoints(t.Context(), "bot")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSortLeaderboardStable(t *testing.T) {
	entries := []repository.LeaderboardEntry{
		{MemberID: "a", Points: 5},
		{MemberID: "b", Points: 9},
		{MemberID: "c", Points: 5},
		{MemberID: "d", Points: 9},
	}
	SortLeaderboard(entries)
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.MemberID)
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids)
}

func TestLeaderboardPagination(t *testing.T) {
	entries := make([]repository.LeaderboardEntry, 0, 23)
	for i := range 23 {
		entries = append(entries, repository.LeaderboardEntry{MemberID: fmt.Sprintf("m%02d", i), Username: fmt.Sprintf("user%d", i), Points: 100 - i})
	}
	now := time.Now()

	first := LeaderboardMessage(entries, 1, now)
	assert.Contains(t, first.Embeds[0].Description, "🥇 **1. user0** - 100 points")
	assert.Contains(t, first.Embeds[0].Description, "🥉 **3. user2** - 98 points")
	assert.Contains(t, first.Embeds[0].Description, "📍 **4. user3** - 97 points")
	buttons := first.Components[0].Buttons
	require.Len(t, buttons, 2)
	assert.Equal(t, "leaderboard_next_2", buttons[1].CustomID)

	last := LeaderboardMessage(entries, 9, now)
	assert.Contains(t, last.Embeds[0].Description, "📍 **21. user20** - 80 points")
	assert.Equal(t, "leaderboard_back_2", last.Components[0].Buttons[0].CustomID)
	assert.Equal(t, "Page 3/3", last.Components[0].Buttons[1].Label)

	empty := LeaderboardMessage(nil, 1, now)
	assert.Equal(t, messageNoPoints, empty.Content)
}

func TestHandleButtonAndTextCommands(t *testing.T) {
	repo := repositorytest.NewMemory()
	now := time.Now()
	s := newTestService(repo, &now)
	var replies []string
	var embeds []discord.Embed
	ev := discord.MessageEvent{
		Author:  discord.Member{UserID: "u1", Username: "alex"},
		Content: "!points",
		Reply: func(msg discord.Message) error {
			replies = append(replies, msg.Content)
			embeds = append(embeds, msg.Embeds...)
			return nil
		},
	}

	s.HandleMessage(ev)
	ev.Content = "!mypoints"
	s.HandleMessage(ev)
	assert.Equal(t, []string{messageNoPoints, messageNoPersonalScore}, replies)

	_, err := repo.AddPoints(t.Context(), "u1", 7)
	require.NoError(t, err)
	ev.Content = "!LEADERBOARD"
	s.HandleMessage(ev)
	ev.Content = "!mypoints"
	s.HandleMessage(ev)
	require.Len(t, embeds, 2)
	assert.Equal(t, "🏆 Leaderboard", embeds[0].Title)
	assert.Equal(t, "Use !mypoints to check your personal points", embeds[0].Footer)
	assert.Equal(t, "📊 Your Points", embeds[1].Title)
	assert.Equal(t, "7", embeds[1].Fields[1].Value)

	msg, err := s.HandleButton(t.Context(), "leaderboard_next_2")
	require.NoError(t, err)
	assert.Equal(t, "🏆 Leaderboard", msg.Embeds[0].Title)
	_, err = s.HandleButton(t.Context(), "leaderboard_page")
	assert.Error(t, err)
}

func TestMyPointsLookup(t *testing.T) {
	repo := repositorytest.NewMemory()
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	s := newTestService(repo, &now)

	msg, err := s.MyPoints(t.Context(), discord.Member{UserID: "u9", Username: "ghost", Nick: "Ghost"})
	require.NoError(t, err)
	assert.Equal(t, "❌ Member Not Found", msg.Embeds[0].Title)
	assert.Contains(t, msg.Embeds[0].Description, "Sorry Ghost")

	require.NoError(t, repo.InsertMember(t.Context(), repository.InsertMemberInput{MemberID: "BEL-1", Username: "ghost", DisplayName: "Ghost Writer"}))
	require.NoError(t, repo.SetPoints(t.Context(), "BEL-1", 42))

	msg, err = s.MyPoints(t.Context(), discord.Member{UserID: "u9", Username: "ghost"})
	require.NoError(t, err)
	assert.Equal(t, "Ghost Writer", msg.Embeds[0].Fields[0].Value)
	assert.Equal(t, "42", msg.Embeds[0].Fields[1].Value)
}
