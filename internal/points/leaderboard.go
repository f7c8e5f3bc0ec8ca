package points

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/belmonts/belix/internal/discord"
	"github.com/belmonts/belix/internal/repository"
)

const (
	LeaderboardPageSize = 10
	leaderboardFetch    = 100

	leaderboardColor = 0x0099ff
	myPointsColor    = 0x00ff00
	notFoundColor    = 0xff0000

	messageNoPoints        = "📊 No points have been awarded yet!"
	messageNoPersonalScore = "📊 You don't have any points yet! Post in #blitz-daily-progress to earn points."
	lastUpdateLayout       = "Jan 2, 2006, 3:04 PM"
)

// SortLeaderboard orders entries by points, highest first, keeping the
// incoming order for ties.
func SortLeaderboard(entries []repository.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return "📍"
	}
}

func leaderboardLines(entries []repository.LeaderboardEntry, offset int) string {
	var b strings.Builder
	for i, e := range entries {
		rank := offset + i + 1
		fmt.Fprintf(&b, "%s **%d. %s** - %d points\n", medal(rank), rank, e.Name(), e.Points)
	}
	return b.String()
}

func pageCount(n int) int {
	return max((n+LeaderboardPageSize-1)/LeaderboardPageSize, 1)
}

// LeaderboardMessage renders one page of the sorted entries with navigation.
func LeaderboardMessage(entries []repository.LeaderboardEntry, page int, now time.Time) discord.Message {
	if len(entries) == 0 {
		return discord.Message{Content: messageNoPoints}
	}
	total := pageCount(len(entries))
	page = min(max(page, 1), total)
	start := (page - 1) * LeaderboardPageSize
	end := min(start+LeaderboardPageSize, len(entries))

	embed := discord.Embed{
		Title:       "🏆 Leaderboard",
		Description: leaderboardLines(entries[start:end], start),
		Color:       leaderboardColor,
		Footer:      fmt.Sprintf("Page %d/%d • Use /mypoints to check your personal points", page, total),
		Timestamp:   now,
	}

	var row discord.ActionRow
	if page > 1 {
		row.Buttons = append(row.Buttons, discord.Button{CustomID: fmt.Sprintf("leaderboard_back_%d", page-1), Label: "⬅️ Previous", Style: discord.ButtonPrimary})
	}
	row.Buttons = append(row.Buttons, discord.Button{CustomID: "leaderboard_page", Label: fmt.Sprintf("Page %d/%d", page, total), Style: discord.ButtonSecondary, Disabled: true})
	if page < total {
		row.Buttons = append(row.Buttons, discord.Button{CustomID: fmt.Sprintf("leaderboard_next_%d", page+1), Label: "Next ➡️", Style: discord.ButtonPrimary})
	}
	return discord.Message{Embeds: []discord.Embed{embed}, Components: []discord.ActionRow{row}}
}

// TopTenEmbed is the reply to the !points and !leaderboard text commands.
func TopTenEmbed(entries []repository.LeaderboardEntry, now time.Time) discord.Embed {
	top := entries[:min(len(entries), LeaderboardPageSize)]
	return discord.Embed{
		Title:       "🏆 Leaderboard",
		Description: leaderboardLines(top, 0),
		Color:       leaderboardColor,
		Footer:      "Use !mypoints to check your personal points",
		Timestamp:   now,
	}
}

func MyPointsEmbed(name string, p repository.Points, loc *time.Location, now time.Time) discord.Embed {
	return discord.Embed{
		Title: "📊 Your Points",
		Color: myPointsColor,
		Fields: []discord.EmbedField{
			{Name: "Username", Value: name, Inline: true},
			{Name: "Total Points", Value: fmt.Sprintf("%d", p.Points), Inline: true},
			{Name: "Last Update", Value: p.LastUpdate.In(loc).Format(lastUpdateLayout)},
		},
		Timestamp: now,
	}
}

func NotFoundEmbed(displayName string, now time.Time) discord.Embed {
	return discord.Embed{
		Title:       "❌ Member Not Found",
		Description: fmt.Sprintf("Sorry %s, you are not found in the members database. Please contact an admin to add you.", displayName),
		Color:       notFoundColor,
		Timestamp:   now,
	}
}
