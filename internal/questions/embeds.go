package questions

import (
	"fmt"
	"time"

	"github.com/belmonts/belix/internal/discord"
)

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func DetailEmbed(q Question, now time.Time) discord.Embed {
	e := discord.Embed{
		Title: "📝 " + q.Question,
		Color: detailColor,
		Fields: []discord.EmbedField{
			{Name: "📥 Input", Value: "```\n" + orDash(string(q.Input)) + "\n```"},
			{Name: "📤 Output", Value: "```\n" + orDash(string(q.Output)) + "\n```"},
			{Name: "💡 Explanation", Value: orDash(q.Explain)},
		},
		Timestamp: now,
	}
	if q.Difficulty != "" {
		e.Fields = append(e.Fields, discord.EmbedField{Name: "⭐ Difficulty", Value: q.Difficulty, Inline: true})
	}
	if q.Formula != "" {
		e.Fields = append(e.Fields, discord.EmbedField{Name: "📐 Formula", Value: q.Formula})
	}
	if q.Method != "" {
		e.Fields = append(e.Fields,
			discord.EmbedField{Name: "🔧 Method", Value: q.Method, Inline: true},
			discord.EmbedField{Name: "📞 Main Call", Value: orDash(q.MainCall), Inline: true},
		)
	}
	return e
}

// DailyEmbed is the scheduled challenge post.
func DailyEmbed(q Question, now time.Time) discord.Embed {
	e := discord.Embed{
		Title: fmt.Sprintf("📝 Day %d: %s", q.Day, q.Question),
		Color: dailyColor,
		Fields: []discord.EmbedField{
			{Name: "📥 Input", Value: "```" + orDash(string(q.Input)) + "```"},
			{Name: "📤 Output", Value: "```" + orDash(string(q.Output)) + "```"},
			{Name: "💡 Explanation", Value: orDash(q.Explain)},
		},
		Footer:    "Daily Coding Challenge",
		Timestamp: now,
	}
	if q.Formula != "" {
		e.Fields = append(e.Fields, discord.EmbedField{Name: "🔢 Formula", Value: "`" + q.Formula + "`"})
	}
	return e
}

func listEmbed(title, description string, qs []Question, start int) discord.Embed {
	end := min(start+PageSize, len(qs))
	e := discord.Embed{
		Title:       title,
		Description: description,
		Color:       listColor,
		Footer:      fmt.Sprintf("Showing %d-%d of %d questions", start+1, end, len(qs)),
	}
	if len(qs) == 0 {
		e.Footer = "Showing 0-0 of 0 questions"
		return e
	}
	for _, q := range qs[start:end] {
		e.Fields = append(e.Fields, discord.EmbedField{
			Name:  fmt.Sprintf("Day %d: %s", q.Day, q.Question),
			Value: fmt.Sprintf("**Input:** %s\n**Output:** %s", orDash(string(q.Input)), orDash(string(q.Output))),
		})
	}
	return e
}
