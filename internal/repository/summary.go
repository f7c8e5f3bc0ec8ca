package repository

import "time"

// Summarize folds activity rows into totals; active days counts distinct dates.
func Summarize(activities []Activity) ActivitySummary {
	summary := ActivitySummary{ActivitiesByType: make(map[string]int)}
	days := make(map[string]struct{})
	for _, a := range activities {
		summary.TotalMessages += a.MessageCount
		summary.TotalVoiceMinutes += a.VoiceDurationMinutes
		summary.TotalReactions += a.ReactionCount
		summary.ActivitiesByType[a.ActivityType]++
		days[a.ActivityDate.Format(time.DateOnly)] = struct{}{}
	}
	summary.ActiveDays = len(days)
	return summary
}
