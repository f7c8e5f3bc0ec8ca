package gathering

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var timeInputPattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)

// ParseTimeInput reads "H", "H:MM" with an optional am/pm suffix and returns
// that clock time on now's date. Without a meridiem the hour is 24-hour.
func ParseTimeInput(input string, now time.Time) (time.Time, bool) {
	m := timeInputPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(input)))
	if m == nil {
		return time.Time{}, false
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}
	minute := 0
	if m[2] != "" {
		if minute, err = strconv.Atoi(m[2]); err != nil {
			return time.Time{}, false
		}
	}
	if minute > 59 {
		return time.Time{}, false
	}
	switch m[3] {
	case "am", "pm":
		if hour < 1 || hour > 12 {
			return time.Time{}, false
		}
		if m[3] == "pm" && hour != 12 {
			hour += 12
		}
		if m[3] == "am" && hour == 12 {
			hour = 0
		}
	default:
		if hour > 23 {
			return time.Time{}, false
		}
	}
	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location()), true
}

func formatTimeLabel(t time.Time) string {
	return t.Format("3:04 PM")
}
