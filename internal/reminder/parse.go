package reminder

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrFormat        = errors.New("reminder: no request text")
	ErrMissingTime   = errors.New("reminder: no time expression")
	ErrInvalidTime   = errors.New("reminder: invalid time expression")
	ErrMissingAction = errors.New("reminder: nothing to remind about")
)

const (
	replyMissingTime   = `Please include when to remind you, e.g., "remind me to submit my assignment tomorrow at 6 PM".`
	replyInvalidTime   = `That time looks invalid. Try something like "in 20 minutes" or "tomorrow at 6 PM".`
	replyMissingAction = `Please include what to remind you about, e.g., "remind me to call Alex at 4 PM".`
	replyPast          = "That time seems to be in the past. Please provide a future time."
	replyRateLimited   = "⏳ You're setting reminders too quickly. Please wait a moment and try again."
	replyFailed        = "❌ Could not save your reminder. Please try again later."
	replySetFormat     = "✅ Reminder set! I'll remind you %s."
	deliveryFormat     = "⏰ Reminder: %s %s"
	confirmTimeLayout  = "Jan 2, 2006, 3:04 PM"
)

var (
	requestPattern = regexp.MustCompile(`(?is)remind me\s*(to)?\s*(.+)`)
	leadingPunct   = regexp.MustCompile(`^[,;:\-\s]+`)
)

// TimeMatch is a time expression found inside free text.
type TimeMatch struct {
	Text  string
	Index int
	At    time.Time
}

type TimeParser interface {
	// Parse returns nil when text holds no time expression.
	Parse(text string, base time.Time) (*TimeMatch, error)
}

// IsRequest reports whether a chat message asks for a reminder.
func IsRequest(content string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(content)), "remind me")
}

// ParseRequest splits "remind me [to] <what> <when>" into the action and the
// time to fire. The action falls back to the whole request text when only a
// time expression was given.
func ParseRequest(parser TimeParser, content string, now time.Time) (string, time.Time, error) {
	m := requestPattern.FindStringSubmatch(content)
	if m == nil || strings.TrimSpace(m[2]) == "" {
		return "", time.Time{}, ErrFormat
	}
	text := strings.TrimSpace(m[2])
	match, err := parser.Parse(text, now)
	if err != nil {
		return "", time.Time{}, ErrInvalidTime
	}
	if match == nil {
		return "", time.Time{}, ErrMissingTime
	}
	if match.At.IsZero() {
		return "", time.Time{}, ErrInvalidTime
	}
	action := strings.Replace(text, match.Text, "", 1)
	action = strings.TrimSpace(leadingPunct.ReplaceAllString(action, ""))
	if action == "" {
		action = text
	}
	return action, match.At, nil
}

// errorReply maps a parse error to the guidance shown to the user.
func errorReply(err error) string {
	switch {
	case errors.Is(err, ErrMissingTime):
		return replyMissingTime
	case errors.Is(err, ErrInvalidTime):
		return replyInvalidTime
	default:
		return replyMissingAction
	}
}
