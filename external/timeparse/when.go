package timeparse

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/belmonts/belix/internal/reminder"
)

var pastMarkers = []string{"today", "yesterday", "ago", "last"}

type WhenParser struct {
	w *when.Parser
}

func NewWhenParser() *WhenParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &WhenParser{w: w}
}

// Parse finds the first time expression in text relative to base. A bare
// clock time that already passed today is moved to the next day.
func (p *WhenParser) Parse(text string, base time.Time) (*reminder.TimeMatch, error) {
	r, err := p.w.Parse(text, base)
	if err != nil {
		return nil, fmt.Errorf("parse time expression: %w", err)
	}
	if r == nil {
		return nil, nil
	}
	at := r.Time
	if at.Before(base) && base.Sub(at) < 24*time.Hour && !mentionsPast(r.Text) {
		at = at.Add(24 * time.Hour)
	}
	return &reminder.TimeMatch{Text: r.Text, Index: r.Index, At: at}, nil
}

func mentionsPast(s string) bool {
	lower := strings.ToLower(s)
	for _, m := range pastMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
