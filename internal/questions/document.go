package questions

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

const defaultRookieStart = 109

// Text is a question field that may be stored as any JSON scalar.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = Text(s)
		return nil
	}
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*t = ""
		return nil
	}
	*t = Text(strings.TrimSpace(string(b)))
	return nil
}

type Question struct {
	Day        int    `json:"Day" validate:"gte=1"`
	Question   string `json:"Question" validate:"required"`
	Input      Text   `json:"Input"`
	Output     Text   `json:"Output"`
	Explain    string `json:"Explain"`
	Difficulty string `json:"Difficulty,omitempty"`
	Formula    string `json:"Formula,omitempty"`
	Method     string `json:"Method,omitempty"`
	MainCall   string `json:"Main Call,omitempty"`
}

// Document is the daily question file. It is either an object carrying the
// rotation state or a bare array of questions.
type Document struct {
	StartDate           string     `json:"startDate,omitempty"`
	CurrentIndex        int        `json:"currentIndex"`
	StartQuestionNumber int        `json:"startQuestionNumber,omitempty"`
	Questions           []Question `json:"Questions"`
}

func (d *Document) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		*d = Document{}
		return json.Unmarshal(trimmed, &d.Questions)
	}
	type plain Document
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*d = Document(p)
	return nil
}

func (d *Document) Prune(keep func(entry any) bool) int {
	kept := d.Questions[:0]
	for i := range d.Questions {
		if keep(&d.Questions[i]) {
			kept = append(kept, d.Questions[i])
		}
	}
	dropped := len(d.Questions) - len(kept)
	d.Questions = kept
	return dropped
}

func (d *Document) RookieStart() int {
	if d.StartQuestionNumber > 0 {
		return d.StartQuestionNumber
	}
	return defaultRookieStart
}

// DaysSinceStart counts whole calendar days from StartDate to now in loc.
// A missing or unparsable start date counts as zero.
func (d *Document) DaysSinceStart(now time.Time, loc *time.Location) int {
	start, ok := parseStartDate(d.StartDate, loc)
	if !ok {
		return 0
	}
	now = now.In(loc)
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from) / (24 * time.Hour))
}

func parseStartDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.In(loc)
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), true
	}
	return time.Time{}, false
}

func (d *Document) ByDay(day int) *Question {
	for i := range d.Questions {
		if d.Questions[i].Day == day {
			return &d.Questions[i]
		}
	}
	return nil
}

func (d *Document) ByDifficulty(difficulty string) []Question {
	var out []Question
	for _, q := range d.Questions {
		if strings.EqualFold(q.Difficulty, difficulty) {
			out = append(out, q)
		}
	}
	return out
}

// Today returns the question whose Day equals CurrentIndex plus the days
// elapsed since StartDate, falling back to the first question.
func (d *Document) Today(now time.Time, loc *time.Location) *Question {
	if len(d.Questions) == 0 {
		return nil
	}
	if q := d.ByDay(d.CurrentIndex + d.DaysSinceStart(now, loc)); q != nil {
		return q
	}
	return &d.Questions[0]
}

func (d *Document) RookieNumber(now time.Time, loc *time.Location) int {
	return d.RookieStart() + d.DaysSinceStart(now, loc)
}
