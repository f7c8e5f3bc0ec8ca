package gathering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		name     string
		attended time.Duration
		planned  time.Duration
		want     float64
	}{
		{name: "half", attended: 30 * time.Minute, planned: time.Hour, want: 50},
		{name: "full", attended: time.Hour, planned: time.Hour, want: 100},
		{name: "clamped above", attended: 90 * time.Minute, planned: time.Hour, want: 100},
		{name: "nothing attended", attended: 0, planned: time.Hour, want: 0},
		{name: "zero plan", attended: time.Minute, planned: 0, want: 0},
		{name: "negative plan", attended: time.Minute, planned: -time.Minute, want: 0},
		{name: "sub millisecond", attended: 500 * time.Microsecond, planned: 800 * time.Microsecond, want: 62.5},
		{name: "sub millisecond full", attended: 300 * time.Microsecond, planned: 300 * time.Microsecond, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percentage(tt.attended, tt.planned), 1e-9)
		})
	}
}

func TestPlannedDuration(t *testing.T) {
	assert.Equal(t, time.Hour, PlannedDuration(time.Hour, 20*time.Minute))
	assert.Equal(t, 20*time.Minute, PlannedDuration(0, 20*time.Minute))
	assert.Equal(t, time.Duration(0), PlannedDuration(0, -time.Minute))
}

func TestQualifiesIsStrict(t *testing.T) {
	assert.False(t, Qualifies(50, 50))
	assert.True(t, Qualifies(50.01, 50))
}

func TestParticipantAccumulatesMonotonically(t *testing.T) {
	base := time.Date(2025, time.June, 15, 19, 0, 0, 0, time.UTC)
	p := &participant{}
	p.join(base)
	p.join(base.Add(5 * time.Minute))
	p.leave(base.Add(10 * time.Minute))
	assert.Equal(t, 10*time.Minute, p.total)

	p.leave(base.Add(20 * time.Minute))
	assert.Equal(t, 10*time.Minute, p.total)

	p.join(base.Add(30 * time.Minute))
	p.leave(base.Add(35 * time.Minute))
	assert.Equal(t, 15*time.Minute, p.total)
	assert.False(t, p.present())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0 minutes", formatDuration(0))
	assert.Equal(t, "1 minute", formatDuration(70*time.Second))
	assert.Equal(t, "45 minutes", formatDuration(45*time.Minute))
}

func TestParseTimeInput(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in         string
		ok         bool
		hour, mins int
	}{
		{in: "19:30", ok: true, hour: 19, mins: 30},
		{in: "7", ok: true, hour: 7},
		{in: "7:45 PM", ok: true, hour: 19, mins: 45},
		{in: "7:45pm", ok: true, hour: 19, mins: 45},
		{in: "12 am", ok: true, hour: 0},
		{in: "12 pm", ok: true, hour: 12},
		{in: " 8:05 ", ok: true, hour: 8, mins: 5},
		{in: "24:00"},
		{in: "7:60"},
		{in: "13 pm"},
		{in: "0 am"},
		{in: "seven"},
		{in: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTimeInput(tt.in, now)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, time.Date(2025, time.June, 15, tt.hour, tt.mins, 0, 0, time.UTC), got)
		})
	}
}
