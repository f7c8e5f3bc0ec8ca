package gathering

import (
	"fmt"
	"math"
	"time"
)

// participant tracks one member's presence in the meeting channel. joinedAt
// is zero while the member is away.
type participant struct {
	total    time.Duration
	joinedAt time.Time
}

func (p *participant) present() bool {
	return !p.joinedAt.IsZero()
}

func (p *participant) join(at time.Time) {
	if !p.present() {
		p.joinedAt = at
	}
}

func (p *participant) leave(at time.Time) {
	if !p.present() {
		return
	}
	if d := at.Sub(p.joinedAt); d > 0 {
		p.total += d
	}
	p.joinedAt = time.Time{}
}

// Percentage is attended / planned × 100 clamped to [0, 100]. A non-positive
// plan yields 0.
func Percentage(attended, planned time.Duration) float64 {
	if planned <= 0 || attended <= 0 {
		return 0
	}
	pct := float64(attended) / float64(planned) * 100
	return math.Min(100, math.Max(0, pct))
}

// PlannedDuration is the fixed duration when configured, otherwise the
// elapsed session time.
func PlannedDuration(fixed, elapsed time.Duration) time.Duration {
	if fixed > 0 {
		return fixed
	}
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Qualifies reports whether pct strictly exceeds threshold.
func Qualifies(pct, threshold float64) bool {
	return pct > threshold
}

func roundMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Minutes()))
}

func roundPercent(pct float64) float64 {
	return math.Round(pct*100) / 100
}

func formatDuration(d time.Duration) string {
	m := roundMinutes(d)
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
