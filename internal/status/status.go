// Package status tracks the bot's gateway state and chat activity for the HTTP surface.
package status

import (
	"sync"
	"time"

	"github.com/belmonts/belix/internal/discord"
	"github.com/belmonts/belix/internal/scheduler"
	"github.com/belmonts/belix/internal/telemetry"
)

const ServiceName = "BeliX Discord Bot"

type Snapshot struct {
	Online            bool
	ConnectedAt       *time.Time
	LastMessageAt     *time.Time
	TotalMessagesSeen int64
	Uptime            time.Duration
	NextJob           *scheduler.NextRun
	Now               time.Time
}

// Tracker is safe for concurrent use.
type Tracker struct {
	next func() (scheduler.NextRun, bool)
	now  func() time.Time

	mu          sync.Mutex
	online      bool
	connectedAt time.Time
	lastMessage time.Time
	messages    int64
}

// NewTracker builds a tracker. next may be nil.
func NewTracker(next func() (scheduler.NextRun, bool)) *Tracker {
	return &Tracker{next: next, now: time.Now}
}

func (t *Tracker) HandleReady(_ discord.ReadyEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.online = true
	t.connectedAt = t.now()
	telemetry.SetBotOnline(true)
}

func (t *Tracker) SetOffline() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.online = false
	telemetry.SetBotOnline(false)
}

// HandleMessage counts non-bot messages.
func (t *Tracker) HandleMessage(event discord.MessageEvent) {
	if event.Author.IsBot {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages++
	t.lastMessage = t.now()
	telemetry.IncMessages()
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	s := Snapshot{Online: t.online, TotalMessagesSeen: t.messages, Now: now}
	if !t.connectedAt.IsZero() {
		connected := t.connectedAt
		s.ConnectedAt = &connected
		s.Uptime = now.Sub(connected)
	}
	if !t.lastMessage.IsZero() {
		last := t.lastMessage
		s.LastMessageAt = &last
	}
	if t.next != nil {
		if n, ok := t.next(); ok {
			s.NextJob = &n
		}
	}
	return s
}
