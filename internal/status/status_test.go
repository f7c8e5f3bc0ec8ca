package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belmonts/belix/internal/discord"
	"github.com/belmonts/belix/internal/scheduler"
)

func TestTrackerLifecycle(t *testing.T) {
	clock := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	next := scheduler.NextRun{Name: "terminology post", At: clock.Add(8 * time.Hour)}
	tr := NewTracker(func() (scheduler.NextRun, bool) { return next, true })
	tr.now = func() time.Time { return clock }

	s := tr.Snapshot()
	assert.False(t, s.Online)
	assert.Nil(t, s.ConnectedAt)
	assert.Zero(t, s.Uptime)

	tr.HandleReady(discord.ReadyEvent{})
	clock = clock.Add(90 * time.Second)
	tr.HandleMessage(discord.MessageEvent{Author: discord.Member{UserID: "1"}})
	tr.HandleMessage(discord.MessageEvent{Author: discord.Member{UserID: "bot", IsBot: true}})
	clock = clock.Add(30 * time.Second)

	s = tr.Snapshot()
	assert.True(t, s.Online)
	assert.Equal(t, 2*time.Minute, s.Uptime)
	assert.EqualValues(t, 1, s.TotalMessagesSeen)
	require.NotNil(t, s.LastMessageAt)
	assert.Equal(t, clock.Add(-30*time.Second), *s.LastMessageAt)
	require.NotNil(t, s.NextJob)
	assert.Equal(t, "terminology post", s.NextJob.Name)

	tr.SetOffline()
	assert.False(t, tr.Snapshot().Online)
}

func TestTrackerWithoutScheduler(t *testing.T) {
	tr := NewTracker(nil)
	assert.Nil(t, tr.Snapshot().NextJob)
}
