package gathering

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/belmonts/belix/internal/config"
	"github.com/belmonts/belix/internal/discord"
	"github.com/belmonts/belix/internal/repository"
	"github.com/belmonts/belix/internal/scheduler"
	"github.com/belmonts/belix/internal/telemetry"
	"github.com/belmonts/belix/internal/webhook"
)

const ReasonAttendance = "attendance"

var (
	textChannelNames  = []string{"clan-meeting-hall", "common hall", "common-hall"}
	voiceChannelNames = []string{"common hall", "common-hall", "commonhall"}
)

type timer interface {
	Stop() bool
}

// Manager runs the daily meeting: the time prompt, the start timer, voice
// bookkeeping while the meeting is live, and the closing report.
type Manager struct {
	cfg     *config.Config
	repo    repository.Repository
	discord discord.Client
	webhook webhook.Sender

	now          func() time.Time
	afterFunc    func(d time.Duration, f func()) timer
	newSessionID func() string

	mu          sync.Mutex
	scheduledAt time.Time
	startTimer  timer
	starting    bool
	session     *runningSession
}

type runningSession struct {
	id               string
	meetingID        int64
	voiceChannelID   string
	voiceChannelName string
	textChannelID    string
	scheduledLabel   string
	startAt          time.Time
	tracked          map[string]discord.Member
	participants     map[string]*participant
	idleTimer        timer
	durationTimer    timer
}

func (rs *runningSession) anyonePresent() bool {
	for _, p := range rs.participants {
		if p.present() {
			return true
		}
	}
	return false
}

func (rs *runningSession) stopTimers() {
	if rs.idleTimer != nil {
		rs.idleTimer.Stop()
		rs.idleTimer = nil
	}
	if rs.durationTimer != nil {
		rs.durationTimer.Stop()
		rs.durationTimer = nil
	}
}

func NewManager(cfg *config.Config, repo repository.Repository, dc discord.Client, wh webhook.Sender) *Manager {
	return &Manager{
		cfg:     cfg,
		repo:    repo,
		discord: dc,
		webhook: wh,
		now:     time.Now,
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
		newSessionID: func() string {
			return uuid.NewString()
		},
	}
}

func (m *Manager) Jobs() []scheduler.Job {
	return []scheduler.Job{{Name: "meeting prompt", At: m.cfg.MeetingPromptTime, Run: m.SendPrompt}}
}

// Active reports whether a meeting is being tracked.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}

func (m *Manager) isManager(member discord.Member) bool {
	return discord.NameMatches(member, m.cfg.MeetingManagers)
}

func (m *Manager) channels() ([]discord.Channel, error) {
	channels, err := m.discord.ListGuildChannels(m.cfg.DiscordGuildID)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	return channels, nil
}

// trackedMembers returns the non-bot guild members whose attendance counts.
// An empty tracked list tracks everyone.
func (m *Manager) trackedMembers() (map[string]discord.Member, error) {
	members, err := m.discord.ListGuildMembers(m.cfg.DiscordGuildID)
	if err != nil {
		return nil, fmt.Errorf("list guild members: %w", err)
	}
	tracked := make(map[string]discord.Member)
	for _, mem := range members {
		if mem.IsBot {
			continue
		}
		if len(m.cfg.MeetingTrackedUsers) == 0 || discord.NameMatches(mem, m.cfg.MeetingTrackedUsers) {
			tracked[mem.UserID] = mem
		}
	}
	return tracked, nil
}

// SendPrompt asks the meeting managers to pick today's meeting time.
func (m *Manager) SendPrompt(_ context.Context) error {
	channels, err := m.channels()
	if err != nil {
		return err
	}
	ch := discord.FindChannel(channels, m.cfg.MeetingTextChannelID, discord.ChannelTypeText, textChannelNames...)
	if ch == nil {
		slog.Warn("meeting prompt channel not found")
		return nil
	}
	members, err := m.discord.ListGuildMembers(m.cfg.DiscordGuildID)
	if err != nil {
		return fmt.Errorf("list guild members: %w", err)
	}
	var mentions []string
	for _, mem := range members {
		if !mem.IsBot && m.isManager(mem) {
			mentions = append(mentions, mem.Mention())
		}
	}
	who := strings.Join(mentions, " ")
	if who == "" {
		who = strings.Join(m.cfg.MeetingManagers, " / ")
	}
	guildName := ""
	if g, err := m.discord.GetGuild(m.cfg.DiscordGuildID); err == nil && g != nil {
		guildName = g.Name
	}
	embed := promptEmbed(guildName, who)
	embed.Timestamp = m.now()
	if _, err := m.discord.SendMessage(ch.ID, discord.Message{
		Embeds:     []discord.Embed{embed},
		Components: timeButtons(),
	}); err != nil {
		return fmt.Errorf("send meeting prompt: %w", err)
	}
	slog.Info("meeting prompt sent", "channel", ch.Name)
	return nil
}

// Schedule arms the start timer for at, replacing any earlier choice.
func (m *Manager) Schedule(at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startTimer != nil {
		m.startTimer.Stop()
	}
	m.scheduledAt = at
	delay := max(at.Sub(m.now()), 0)
	var t timer
	t = m.afterFunc(delay, func() {
		m.mu.Lock()
		if m.startTimer != t {
			m.mu.Unlock()
			slog.Debug("stale meeting start timer ignored")
			return
		}
		m.startTimer = nil
		m.mu.Unlock()
		if err := m.Start(context.Background()); err != nil {
			slog.Error("failed to start meeting", "error", err)
		}
	})
	m.startTimer = t
	slog.Info("meeting scheduled", "at", at, "delay", delay)
}

// ScheduledAt returns the chosen start time, if any.
func (m *Manager) ScheduledAt() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scheduledAt, !m.scheduledAt.IsZero()
}

// Start snapshots the meeting channel and begins tracking. A second start
// while a meeting runs is ignored.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.session != nil || m.starting {
		m.mu.Unlock()
		slog.Info("meeting already started")
		return nil
	}
	m.starting = true
	scheduledAt := m.scheduledAt
	m.startTimer = nil
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.starting = false
		m.mu.Unlock()
	}()

	channels, err := m.channels()
	if err != nil {
		return err
	}
	voice := discord.FindChannel(channels, m.cfg.MeetingVoiceChannelID, discord.ChannelTypeVoice, voiceChannelNames...)
	if voice == nil {
		slog.Warn("meeting voice channel not found")
		return nil
	}
	tracked, err := m.trackedMembers()
	if err != nil {
		return err
	}

	now := m.now()
	loc := m.cfg.Location()
	local := now.In(loc)
	label := local.Format("15:04")
	if !scheduledAt.IsZero() {
		label = formatTimeLabel(scheduledAt.In(loc))
	}
	rs := &runningSession{
		id:               m.newSessionID(),
		voiceChannelID:   voice.ID,
		voiceChannelName: voice.Name,
		scheduledLabel:   label,
		startAt:          now,
		tracked:          tracked,
		participants:     make(map[string]*participant),
	}
	if text := discord.FindChannel(channels, m.cfg.MeetingTextChannelID, discord.ChannelTypeText, textChannelNames...); text != nil {
		rs.textChannelID = text.ID
	}
	ctx = telemetry.WithCorrelation(ctx, rs.id)
	log := telemetry.LoggerWithCorr(ctx)

	occupants, err := m.discord.ListVoiceChannelParticipants(m.cfg.DiscordGuildID, voice.ID)
	if err != nil {
		log.Error("failed to list voice participants", "error", err)
	}
	for _, o := range occupants {
		if _, ok := tracked[o.UserID]; ok {
			rs.participants[o.UserID] = &participant{joinedAt: now}
		}
	}

	meeting, err := m.repo.CreateMeeting(ctx, repository.CreateMeetingInput{
		SessionID:     rs.id,
		Title:         "Daily Gathering - " + local.Format(time.DateOnly),
		MeetingDate:   time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
		MeetingTime:   local.Format("15:04"),
		ScheduledTime: label,
		TotalMembers:  len(tracked),
	})
	if err != nil {
		log.Error("failed to create meeting", "error", err)
	} else if meeting != nil {
		rs.meetingID = meeting.ID
	}

	m.mu.Lock()
	m.session = rs
	if d := m.cfg.MeetingDuration(); d > 0 {
		var t timer
		t = m.afterFunc(d, func() {
			m.expire(rs, stopReasonDuration, func() bool { return rs.durationTimer == t })
		})
		rs.durationTimer = t
	}
	if !rs.anyonePresent() {
		m.armIdleLocked(rs)
	}
	m.mu.Unlock()
	telemetry.SetMeetingActive(true)
	log.Info("meeting started", "voice_channel", voice.Name, "tracked", len(tracked), "present", len(rs.participants), "meeting_id", rs.meetingID)

	if rs.textChannelID != "" {
		if _, err := m.discord.SendMessage(rs.textChannelID, discord.Message{
			Content: fmt.Sprintf(messageStartedFormat, voice.Name),
		}); err != nil {
			log.Error("failed to announce meeting start", "error", err)
		}
	}
	return nil
}

func (m *Manager) armIdleLocked(rs *runningSession) {
	if rs.idleTimer != nil {
		return
	}
	var t timer
	t = m.afterFunc(m.cfg.MeetingIdle(), func() {
		m.expire(rs, stopReasonIdle, func() bool { return rs.idleTimer == t })
	})
	rs.idleTimer = t
}

// expire closes rs for a timer callback. A callback whose timer was replaced
// or cancelled after it fired, or whose session already ended, does nothing.
func (m *Manager) expire(rs *runningSession, reason string, owns func() bool) {
	m.mu.Lock()
	if m.session != rs || !owns() {
		m.mu.Unlock()
		slog.Debug("stale meeting timer ignored", "session_id", rs.id, "reason", reason)
		return
	}
	m.session = nil
	rs.stopTimers()
	m.mu.Unlock()
	m.closeSession(context.Background(), rs, reason)
}

// HandleVoiceStateUpdate folds a tracked member's join or leave into the
// running meeting.
func (m *Manager) HandleVoiceStateUpdate(event discord.VoiceStateEvent) {
	if m.cfg.DiscordGuildID != "" && event.GuildID != m.cfg.DiscordGuildID {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rs := m.session
	if rs == nil {
		return
	}
	left := event.BeforeChannelID == rs.voiceChannelID
	joined := event.AfterChannelID == rs.voiceChannelID
	if left == joined {
		return
	}
	if _, ok := rs.tracked[event.UserID]; !ok {
		return
	}
	now := m.now()
	p, ok := rs.participants[event.UserID]
	if !ok {
		p = &participant{}
		rs.participants[event.UserID] = p
	}
	if joined {
		p.join(now)
	} else {
		p.leave(now)
	}
	slog.Debug("meeting presence changed", "session_id", rs.id, "user_id", event.UserID, "joined", joined, "total", p.total)

	if rs.anyonePresent() {
		if rs.idleTimer != nil {
			rs.idleTimer.Stop()
			rs.idleTimer = nil
		}
		return
	}
	m.armIdleLocked(rs)
}

// End closes the running meeting and reports whether there was one.
func (m *Manager) End(ctx context.Context, reason string) bool {
	m.mu.Lock()
	rs := m.session
	m.session = nil
	if rs != nil {
		rs.stopTimers()
	}
	m.mu.Unlock()
	if rs == nil {
		return false
	}
	m.closeSession(ctx, rs, reason)
	return true
}

func (m *Manager) closeSession(ctx context.Context, rs *runningSession, reason string) {
	telemetry.SetMeetingActive(false)
	m.finalize(telemetry.WithCorrelation(ctx, rs.id), rs, m.now(), reason)
}

// Shutdown stops the pending start timer and closes a running meeting.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	if m.startTimer != nil {
		m.startTimer.Stop()
		m.startTimer = nil
	}
	m.mu.Unlock()
	m.End(ctx, stopReasonShutdown)
}

func (m *Manager) finalize(ctx context.Context, rs *runningSession, endAt time.Time, reason string) {
	log := telemetry.LoggerWithCorr(ctx)
	for _, p := range rs.participants {
		p.leave(endAt)
	}
	elapsed := max(endAt.Sub(rs.startAt), 0)
	planned := PlannedDuration(m.cfg.MeetingDuration(), elapsed)
	loc := m.cfg.Location()
	day := rs.startAt.In(loc)

	ids := make([]string, 0, len(rs.tracked))
	for id := range rs.tracked {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		return strings.Compare(strings.ToLower(rs.tracked[a].DisplayName()), strings.ToLower(rs.tracked[b].DisplayName()))
	})

	var (
		lines    = make([]string, 0, len(ids))
		records  = make([]repository.Attendance, 0, len(ids))
		entries  = make([]webhook.AttendanceEntry, 0, len(ids))
		attended int
	)
	for _, id := range ids {
		member := rs.tracked[id]
		var total time.Duration
		if p, ok := rs.participants[id]; ok {
			total = p.total
		}
		pct := Percentage(total, planned)
		telemetry.ObserveAttendance(pct)
		awarded := 0
		if Qualifies(pct, m.cfg.AttendanceThreshold) {
			attended++
			awarded = m.award(ctx, member, day)
		}
		name := member.DisplayName()
		lines = append(lines, fmt.Sprintf("• **%s** — %.0f%% (%s)", name, pct, formatDuration(total)))
		records = append(records, repository.Attendance{
			MeetingID:            rs.meetingID,
			MemberID:             id,
			Username:             member.Username,
			DisplayName:          name,
			TotalDurationMinutes: roundMinutes(total),
			AttendancePercentage: roundPercent(pct),
			PointsAwarded:        awarded,
		})
		entries = append(entries, webhook.AttendanceEntry{
			UserID:          id,
			Username:        member.Username,
			DisplayName:     name,
			AttendedMinutes: roundMinutes(total),
			Percentage:      roundPercent(pct),
			PointsAwarded:   awarded,
		})
	}

	if rs.meetingID != 0 {
		if err := m.repo.UpdateMeetingEnd(ctx, repository.UpdateMeetingEndInput{
			MeetingID:       rs.meetingID,
			EndTime:         endAt,
			DurationMinutes: roundMinutes(elapsed),
			AttendedMembers: attended,
		}); err != nil {
			log.Error("failed to update meeting end", "error", err, "meeting_id", rs.meetingID)
		}
		if err := m.repo.RecordAttendance(ctx, rs.meetingID, records); err != nil {
			log.Error("failed to record attendance", "error", err, "meeting_id", rs.meetingID)
		}
	}

	if rs.textChannelID != "" {
		embed := reportEmbed(reportView{
			date:      day.Format("1/2/2006"),
			scheduled: rs.scheduledLabel,
			duration:  formatDuration(elapsed),
			lines:     lines,
			reason:    reason,
		})
		embed.Timestamp = endAt
		if _, err := m.discord.SendMessage(rs.textChannelID, discord.Message{Embeds: []discord.Embed{embed}}); err != nil {
			log.Error("failed to post meeting report", "error", err)
		}
	}

	if err := m.webhook.SendMeetingReport(ctx, webhook.MeetingReport{
		SessionID:       rs.id,
		MeetingID:       rs.meetingID,
		Title:           "Daily Gathering - " + day.Format(time.DateOnly),
		ScheduledTime:   rs.scheduledLabel,
		StartedAt:       rs.startAt,
		EndedAt:         endAt,
		DurationMinutes: roundMinutes(elapsed),
		PlannedMinutes:  roundMinutes(planned),
		EndReason:       reason,
		Threshold:       m.cfg.AttendanceThreshold,
		TotalMembers:    len(rs.tracked),
		AttendedMembers: attended,
		Attendance:      entries,
	}); err != nil {
		log.Error("failed to send meeting report webhook", "error", err)
	}

	telemetry.RecordMeetingClosed(reason)
	log.Info("meeting closed", "reason", reason, "duration", elapsed, "attended", attended, "tracked", len(rs.tracked))
}

// award grants attendance points at most once per member per calendar day
// and returns the points granted.
func (m *Manager) award(ctx context.Context, member discord.Member, day time.Time) int {
	log := telemetry.LoggerWithCorr(ctx)
	var joinedAt *time.Time
	if !member.JoinedAt.IsZero() {
		joinedAt = &member.JoinedAt
	}
	if err := m.repo.SyncMember(ctx, repository.SyncMemberInput{
		MemberID:    member.UserID,
		Username:    member.Username,
		DisplayName: member.DisplayName(),
		Role:        member.RoleName(),
		JoinedAt:    joinedAt,
	}); err != nil {
		log.Error("failed to sync member", "error", err, "user_id", member.UserID)
	}
	if err := m.repo.InitializePoints(ctx, member.UserID); err != nil {
		log.Error("failed to initialize points", "error", err, "user_id", member.UserID)
	}
	_, granted, err := m.repo.GrantDailyAward(ctx, member.UserID, ReasonAttendance, day, m.cfg.AttendancePoints)
	if err != nil {
		log.Error("failed to grant attendance points", "error", err, "user_id", member.UserID)
		return 0
	}
	if !granted {
		log.Info("attendance points already awarded today", "user_id", member.UserID)
		return 0
	}
	telemetry.AddPoints(ReasonAttendance, m.cfg.AttendancePoints)
	return m.cfg.AttendancePoints
}
