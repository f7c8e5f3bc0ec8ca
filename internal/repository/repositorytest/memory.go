// Package repositorytest provides an in-memory repository.Repository for tests.
package repositorytest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/belmonts/belix/internal/repository"
)

type Memory struct {
	// Err, when set, is returned by every call.
	Err error
	// GrantErr, when set, fails GrantDailyAward after the key check.
	GrantErr error

	mu          sync.Mutex
	members     map[string]*repository.Member
	points      map[string]*repository.Points
	pointsOrder []string
	awards      map[string]struct{}
	meetings    []*repository.Meeting
	attendance  map[int64][]repository.Attendance
	gatherings  map[string]*repository.GatheringConfirmation
	activity    []repository.Activity
}

var _ repository.Repository = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		members:    make(map[string]*repository.Member),
		points:     make(map[string]*repository.Points),
		awards:     make(map[string]struct{}),
		attendance: make(map[int64][]repository.Attendance),
		gatherings: make(map[string]*repository.GatheringConfirmation),
	}
}

func day(t time.Time) string {
	return t.Format(time.DateOnly)
}

func (m *Memory) SyncMember(_ context.Context, in repository.SyncMemberInput) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.members[in.MemberID]
	if !ok {
		existing = &repository.Member{MemberID: in.MemberID, DiscordUsername: in.Username, CreatedAt: time.Now()}
		m.members[in.MemberID] = existing
	}
	existing.Username = in.Username
	existing.DisplayName = in.DisplayName
	existing.Role = in.Role
	if in.JoinedAt != nil {
		existing.JoinedAt = in.JoinedAt
	}
	existing.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) InsertMember(_ context.Context, in repository.InsertMemberInput) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.members[in.MemberID]; ok {
		return nil
	}
	m.members[in.MemberID] = &repository.Member{
		MemberID:        in.MemberID,
		Username:        in.Username,
		DisplayName:     in.DisplayName,
		DiscordUsername: in.DiscordUsername,
		Role:            in.Role,
		Birthday:        in.Birthday,
		JoinedAt:        in.JoinedAt,
		BelmontsPoints:  in.BelmontsPoints,
		CreatedAt:       time.Now(),
	}
	return nil
}

func (m *Memory) find(match func(*repository.Member) bool) *repository.Member {
	ids := make([]string, 0, len(m.members))
	for id := range m.members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if match(m.members[id]) {
			c := *m.members[id]
			return &c
		}
	}
	return nil
}

func (m *Memory) GetMember(_ context.Context, memberID string) (*repository.Member, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(x *repository.Member) bool { return x.MemberID == memberID }), nil
}

func (m *Memory) GetMemberByUsername(_ context.Context, username string) (*repository.Member, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(x *repository.Member) bool { return x.Username == username }), nil
}

func (m *Memory) GetMemberByDiscordUsername(_ context.Context, discordUsername string) (*repository.Member, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(x *repository.Member) bool { return x.DiscordUsername == discordUsername }), nil
}

func (m *Memory) UpdateMemberRole(_ context.Context, memberID, role string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if x, ok := m.members[memberID]; ok {
		x.Role = role
	}
	return nil
}

func (m *Memory) UpdateMemberBirthday(_ context.Context, memberID string, birthday *time.Time) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if x, ok := m.members[memberID]; ok {
		x.Birthday = birthday
	}
	return nil
}

func (m *Memory) list(match func(*repository.Member) bool) []repository.Member {
	ids := make([]string, 0, len(m.members))
	for id := range m.members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []repository.Member
	for _, id := range ids {
		if match(m.members[id]) {
			out = append(out, *m.members[id])
		}
	}
	return out
}

func (m *Memory) ListMembers(_ context.Context) ([]repository.Member, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(func(*repository.Member) bool { return true }), nil
}

func (m *Memory) ListMembersWithBirthday(_ context.Context) ([]repository.Member, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(func(x *repository.Member) bool { return x.Birthday != nil }), nil
}

func (m *Memory) AddBelmontsPointsByDiscordUsername(_ context.Context, discordUsername string, points int) (*int, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.members {
		if strings.EqualFold(x.DiscordUsername, discordUsername) {
			x.BelmontsPoints += points
			total := x.BelmontsPoints
			return &total, nil
		}
	}
	return nil, nil
}

func (m *Memory) InitializePoints(_ context.Context, memberID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensurePoints(memberID)
	return nil
}

func (m *Memory) ensurePoints(memberID string) *repository.Points {
	p, ok := m.points[memberID]
	if !ok {
		p = &repository.Points{MemberID: memberID, LastUpdate: time.Now()}
		m.points[memberID] = p
		m.pointsOrder = append(m.pointsOrder, memberID)
	}
	return p
}

func (m *Memory) AddPoints(_ context.Context, memberID string, points int) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.ensurePoints(memberID)
	p.Points += points
	p.LastUpdate = time.Now()
	return p.Points, nil
}

func (m *Memory) GetPoints(_ context.Context, memberID string) (*repository.Points, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.points[memberID]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (m *Memory) SetPoints(_ context.Context, memberID string, points int) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensurePoints(memberID).Points = points
	return nil
}

// GetLeaderboard orders by points, ties in insertion order.
func (m *Memory) GetLeaderboard(_ context.Context, limit int) ([]repository.LeaderboardEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]repository.LeaderboardEntry, 0, len(m.pointsOrder))
	for _, id := range m.pointsOrder {
		e := repository.LeaderboardEntry{MemberID: id, Points: m.points[id].Points}
		if x, ok := m.members[id]; ok {
			e.Username, e.DisplayName, e.Role = x.Username, x.DisplayName, x.Role
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) GrantDailyAward(_ context.Context, memberID, reason string, d time.Time, points int) (int, bool, error) {
	if m.Err != nil {
		return 0, false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memberID + "|" + reason + "|" + day(d)
	if _, ok := m.awards[key]; ok {
		return 0, false, nil
	}
	if m.GrantErr != nil {
		return 0, false, m.GrantErr
	}
	m.awards[key] = struct{}{}
	p := m.ensurePoints(memberID)
	p.Points += points
	p.LastUpdate = time.Now()
	return p.Points, true, nil
}

func (m *Memory) CreateMeeting(_ context.Context, in repository.CreateMeetingInput) (*repository.Meeting, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	mt := &repository.Meeting{
		ID:            int64(len(m.meetings) + 1),
		SessionID:     in.SessionID,
		Title:         in.Title,
		MeetingDate:   in.MeetingDate,
		MeetingTime:   in.MeetingTime,
		ScheduledTime: in.ScheduledTime,
		TotalMembers:  in.TotalMembers,
		CreatedAt:     time.Now(),
	}
	m.meetings = append(m.meetings, mt)
	c := *mt
	return &c, nil
}

func (m *Memory) UpdateMeetingEnd(_ context.Context, in repository.UpdateMeetingEndInput) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mt := range m.meetings {
		if mt.ID == in.MeetingID {
			end := in.EndTime
			mt.EndTime = &end
			mt.DurationMinutes = in.DurationMinutes
			mt.AttendedMembers = in.AttendedMembers
		}
	}
	return nil
}

func (m *Memory) RecordAttendance(_ context.Context, meetingID int64, records []repository.Attendance) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attendance[meetingID] = append(m.attendance[meetingID], records...)
	return nil
}

func (m *Memory) ConfirmGathering(_ context.Context, d time.Time, confirmedByID, confirmedBy string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gatherings[day(d)] = &repository.GatheringConfirmation{
		GatheringDate: d,
		Status:        repository.GatheringConfirmed,
		ConfirmedByID: confirmedByID,
		ConfirmedBy:   confirmedBy,
		UpdatedAt:     time.Now(),
	}
	return nil
}

func (m *Memory) CancelGathering(_ context.Context, d time.Time) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gatherings[day(d)] = &repository.GatheringConfirmation{
		GatheringDate: d,
		Status:        repository.GatheringCancelled,
		UpdatedAt:     time.Now(),
	}
	return nil
}

func (m *Memory) GetGatheringStatus(_ context.Context, d time.Time) (*repository.GatheringConfirmation, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.gatherings[day(d)]
	if !ok {
		return nil, nil
	}
	c := *g
	return &c, nil
}

func (m *Memory) TrackActivity(_ context.Context, in repository.TrackActivityInput) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	at := in.At
	if at.IsZero() {
		at = time.Now()
	}
	m.activity = append(m.activity, repository.Activity{
		ID:                   int64(len(m.activity) + 1),
		MemberID:             in.MemberID,
		DiscordUsername:      in.DiscordUsername,
		DisplayName:          in.DisplayName,
		ActivityType:         in.ActivityType,
		ChannelID:            in.ChannelID,
		ChannelName:          in.ChannelName,
		MessageCount:         in.MessageCount,
		VoiceDurationMinutes: in.VoiceDurationMinutes,
		ReactionCount:        in.ReactionCount,
		ActivityDate:         at,
		ActivityTimestamp:    at,
		Metadata:             in.Metadata,
	})
	return nil
}

func (m *Memory) ListActivity(_ context.Context, memberID string, from, to *time.Time) ([]repository.Activity, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.Activity
	for _, a := range m.activity {
		if a.MemberID != memberID {
			continue
		}
		if from != nil && a.ActivityTimestamp.Before(*from) {
			continue
		}
		if to != nil && a.ActivityTimestamp.After(*to) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *Memory) SummarizeActivity(ctx context.Context, memberID string, since time.Time) (*repository.ActivitySummary, error) {
	list, err := m.ListActivity(ctx, memberID, &since, nil)
	if err != nil {
		return nil, err
	}
	s := repository.Summarize(list)
	return &s, nil
}

// Activity returns every tracked activity row.
func (m *Memory) Activity() []repository.Activity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]repository.Activity(nil), m.activity...)
}

func (m *Memory) Meetings() []repository.Meeting {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]repository.Meeting, 0, len(m.meetings))
	for _, mt := range m.meetings {
		out = append(out, *mt)
	}
	return out
}

func (m *Memory) Attendance(meetingID int64) []repository.Attendance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]repository.Attendance(nil), m.attendance[meetingID]...)
}
