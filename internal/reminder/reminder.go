package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/time/rate"

	"github.com/belmonts/belix/internal/config"
	"github.com/belmonts/belix/internal/discord"
	"github.com/belmonts/belix/internal/telemetry"
)

const (
	createInterval = 20 * time.Second
	createBurst    = 3
	limiterTTL     = time.Hour
)

type Reminder struct {
	ID        string `json:"id" validate:"required"`
	UserID    string `json:"userId" validate:"required"`
	ChannelID string `json:"channelId"`
	Message   string `json:"message" validate:"required"`
	// Timestamp and CreatedAt are unix milliseconds.
	Timestamp int64 `json:"timestamp" validate:"gt=0"`
	CreatedAt int64 `json:"createdAt"`
}

func (r Reminder) At() time.Time {
	return time.UnixMilli(r.Timestamp)
}

type List []Reminder

func (l *List) Prune(keep func(entry any) bool) int {
	kept := (*l)[:0]
	for i := range *l {
		if keep(&(*l)[i]) {
			kept = append(kept, (*l)[i])
		}
	}
	dropped := len(*l) - len(kept)
	*l = kept
	return dropped
}

type Store interface {
	Load() (List, error)
	Update(fn func(list *List) error) error
}

type stopper interface {
	Stop() bool
}

type Manager struct {
	cfg     *config.Config
	store   Store
	discord discord.Client
	parser  TimeParser

	now       func() time.Time
	afterFunc func(d time.Duration, f func()) stopper
	newID     func() (string, error)

	limiters *ttlcache.Cache[string, *rate.Limiter]

	mu     sync.Mutex
	timers map[string]stopper
}

func NewManager(cfg *config.Config, store Store, dc discord.Client, parser TimeParser) *Manager {
	return &Manager{
		cfg:     cfg,
		store:   store,
		discord: dc,
		parser:  parser,
		now:     time.Now,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
		newID: func() (string, error) {
			return gonanoid.New()
		},
		limiters: ttlcache.New[string, *rate.Limiter](ttlcache.WithTTL[string, *rate.Limiter](limiterTTL)),
		timers:   make(map[string]stopper),
	}
}

// HandleMessage answers chat messages starting with "remind me".
func (m *Manager) HandleMessage(event discord.MessageEvent) {
	if event.Author.IsBot || !IsRequest(event.Content) {
		return
	}
	reply := m.handleRequest(event.Author.UserID, event.ChannelID, func(now time.Time) (string, time.Time, error) {
		return ParseRequest(m.parser, event.Content, now)
	})
	if event.Reply == nil {
		return
	}
	if err := event.Reply(discord.Message{Content: reply}); err != nil {
		slog.Error("failed to reply to reminder request", "error", err, "user_id", event.Author.UserID)
	}
}

// HandleCommand serves the /remind command and returns the reply text.
func (m *Manager) HandleCommand(userID, channelID, when, what string) string {
	return m.handleRequest(userID, channelID, func(now time.Time) (string, time.Time, error) {
		what = strings.TrimSpace(what)
		if what == "" {
			return "", time.Time{}, ErrMissingAction
		}
		match, err := m.parser.Parse(strings.TrimSpace(when), now)
		if err != nil {
			return "", time.Time{}, ErrInvalidTime
		}
		if match == nil {
			return "", time.Time{}, ErrMissingTime
		}
		return what, match.At, nil
	})
}

func (m *Manager) handleRequest(userID, channelID string, parse func(now time.Time) (string, time.Time, error)) string {
	if !m.allow(userID) {
		return replyRateLimited
	}
	now := m.now()
	action, at, err := parse(now)
	if err != nil {
		return errorReply(err)
	}
	if !at.After(now) {
		return replyPast
	}
	r, err := m.create(userID, channelID, action, at, now)
	if err != nil {
		slog.Error("failed to create reminder", "error", err, "user_id", userID)
		return replyFailed
	}
	slog.Info("reminder created", "reminder_id", r.ID, "user_id", userID, "at", at)
	return fmt.Sprintf(replySetFormat, at.In(m.cfg.Location()).Format(confirmTimeLayout))
}

func (m *Manager) allow(userID string) bool {
	item, _ := m.limiters.GetOrSet(userID, rate.NewLimiter(rate.Every(createInterval), createBurst))
	return item.Value().Allow()
}

func (m *Manager) create(userID, channelID, action string, at, now time.Time) (Reminder, error) {
	id, err := m.newID()
	if err != nil {
		return Reminder{}, fmt.Errorf("generate reminder id: %w", err)
	}
	r := Reminder{
		ID:        id,
		UserID:    userID,
		ChannelID: channelID,
		Message:   action,
		Timestamp: at.UnixMilli(),
		CreatedAt: now.UnixMilli(),
	}
	if err := m.store.Update(func(list *List) error {
		*list = append(*list, r)
		return nil
	}); err != nil {
		return Reminder{}, fmt.Errorf("persist reminder: %w", err)
	}
	m.arm(r)
	return r, nil
}

// Restore drops reminders that are already due and arms the rest. Reminders
// that already have a timer are left alone.
func (m *Manager) Restore(_ context.Context) error {
	now := m.now()
	var pending List
	err := m.store.Update(func(list *List) error {
		kept := (*list)[:0]
		for _, r := range *list {
			if r.Timestamp > now.UnixMilli() {
				kept = append(kept, r)
			}
		}
		if dropped := len(*list) - len(kept); dropped > 0 {
			slog.Info("dropped expired reminders", "count", dropped)
		}
		*list = kept
		pending = append(pending, kept...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("restore reminders: %w", err)
	}
	for _, r := range pending {
		m.arm(r)
	}
	slog.Info("reminders restored", "count", len(pending))
	return nil
}

func (m *Manager) arm(r Reminder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.timers[r.ID]; ok {
		return
	}
	delay := max(r.At().Sub(m.now()), 0)
	id := r.ID
	m.timers[id] = m.afterFunc(delay, func() {
		m.deliver(id)
	})
}

var errNotFound = errors.New("reminder not found")

func (m *Manager) deliver(id string) {
	m.mu.Lock()
	delete(m.timers, id)
	m.mu.Unlock()

	var r Reminder
	err := m.store.Update(func(list *List) error {
		for i := range *list {
			if (*list)[i].ID == id {
				r = (*list)[i]
				*list = append((*list)[:i], (*list)[i+1:]...)
				return nil
			}
		}
		return errNotFound
	})
	if errors.Is(err, errNotFound) {
		return
	}
	if err != nil {
		slog.Error("failed to remove delivered reminder", "error", err, "reminder_id", id)
		return
	}

	msg := discord.Message{Content: fmt.Sprintf(deliveryFormat, r.Message, discord.Mention(r.UserID))}
	if r.ChannelID != "" {
		_, err := m.discord.SendMessage(r.ChannelID, msg)
		if err == nil {
			telemetry.IncRemindersDelivered()
			return
		}
		slog.Warn("failed to deliver reminder to channel; falling back to dm", "error", err, "reminder_id", id)
	}
	if err := m.discord.SendDirectMessage(r.UserID, msg); err != nil {
		slog.Error("failed to deliver reminder", "error", err, "reminder_id", id)
		return
	}
	telemetry.IncRemindersDelivered()
}

// Pending returns the number of armed reminders.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.timers {
		t.Stop()
		delete(m.timers, id)
	}
}
