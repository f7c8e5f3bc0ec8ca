// Package telemetry provides Prometheus metrics, tracing setup and correlation-id helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	MessagesSeen       prometheus.Counter
	PointsAwarded      *prometheus.CounterVec
	ScheduledJobRuns   *prometheus.CounterVec
	ScheduledJobErrors *prometheus.CounterVec
	RemindersDelivered prometheus.Counter
	MeetingsClosed     *prometheus.CounterVec
	CommandsHandled    *prometheus.CounterVec

	AttendancePercent prometheus.Observer

	BotOnline          prometheus.Gauge
	ActiveMeetingGauge prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		MessagesSeen = promauto.NewCounter(prometheus.CounterOpts{Name: "belix_messages_total", Help: "Number of non-bot messages seen"})
		PointsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{Name: "belix_points_awarded_total", Help: "Points awarded by reason"}, []string{"reason"})
		ScheduledJobRuns = promauto.NewCounterVec(prometheus.CounterOpts{Name: "belix_scheduled_job_runs_total", Help: "Scheduled job executions"}, []string{"job"})
		ScheduledJobErrors = promauto.NewCounterVec(prometheus.CounterOpts{Name: "belix_scheduled_job_errors_total", Help: "Scheduled job failures"}, []string{"job"})
		RemindersDelivered = promauto.NewCounter(prometheus.CounterOpts{Name: "belix_reminders_delivered_total", Help: "Personal reminders delivered"})
		MeetingsClosed = promauto.NewCounterVec(prometheus.CounterOpts{Name: "belix_meetings_closed_total", Help: "Gathering sessions closed by reason"}, []string{"reason"})
		CommandsHandled = promauto.NewCounterVec(prometheus.CounterOpts{Name: "belix_commands_total", Help: "Slash commands handled by name"}, []string{"command"})
		AttendancePercent = promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "belix_meeting_attendance_percent",
			Help:    "Per-member attendance percentage at meeting close",
			Buckets: []float64{10, 25, 50, 75, 90, 100},
		})
		BotOnline = promauto.NewGauge(prometheus.GaugeOpts{Name: "belix_bot_online", Help: "1 when the gateway session is ready"})
		ActiveMeetingGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "belix_meeting_active", Help: "1 while a gathering session is tracked"})
	})
}

func AddPoints(reason string, points int) {
	if PointsAwarded != nil {
		PointsAwarded.WithLabelValues(reason).Add(float64(points))
	}
}

func IncMessages() {
	if MessagesSeen != nil {
		MessagesSeen.Inc()
	}
}

func RecordJob(job string, err error) {
	if ScheduledJobRuns == nil {
		return
	}
	ScheduledJobRuns.WithLabelValues(job).Inc()
	if err != nil {
		ScheduledJobErrors.WithLabelValues(job).Inc()
	}
}

func IncCommand(name string) {
	if CommandsHandled != nil {
		CommandsHandled.WithLabelValues(name).Inc()
	}
}

func IncRemindersDelivered() {
	if RemindersDelivered != nil {
		RemindersDelivered.Inc()
	}
}

func RecordMeetingClosed(reason string) {
	if MeetingsClosed != nil {
		MeetingsClosed.WithLabelValues(reason).Inc()
	}
}

func ObserveAttendance(pct float64) {
	if AttendancePercent != nil {
		AttendancePercent.Observe(pct)
	}
}

func SetBotOnline(online bool) {
	setBool(BotOnline, online)
}

func SetMeetingActive(active bool) {
	setBool(ActiveMeetingGauge, active)
}

func setBool(g prometheus.Gauge, v bool) {
	if g == nil {
		return
	}
	if v {
		g.Set(1)
	} else {
		g.Set(0)
	}
}

type corrKeyType struct{}

var corrKey corrKeyType

func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns the correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	if s, ok := ctx.Value(corrKey).(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger carrying the correlation id if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
