package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/belmonts/belix/internal/scheduler"
	"github.com/belmonts/belix/internal/telemetry"
)

const jobTimeout = 5 * time.Minute

type CronScheduler struct {
	cron *cron.Cron
	loc  *time.Location

	mu    sync.Mutex
	names map[cron.EntryID]string
}

func NewCronScheduler(loc *time.Location) *CronScheduler {
	logger := slogLogger{}
	return &CronScheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger)),
		),
		loc:   loc,
		names: make(map[cron.EntryID]string),
	}
}

func dailySpec(job scheduler.Job) string {
	return fmt.Sprintf("%d %d * * *", job.At.Minute, job.At.Hour)
}

func (s *CronScheduler) AddDaily(job scheduler.Job) error {
	if job.Run == nil {
		return fmt.Errorf("job %q has no run function", job.Name)
	}
	id, err := s.cron.AddFunc(dailySpec(job), func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		start := time.Now()
		err := job.Run(ctx)
		telemetry.RecordJob(job.Name, err)
		if err != nil {
			slog.Error("scheduled job failed", "job", job.Name, "error", err)
			return
		}
		slog.Info("scheduled job finished", "job", job.Name, "elapsed", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("schedule job %q: %w", job.Name, err)
	}
	s.mu.Lock()
	s.names[id] = job.Name
	s.mu.Unlock()
	slog.Info("scheduled daily job", "job", job.Name, "at", job.At.String())
	return nil
}

func (s *CronScheduler) Start() {
	s.cron.Start()
}

func (s *CronScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		slog.Warn("scheduler stop timed out waiting for running jobs")
	}
}

// Next reads the next fire times from the cron entries. Entries only have a
// next time once the scheduler is running, so the schedule is computed
// directly for entries that have not been planned yet.
func (s *CronScheduler) Next() (scheduler.NextRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var (
		best  scheduler.NextRun
		found bool
	)
	now := time.Now().In(s.loc)
	for _, e := range s.cron.Entries() {
		at := e.Next
		if at.IsZero() {
			at = e.Schedule.Next(now)
		}
		if !found || at.Before(best.At) {
			best = scheduler.NextRun{Name: s.names[e.ID], At: at}
			found = true
		}
	}
	return best, found
}

type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
