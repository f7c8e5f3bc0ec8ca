package scheduler

import (
	"context"
	"time"

	"github.com/belmonts/belix/internal/config"
)

type JobFunc func(ctx context.Context) error

// Job runs once a day at At in the configured time zone.
type Job struct {
	Name string
	At   config.ClockTime
	Run  JobFunc
}

type NextRun struct {
	Name string
	At   time.Time
}

type Scheduler interface {
	AddDaily(job Job) error
	Start()
	// Stop prevents new runs and waits for running jobs until ctx is done.
	Stop(ctx context.Context)
	// Next returns the earliest upcoming run, if any job is registered.
	Next() (NextRun, bool)
}
