package scheduler

import (
	"github.com/samber/do/v2"

	"github.com/belmonts/belix/internal/config"
	"github.com/belmonts/belix/internal/scheduler"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (scheduler.Scheduler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewCronScheduler(cfg.Location()), nil
	})
}
