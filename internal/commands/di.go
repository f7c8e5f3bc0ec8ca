package commands

import (
	"github.com/samber/do/v2"

	"github.com/belmonts/belix/internal/config"
	"github.com/belmonts/belix/internal/discord"
	"github.com/belmonts/belix/internal/gathering"
	"github.com/belmonts/belix/internal/members"
	"github.com/belmonts/belix/internal/points"
	"github.com/belmonts/belix/internal/questions"
	"github.com/belmonts/belix/internal/reminder"
	"github.com/belmonts/belix/internal/terminology"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Router, error) {
		cfg := do.MustInvoke[*config.Config](i)
		dc := do.MustInvoke[discord.Client](i)
		return NewRouter(cfg, dc, Services{
			Points:      do.MustInvoke[*points.Service](i),
			Questions:   do.MustInvoke[*questions.Service](i),
			Terminology: do.MustInvoke[*terminology.Service](i),
			Meetings:    do.MustInvoke[*gathering.Manager](i),
			Gatherings:  do.MustInvoke[*gathering.Confirmations](i),
			Reminders:   do.MustInvoke[*reminder.Manager](i),
			Rookies:     do.MustInvoke[*members.RookieChecker](i),
		}), nil
	})
}
