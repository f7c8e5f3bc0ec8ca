package reminder

import (
	"github.com/samber/do/v2"

	"github.com/belmonts/belix/internal/config"
	"github.com/belmonts/belix/internal/discord"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		cfg := do.MustInvoke[*config.Config](i)
		store := do.MustInvoke[Store](i)
		dc := do.MustInvoke[discord.Client](i)
		parser := do.MustInvoke[TimeParser](i)
		return NewManager(cfg, store, dc, parser), nil
	})
	do.Provide(injector, func(i do.Injector) (*Broadcaster, error) {
		cfg := do.MustInvoke[*config.Config](i)
		dc := do.MustInvoke[discord.Client](i)
		return NewBroadcaster(cfg, dc), nil
	})
}
