package terminology

import (
	"github.com/samber/do/v2"

	"github.com/belmonts/belix/internal/config"
	"github.com/belmonts/belix/internal/discord"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		store := do.MustInvoke[Store](i)
		dc := do.MustInvoke[discord.Client](i)
		return NewService(cfg, store, dc), nil
	})
}
