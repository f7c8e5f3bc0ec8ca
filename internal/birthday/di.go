package birthday

import (
	"github.com/samber/do/v2"

	"github.com/belmonts/belix/internal/config"
	"github.com/belmonts/belix/internal/discord"
	"github.com/belmonts/belix/internal/repository"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		dc := do.MustInvoke[discord.Client](i)
		return NewService(cfg, repo, dc), nil
	})
}
