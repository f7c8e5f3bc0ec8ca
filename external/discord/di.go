package discord

import (
	"github.com/samber/do/v2"

	"github.com/belmonts/belix/internal/config"
	discordpkg "github.com/belmonts/belix/internal/discord"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (discordpkg.Client, error) {
		c := do.MustInvoke[*config.Config](i)
		client, err := NewClient(c.DiscordToken)
		if err != nil {
			return nil, err
		}
		return client, nil
	})
}
