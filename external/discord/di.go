package discord

import (
	"github.com/foxseedlab/chattyarchive/internal/config"
	discordpkg "github.com/foxseedlab/chattyarchive/internal/discord"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (discordpkg.Notifier, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewNotifier(c.DiscordToken, c.DiscordReportChannelID)
	})
}
