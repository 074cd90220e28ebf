package importer

import (
	"github.com/foxseedlab/chattyarchive/internal/config"
	"github.com/foxseedlab/chattyarchive/internal/discord"
	"github.com/foxseedlab/chattyarchive/internal/repository"
	"github.com/foxseedlab/chattyarchive/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Importer, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		wh := do.MustInvoke[webhook.Sender](i)
		notifier := do.MustInvoke[discord.Notifier](i)
		return NewImporter(cfg, repo, wh, notifier), nil
	})
}
