package pipeline

import (
	"github.com/foxseedlab/vox/internal/config"
	"github.com/foxseedlab/vox/internal/gating"
	"github.com/foxseedlab/vox/internal/notify"
	"github.com/foxseedlab/vox/internal/output"
	"github.com/foxseedlab/vox/internal/repository"
	"github.com/foxseedlab/vox/internal/session"
	"github.com/foxseedlab/vox/internal/translation"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*gating.Gate, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return gating.New(cfg.ActivationPhrase, cfg.DeactivationPhrase), nil
	})
	do.Provide(injector, func(i do.Injector) (*Pipeline, error) {
		rec := do.MustInvoke[*session.Session](i)
		tr := do.MustInvoke[*translation.Coordinator](i)
		gate := do.MustInvoke[*gating.Gate](i)
		sink := do.MustInvoke[output.Sink](i)
		repo := do.MustInvoke[repository.Repository](i)
		notifier := do.MustInvoke[notify.Notifier](i)
		return New(rec, tr, gate, sink, repo, notifier), nil
	})
}
