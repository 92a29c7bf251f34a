package translation

import (
	"github.com/foxseedlab/vox/internal/config"
	"github.com/foxseedlab/vox/internal/metrics"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Cache, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewCache(cfg.TranslationCacheSize), nil
	})
	do.Provide(injector, func(i do.Injector) (*Coordinator, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewCoordinator(CoordinatorConfig{
			Model:      cfg.TranslatorModel(),
			Credential: cfg.TranslatorCredential(),
			NewClient:  do.MustInvoke[ClientFactory](i),
			Cache:      do.MustInvoke[*Cache](i),
			Phrases:    do.MustInvoke[*PhraseTable](i),
			Metrics:    do.MustInvoke[*metrics.Metrics](i),
		}), nil
	})
}
