package phrases

import (
	"github.com/foxseedlab/vox/internal/config"
	"github.com/foxseedlab/vox/internal/translation"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*translation.PhraseTable, error) {
		c := do.MustInvoke[*config.Config](i)
		return Load(c.PhraseTablePath)
	})
}
