package webhook

import (
	"github.com/foxseedlab/vox/internal/config"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*HTTPSink, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewHTTPSink(c.OutputWebhookURL), nil
	})
}
