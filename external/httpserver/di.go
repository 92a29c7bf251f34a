package httpserver

import (
	"github.com/foxseedlab/vox/internal/config"
	"github.com/foxseedlab/vox/internal/pipeline"
	"github.com/foxseedlab/vox/internal/recognizer"
	"github.com/foxseedlab/vox/internal/translation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		deps := Dependencies{
			Controller:  do.MustInvoke[*pipeline.Pipeline](i),
			Translation: do.MustInvoke[*translation.Coordinator](i),
			Gatherer:    do.MustInvoke[*prometheus.Registry](i),
		}
		if checker, ok := do.MustInvoke[recognizer.Recognizer](i).(recognizer.StatusChecker); ok {
			deps.Recognizer = checker
		}
		return NewServer(cfg.MetricsAddr, NewRouter(deps)), nil
	})
}
