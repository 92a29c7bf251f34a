package session

import (
	"github.com/foxseedlab/vox/internal/audio"
	"github.com/foxseedlab/vox/internal/config"
	"github.com/foxseedlab/vox/internal/metrics"
	"github.com/foxseedlab/vox/internal/recognizer"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Session, error) {
		cfg := do.MustInvoke[*config.Config](i)
		mic := do.MustInvoke[audio.Microphone](i)
		rec := do.MustInvoke[recognizer.Recognizer](i)
		m := do.MustInvoke[*metrics.Metrics](i)
		return New(Config{
			Format:           audio.DefaultFormat(),
			WindowBytes:      audio.WindowBytes,
			SilenceTimeout:   cfg.SilenceTimeout,
			CheckInterval:    cfg.SilenceCheckInterval,
			RecognizeTimeout: cfg.RecognizeTimeout,
			Metrics:          m,
		}, mic, rec), nil
	})
}
