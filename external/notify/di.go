package notify

import (
	"github.com/foxseedlab/vox/internal/config"
	"github.com/foxseedlab/vox/internal/notify"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (notify.Notifier, error) {
		c := do.MustInvoke[*config.Config](i)
		if !c.DesktopNotifications {
			return notify.Nop{}, nil
		}
		return NewDesktopNotifier(""), nil
	})
}
