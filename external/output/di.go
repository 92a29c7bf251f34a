package output

import (
	"fmt"
	"os"

	"github.com/foxseedlab/vox/external/discord"
	"github.com/foxseedlab/vox/external/webhook"
	"github.com/foxseedlab/vox/internal/config"
	discordpkg "github.com/foxseedlab/vox/internal/discord"
	"github.com/foxseedlab/vox/internal/metrics"
	"github.com/foxseedlab/vox/internal/output"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (output.Sink, error) {
		c := do.MustInvoke[*config.Config](i)
		m := do.MustInvoke[*metrics.Metrics](i)

		sinks := make([]output.Sink, 0, len(c.OutputSinks))
		for _, name := range c.OutputSinks {
			switch name {
			case config.SinkConsole:
				sinks = append(sinks, NewConsoleSink(os.Stdout))
			case config.SinkClipboard:
				sinks = append(sinks, NewClipboardSink())
			case config.SinkWebhook:
				sinks = append(sinks, do.MustInvoke[*webhook.HTTPSink](i))
			case config.SinkDiscord:
				client := do.MustInvoke[discordpkg.Client](i)
				sinks = append(sinks, discord.NewChannelSink(client, c.DiscordTextChannelID))
			case config.SinkKafka:
				sinks = append(sinks, NewKafkaSink(c.KafkaBrokers, c.KafkaTopic))
			default:
				return nil, fmt.Errorf("unknown output sink %q", name)
			}
		}
		return output.NewFanout(m, sinks...), nil
	})
}
