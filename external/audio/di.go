package audio

import (
	"github.com/foxseedlab/vox/internal/audio"
	"github.com/foxseedlab/vox/internal/config"
	"github.com/foxseedlab/vox/internal/discord"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.ProvideValue(injector, audio.PacketDecoderFactory(NewOpusDecoder))
	do.Provide(injector, func(i do.Injector) (audio.Microphone, error) {
		c := do.MustInvoke[*config.Config](i)
		switch c.MicrophoneSource {
		case config.MicrophoneWAV:
			return NewWAVMicrophone(c.MicrophoneWAVPath, c.MicrophoneChunkDuration, true), nil
		case config.MicrophoneDiscord:
			client := do.MustInvoke[discord.Client](i)
			factory := do.MustInvoke[audio.PacketDecoderFactory](i)
			return NewDiscordVoiceMicrophone(client, c.DiscordGuildID, c.DiscordVoiceChannel, factory), nil
		default:
			return NewPortAudioMicrophone(c.MicrophoneChunkDuration), nil
		}
	})
}
