package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/foxseedlab/vox/internal/audio"
	"github.com/foxseedlab/vox/internal/discord"
)

// DiscordVoiceMicrophone captures speech from a Discord voice channel.
// Each speaker gets their own decoder so packet state never mixes.
type DiscordVoiceMicrophone struct {
	client     discord.Client
	guildID    string
	channelID  string
	newDecoder audio.PacketDecoderFactory
}

func NewDiscordVoiceMicrophone(client discord.Client, guildID, channelID string, newDecoder audio.PacketDecoderFactory) *DiscordVoiceMicrophone {
	return &DiscordVoiceMicrophone{
		client:     client,
		guildID:    guildID,
		channelID:  channelID,
		newDecoder: newDecoder,
	}
}

func (m *DiscordVoiceMicrophone) Open(ctx context.Context, format audio.Format) (audio.Capture, error) {
	if format.SampleRate != audio.SampleRate || format.Channels != audio.Channels {
		return nil, fmt.Errorf("discord voice only supports %dHz mono capture", audio.SampleRate)
	}
	vc, err := m.client.JoinVoiceChannel(m.guildID, m.channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}

	finished := make(chan struct{})
	capture := audio.NewChannelCapture(0, func() error {
		err := vc.Disconnect()
		<-finished
		return err
	})

	go func() {
		defer close(finished)
		defer capture.Finish()

		var mu sync.Mutex
		decoders := make(map[string]audio.PacketDecoder)
		defer func() {
			mu.Lock()
			defer mu.Unlock()
			for _, d := range decoders {
				d.Close()
			}
		}()

		vc.ReceiveAudio(func(userID string, packet []byte) {
			if len(packet) == 0 {
				return
			}
			mu.Lock()
			dec, ok := decoders[userID]
			if !ok {
				var derr error
				if dec, derr = m.newDecoder(); derr != nil {
					mu.Unlock()
					capture.Fail(fmt.Errorf("failed to create decoder for user %s: %w", userID, derr))
					return
				}
				decoders[userID] = dec
			}
			pcm, err := dec.Decode(packet)
			mu.Unlock()
			if err != nil {
				slog.Debug("dropping undecodable voice packet", "user_id", userID, "error", err)
				return
			}
			capture.Send(pcm)
		})
	}()

	go func() {
		select {
		case <-ctx.Done():
			_ = capture.Close()
		case <-capture.Done():
		}
	}()

	return capture, nil
}
