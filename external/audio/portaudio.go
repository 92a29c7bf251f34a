//go:build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/foxseedlab/vox/internal/audio"
	"github.com/gordonklaus/portaudio"
)

// PortAudioMicrophone reads the default input device.
type PortAudioMicrophone struct {
	chunkDuration time.Duration
}

func NewPortAudioMicrophone(chunkDuration time.Duration) *PortAudioMicrophone {
	return &PortAudioMicrophone{chunkDuration: chunkDuration}
}

func (m *PortAudioMicrophone) Open(ctx context.Context, format audio.Format) (audio.Capture, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	in := make([]int16, format.BytesFor(m.chunkDuration)/format.BytesPerSample)
	stream, err := portaudio.OpenDefaultStream(format.Channels, 0, float64(format.SampleRate), len(in)/format.Channels, in)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to start input stream: %w", err)
	}

	finished := make(chan struct{})
	capture := audio.NewChannelCapture(0, func() error {
		<-finished
		return nil
	})

	go func() {
		defer close(finished)
		defer capture.Finish()
		defer func() {
			_ = stream.Stop()
			_ = stream.Close()
			_ = portaudio.Terminate()
		}()

		for {
			select {
			case <-capture.Done():
				return
			case <-ctx.Done():
				return
			default:
			}
			if err := stream.Read(); err != nil {
				slog.Warn("microphone read failed", "error", err)
				capture.Fail(fmt.Errorf("failed to read microphone: %w", err))
				continue
			}
			if !capture.Send(int16ToBytes(in)) {
				return
			}
		}
	}()

	return capture, nil
}
