package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/foxseedlab/vox/internal/audio"
	"github.com/go-audio/wav"
)

// WAVMicrophone replays a WAV file as if it were spoken into a microphone.
// Any sample rate or channel count is converted to the requested format.
type WAVMicrophone struct {
	path          string
	chunkDuration time.Duration
	realtime      bool
}

func NewWAVMicrophone(path string, chunkDuration time.Duration, realtime bool) *WAVMicrophone {
	return &WAVMicrophone{path: path, chunkDuration: chunkDuration, realtime: realtime}
}

func (m *WAVMicrophone) Open(ctx context.Context, format audio.Format) (audio.Capture, error) {
	pcm, err := m.readPCM(format)
	if err != nil {
		return nil, err
	}

	chunkSize := format.BytesFor(m.chunkDuration)
	finished := make(chan struct{})
	capture := audio.NewChannelCapture(0, func() error {
		<-finished
		return nil
	})

	go func() {
		defer close(finished)
		defer capture.Finish()

		var ticker *time.Ticker
		if m.realtime {
			ticker = time.NewTicker(m.chunkDuration)
			defer ticker.Stop()
		}
		for off := 0; off < len(pcm); off += chunkSize {
			end := min(off+chunkSize, len(pcm))
			if !capture.Send(pcm[off:end]) {
				return
			}
			if ticker == nil {
				continue
			}
			select {
			case <-ticker.C:
			case <-capture.Done():
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return capture, nil
}

func (m *WAVMicrophone) readPCM(format audio.Format) ([]byte, error) {
	f, err := os.Open(m.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wav file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s is not a valid wav file", m.path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode wav file: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 {
		return nil, errors.New("wav file has no channel information")
	}

	samples := make([]int16, len(buf.Data))
	shift := int(dec.BitDepth) - 16
	for i, v := range buf.Data {
		switch {
		case shift > 0:
			v >>= shift
		case shift < 0:
			v <<= -shift
		}
		samples[i] = clampPCM(int32(v))
	}
	return convertPCM(samples, buf.Format.SampleRate, buf.Format.NumChannels, format.SampleRate), nil
}
