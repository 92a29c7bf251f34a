//go:build !portaudio

package audio

import (
	"context"
	"errors"
	"time"

	"github.com/foxseedlab/vox/internal/audio"
)

var ErrPortAudioUnavailable = errors.New("microphone capture requires building with -tags portaudio")

type PortAudioMicrophone struct{}

func NewPortAudioMicrophone(time.Duration) *PortAudioMicrophone {
	return &PortAudioMicrophone{}
}

func (m *PortAudioMicrophone) Open(context.Context, audio.Format) (audio.Capture, error) {
	return nil, ErrPortAudioUnavailable
}
