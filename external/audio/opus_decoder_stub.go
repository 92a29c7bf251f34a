//go:build !opus

package audio

import (
	"errors"

	"github.com/foxseedlab/vox/internal/audio"
)

var ErrOpusUnavailable = errors.New("opus decoding requires building with -tags opus")

func NewOpusDecoder() (audio.PacketDecoder, error) {
	return nil, ErrOpusUnavailable
}
