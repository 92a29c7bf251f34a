//go:build opus

package audio

import (
	"errors"
	"fmt"

	"github.com/foxseedlab/vox/internal/audio"
	"github.com/hraban/opus"
)

const (
	opusSampleRate = 48000
	opusChannels   = 2
	// 120ms is the longest frame an Opus packet can carry.
	maxFrameSamples = opusSampleRate * 120 / 1000 * opusChannels
)

// OpusDecoder decodes Discord voice packets into 16kHz mono PCM.
type OpusDecoder struct {
	dec *opus.Decoder
	pcm []int16
}

func NewOpusDecoder() (audio.PacketDecoder, error) {
	dec, err := opus.NewDecoder(opusSampleRate, opusChannels)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus decoder: %w", err)
	}
	return &OpusDecoder{dec: dec, pcm: make([]int16, maxFrameSamples)}, nil
}

func (d *OpusDecoder) Decode(packet []byte) ([]byte, error) {
	if len(packet) == 0 {
		return nil, errors.New("empty opus packet")
	}
	n, err := d.dec.Decode(packet, d.pcm)
	if err != nil {
		return nil, fmt.Errorf("failed to decode opus packet: %w", err)
	}
	return convertPCM(d.pcm[:n*opusChannels], opusSampleRate, opusChannels, audio.SampleRate), nil
}

func (d *OpusDecoder) Close() {}
