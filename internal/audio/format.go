package audio

import "time"

const (
	SampleRate     = 16000
	Channels       = 1
	BytesPerSample = 2

	// WindowBytes is one second of capture audio.
	WindowBytes = SampleRate * Channels * BytesPerSample
)

// Format describes raw little-endian PCM.
type Format struct {
	SampleRate     int
	Channels       int
	BytesPerSample int
}

func DefaultFormat() Format {
	return Format{SampleRate: SampleRate, Channels: Channels, BytesPerSample: BytesPerSample}
}

func (f Format) BytesPerSecond() int {
	return f.SampleRate * f.Channels * f.BytesPerSample
}

// BytesFor returns the byte length of d worth of audio, aligned to whole frames.
func (f Format) BytesFor(d time.Duration) int {
	frame := f.Channels * f.BytesPerSample
	frames := int(int64(f.SampleRate) * int64(d) / int64(time.Second))
	if frames < 1 {
		frames = 1
	}
	return frames * frame
}
