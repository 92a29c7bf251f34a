package audio

import "context"

// Capture is a live microphone stream. Chunks arrive in capture order.
// Both channels are closed once the capture ends.
type Capture interface {
	Chunks() <-chan []byte
	Errors() <-chan error
	Close() error
}

type Microphone interface {
	Open(ctx context.Context, format Format) (Capture, error)
}

// PacketDecoder turns one compressed voice packet into capture-format PCM.
type PacketDecoder interface {
	Decode(packet []byte) ([]byte, error)
	Close()
}

type PacketDecoderFactory func() (PacketDecoder, error)
