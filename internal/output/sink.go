package output

import (
	"context"
	"time"
)

// Output is one translated segment handed to the sinks.
type Output struct {
	SessionID    string    `json:"session_id"`
	SegmentIndex int       `json:"segment_index"`
	Source       string    `json:"source"`
	Text         string    `json:"text"`
	EmittedAt    time.Time `json:"emitted_at"`
}

type Sink interface {
	Name() string
	Emit(ctx context.Context, out Output) error
}

// Transcript is the full history of one dictation session.
type Transcript struct {
	SessionID string
	Filename  string
	Body      []byte
}

// TranscriptPublisher is implemented by sinks that also accept the
// transcript of a finished session.
type TranscriptPublisher interface {
	PublishTranscript(ctx context.Context, transcript Transcript) error
}
