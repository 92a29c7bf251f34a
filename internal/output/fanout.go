package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/foxseedlab/vox/internal/metrics"
)

// Fanout emits every output to all of its sinks in order. A failing sink
// does not keep the others from receiving the text.
type Fanout struct {
	sinks   []Sink
	metrics *metrics.Metrics
}

func NewFanout(m *metrics.Metrics, sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks, metrics: m}
}

func (f *Fanout) Name() string { return "fanout" }

func (f *Fanout) Emit(ctx context.Context, out Output) error {
	var errs []error
	for _, s := range f.sinks {
		err := s.Emit(ctx, out)
		f.metrics.RecordOutput(s.Name(), err)
		if err != nil {
			slog.Error("failed to emit output", "error", err, "sink", s.Name(), "session_id", out.SessionID)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) PublishTranscript(ctx context.Context, transcript Transcript) error {
	var errs []error
	for _, s := range f.sinks {
		p, ok := s.(TranscriptPublisher)
		if !ok {
			continue
		}
		if err := p.PublishTranscript(ctx, transcript); err != nil {
			slog.Error("failed to publish transcript", "error", err, "sink", s.Name(), "session_id", transcript.SessionID)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Close releases sinks that hold connections.
func (f *Fanout) Close() error {
	var errs []error
	for _, s := range f.sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}
