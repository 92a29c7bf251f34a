package output

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/foxseedlab/vox/internal/output"
)

// ConsoleSink writes one line per translation.
type ConsoleSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

func (s *ConsoleSink) Name() string { return "console" }

func (s *ConsoleSink) Emit(_ context.Context, out output.Output) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.w, out.Text)
	return err
}
