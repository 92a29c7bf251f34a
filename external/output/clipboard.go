package output

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/foxseedlab/vox/internal/output"
	"github.com/micmonay/keybd_event"
)

const (
	clipboardSettleDelay = 80 * time.Millisecond
	pasteSettleDelay     = 120 * time.Millisecond
)

type clipboardAccess interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// ClipboardSink types each translation into the focused window by pasting
// it, then puts the user's previous clipboard content back.
type ClipboardSink struct {
	mu          sync.Mutex
	clipboard   clipboardAccess
	paste       func() error
	settleDelay time.Duration
	pasteDelay  time.Duration
}

func NewClipboardSink() *ClipboardSink {
	return &ClipboardSink{
		clipboard:   systemClipboard{},
		paste:       pressPaste,
		settleDelay: clipboardSettleDelay,
		pasteDelay:  pasteSettleDelay,
	}
}

func (s *ClipboardSink) Name() string { return "clipboard" }

func (s *ClipboardSink) Emit(ctx context.Context, out output.Output) error {
	if out.Text == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, readErr := s.clipboard.ReadAll()
	if readErr != nil {
		slog.Debug("clipboard could not be read; it will not be restored", "error", readErr)
	}

	if err := s.clipboard.WriteAll(out.Text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	if err := sleepCtx(ctx, s.settleDelay); err != nil {
		return err
	}
	if err := s.paste(); err != nil {
		return fmt.Errorf("failed to paste: %w", err)
	}
	if err := sleepCtx(ctx, s.pasteDelay); err != nil {
		return err
	}

	if readErr == nil {
		if err := s.clipboard.WriteAll(previous); err != nil {
			slog.Warn("failed to restore clipboard", "error", err)
		}
	}
	return nil
}

func pressPaste() error {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return err
	}
	kb.HasCTRL(true)
	kb.SetKeys(keybd_event.VK_V)
	return kb.Launching()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
