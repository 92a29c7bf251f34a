package recognizer

import (
	"context"
	"strings"
)

type Kind string

const (
	KindPartial Kind = "partial"
	KindFinal   Kind = "final"
)

// Result is one recognition response for a window of audio.
type Result struct {
	Kind Kind
	Text string
}

func Partial(text string) Result { return Result{Kind: KindPartial, Text: text} }
func Final(text string) Result   { return Result{Kind: KindFinal, Text: text} }

// IsEmpty reports whether the result carries no usable text.
func (r Result) IsEmpty() bool {
	return strings.TrimSpace(r.Text) == ""
}

type Recognizer interface {
	Recognize(ctx context.Context, pcm []byte) (Result, error)
}

// StatusChecker is implemented by recognizers that expose a health check.
type StatusChecker interface {
	Status(ctx context.Context) (string, error)
}
