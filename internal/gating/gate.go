// Package gating decides from recognized text whether dictation output is on.
package gating

import (
	"strings"
	"sync"
)

const (
	DefaultActivationPhrase   = "vox başla"
	DefaultDeactivationPhrase = "vox dur"
)

type Event int

const (
	// EventNone means the text is ordinary dictation.
	EventNone Event = iota
	EventActivated
	EventDeactivated
)

func (e Event) String() string {
	switch e {
	case EventActivated:
		return "activated"
	case EventDeactivated:
		return "deactivated"
	default:
		return "none"
	}
}

// Gate matches phrases case-insensitively anywhere in the text. The
// activation phrase wins when a text contains both.
type Gate struct {
	activationPhrase   string
	deactivationPhrase string
	activation         string
	deactivation       string

	mu     sync.Mutex
	active bool
}

func New(activation, deactivation string) *Gate {
	if strings.TrimSpace(activation) == "" {
		activation = DefaultActivationPhrase
	}
	if strings.TrimSpace(deactivation) == "" {
		deactivation = DefaultDeactivationPhrase
	}
	return &Gate{
		activationPhrase:   activation,
		deactivationPhrase: deactivation,
		activation:         strings.ToLower(activation),
		deactivation:       strings.ToLower(deactivation),
	}
}

func (g *Gate) ActivationPhrase() string   { return g.activationPhrase }
func (g *Gate) DeactivationPhrase() string { return g.deactivationPhrase }

// Inspect updates the gate from text and reports which control phrase, if
// any, it contained.
func (g *Gate) Inspect(text string) Event {
	lower := strings.ToLower(text)
	g.mu.Lock()
	defer g.mu.Unlock()
	switch {
	case strings.Contains(lower, g.activation):
		g.active = true
		return EventActivated
	case strings.Contains(lower, g.deactivation):
		g.active = false
		return EventDeactivated
	default:
		return EventNone
	}
}

func (g *Gate) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

func (g *Gate) SetActive(active bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active = active
}
