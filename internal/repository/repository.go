package repository

import (
	"context"
	"time"
)

type CreateSessionInput struct {
	StartedAt time.Time
}

type CompleteSessionInput struct {
	SessionID  string
	EndedAt    time.Time
	StopReason string
}

type InsertSegmentInput struct {
	SessionID      string
	SourceText     string
	TranslatedText string
	SegmentIndex   int
	SpokenAt       time.Time
}

type SessionRepository interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*Session, error)
	UpdateSessionCompleted(ctx context.Context, input CompleteSessionInput) error
	// GetRunningSession returns nil when no session is marked running.
	GetRunningSession(ctx context.Context) (*Session, error)
}

type SegmentRepository interface {
	InsertSegment(ctx context.Context, input InsertSegmentInput) error
	ListSegmentsBySessionID(ctx context.Context, sessionID string) ([]Segment, error)
}

type Repository interface {
	SessionRepository
	SegmentRepository
}
