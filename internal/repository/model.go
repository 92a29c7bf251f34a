package repository

import "time"

type SessionStatus string

const (
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusCompleted SessionStatus = "completed"
)

// Session is one manual or phrase-driven dictation run.
type Session struct {
	ID           string
	StartedAt    time.Time
	EndedAt      *time.Time
	Status       SessionStatus
	StopReason   string
	SegmentCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Segment is one emitted translation together with its recognized source.
type Segment struct {
	ID             string
	SessionID      string
	SourceText     string
	TranslatedText string
	SegmentIndex   int
	SpokenAt       time.Time
	CreatedAt      time.Time
}
