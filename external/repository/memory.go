package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/foxseedlab/vox/internal/repository"
	"github.com/google/uuid"
)

// MemoryRepository keeps history for the lifetime of the process.
type MemoryRepository struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[string]*repository.Session
	segments map[string][]repository.Segment
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		now:      time.Now,
		sessions: make(map[string]*repository.Session),
		segments: make(map[string][]repository.Segment),
	}
}

func (r *MemoryRepository) CreateSession(_ context.Context, input repository.CreateSessionInput) (*repository.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	s := &repository.Session{
		ID:        uuid.NewString(),
		StartedAt: input.StartedAt,
		Status:    repository.SessionStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.sessions[s.ID] = s
	out := *s
	return &out, nil
}

func (r *MemoryRepository) UpdateSessionCompleted(_ context.Context, input repository.CompleteSessionInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[input.SessionID]
	if !ok {
		return nil
	}
	endedAt := input.EndedAt
	s.EndedAt = &endedAt
	s.Status = repository.SessionStatusCompleted
	s.StopReason = input.StopReason
	s.SegmentCount = len(r.segments[input.SessionID])
	s.UpdatedAt = r.now()
	return nil
}

func (r *MemoryRepository) GetRunningSession(_ context.Context) (*repository.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *repository.Session
	for _, s := range r.sessions {
		if s.Status != repository.SessionStatusRunning {
			continue
		}
		if latest == nil || s.StartedAt.After(latest.StartedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

func (r *MemoryRepository) InsertSegment(_ context.Context, input repository.InsertSegmentInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[input.SessionID]; !ok {
		return fmt.Errorf("session %s does not exist", input.SessionID)
	}
	for _, seg := range r.segments[input.SessionID] {
		if seg.SegmentIndex == input.SegmentIndex {
			return fmt.Errorf("segment %d already exists in session %s", input.SegmentIndex, input.SessionID)
		}
	}
	r.segments[input.SessionID] = append(r.segments[input.SessionID], repository.Segment{
		ID:             uuid.NewString(),
		SessionID:      input.SessionID,
		SourceText:     input.SourceText,
		TranslatedText: input.TranslatedText,
		SegmentIndex:   input.SegmentIndex,
		SpokenAt:       input.SpokenAt,
		CreatedAt:      r.now(),
	})
	return nil
}

func (r *MemoryRepository) ListSegmentsBySessionID(_ context.Context, sessionID string) ([]repository.Segment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := append([]repository.Segment(nil), r.segments[sessionID]...)
	sort.Slice(list, func(i, j int) bool { return list[i].SegmentIndex < list[j].SegmentIndex })
	return list, nil
}
