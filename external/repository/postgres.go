package repository

import (
	"context"
	"errors"

	"github.com/foxseedlab/vox/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionColumns = `id, started_at, ended_at, status, stop_reason, segment_count, created_at, updated_at`

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}

func scanSession(row pgx.Row) (*repository.Session, error) {
	var s repository.Session
	err := row.Scan(&s.ID, &s.StartedAt, &s.EndedAt, &s.Status, &s.StopReason, &s.SegmentCount, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresRepository) CreateSession(ctx context.Context, input repository.CreateSessionInput) (*repository.Session, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO dictation_sessions (started_at, status)
		 VALUES ($1, 'running')
		 RETURNING `+sessionColumns,
		input.StartedAt)
	return scanSession(row)
}

// UpdateSessionCompleted also freezes the number of segments stored for the session.
func (r *PostgresRepository) UpdateSessionCompleted(ctx context.Context, input repository.CompleteSessionInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE dictation_sessions
		 SET status = 'completed', ended_at = $2, stop_reason = $3, updated_at = NOW(),
		     segment_count = (SELECT COUNT(*) FROM dictation_segments WHERE session_id = $1)
		 WHERE id = $1`,
		input.SessionID, input.EndedAt, input.StopReason)
	return err
}

func (r *PostgresRepository) GetRunningSession(ctx context.Context) (*repository.Session, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+`
		 FROM dictation_sessions WHERE status = 'running'
		 ORDER BY started_at DESC LIMIT 1`)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func (r *PostgresRepository) InsertSegment(ctx context.Context, input repository.InsertSegmentInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO dictation_segments (session_id, source_text, translated_text, segment_index, spoken_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		input.SessionID, input.SourceText, input.TranslatedText, input.SegmentIndex, input.SpokenAt)
	return err
}

func (r *PostgresRepository) ListSegmentsBySessionID(ctx context.Context, sessionID string) ([]repository.Segment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, source_text, translated_text, segment_index, spoken_at, created_at
		 FROM dictation_segments WHERE session_id = $1 ORDER BY segment_index ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.Segment
	for rows.Next() {
		var seg repository.Segment
		if err := rows.Scan(&seg.ID, &seg.SessionID, &seg.SourceText, &seg.TranslatedText, &seg.SegmentIndex, &seg.SpokenAt, &seg.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, seg)
	}
	return list, rows.Err()
}
