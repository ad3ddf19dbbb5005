package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rehasoft/rehab-center-api/internal/models"
)

// SessionNoteRepository stores clinical documentation keyed by session.
type SessionNoteRepository struct {
	db *sqlx.DB
}

// NewSessionNoteRepository constructs a SessionNoteRepository.
func NewSessionNoteRepository(db *sqlx.DB) *SessionNoteRepository {
	return &SessionNoteRepository{db: db}
}

// Create stores a new SOAP note.
func (r *SessionNoteRepository) Create(ctx context.Context, note *models.SessionNote) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	note.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO session_notes (id, session_id, subjective, objective, assessment, plan, created_at) VALUES (:id, :session_id, :subjective, :objective, :assessment, :plan, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, note); err != nil {
		return fmt.Errorf("create session note: %w", err)
	}
	return nil
}

// GetBySession loads the note attached to a session.
func (r *SessionNoteRepository) GetBySession(ctx context.Context, sessionID string) (*models.SessionNote, error) {
	const query = `SELECT id, session_id, subjective, objective, assessment, plan, created_at FROM session_notes WHERE session_id = $1 ORDER BY created_at DESC LIMIT 1`
	var note models.SessionNote
	if err := r.db.GetContext(ctx, &note, query, sessionID); err != nil {
		return nil, err
	}
	return &note, nil
}
