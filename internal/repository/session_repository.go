package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/rehasoft/rehab-center-api/internal/models"
)

// ErrDuplicateSlot is returned when the storage-level uniqueness constraint
// on (therapist_id, date, start_time) rejects a write. The scheduler treats
// it as a conflict outcome.
var ErrDuplicateSlot = errors.New("session slot already booked")

const pqUniqueViolation = "23505"

// SessionRepository provides persistence for therapy sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = "id, therapist_id, beneficiary_id, plan_id, date, start_time, end_time, status, attendance, rating, created_at, updated_at"

// List returns sessions with optional filtering and pagination.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.TherapySession, int, error) {
	base := "FROM therapy_sessions WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TherapistID != "" {
		conditions = append(conditions, fmt.Sprintf("therapist_id = $%d", len(args)+1))
		args = append(args, filter.TherapistID)
	}
	if filter.BeneficiaryID != "" {
		conditions = append(conditions, fmt.Sprintf("beneficiary_id = $%d", len(args)+1))
		args = append(args, filter.BeneficiaryID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, strings.ToUpper(filter.Status))
	}
	if filter.DateFrom != "" {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, filter.DateTo)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"date":       true,
		"start_time": true,
		"status":     true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, start_time ASC LIMIT %d OFFSET %d", sessionColumns, base, sortBy, order, size, offset)
	var sessions []models.TherapySession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	return sessions, total, nil
}

// FindByID loads a session by id.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.TherapySession, error) {
	query := fmt.Sprintf("SELECT %s FROM therapy_sessions WHERE id = $1", sessionColumns)
	var session models.TherapySession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListOccupying returns the sessions that hold a slot for a therapist on a
// date, ordered by start time. Cancelled and no-show sessions are excluded.
func (r *SessionRepository) ListOccupying(ctx context.Context, therapistID, date string) ([]models.TherapySession, error) {
	query := fmt.Sprintf("SELECT %s FROM therapy_sessions WHERE therapist_id = $1 AND date = $2 AND status = ANY($3) ORDER BY start_time ASC", sessionColumns)
	var sessions []models.TherapySession
	if err := r.db.SelectContext(ctx, &sessions, query, therapistID, date, pq.Array(models.OccupyingStatuses())); err != nil {
		return nil, fmt.Errorf("list occupying sessions: %w", err)
	}
	return sessions, nil
}

// CountOccupying counts slot-holding sessions for a therapist on a date.
// A non-empty excludeSessionID leaves that session out of the count, so a
// reschedule does not count the session being moved against the daily cap.
func (r *SessionRepository) CountOccupying(ctx context.Context, therapistID, date, excludeSessionID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM therapy_sessions WHERE therapist_id = $1 AND date = $2 AND status = ANY($3) AND id <> $4`, therapistID, date, pq.Array(models.OccupyingStatuses()), excludeSessionID); err != nil {
		return 0, fmt.Errorf("count occupying sessions: %w", err)
	}
	return total, nil
}

// CountCompletedWith counts completed sessions between a beneficiary and a
// therapist, used for continuity-of-care scoring.
func (r *SessionRepository) CountCompletedWith(ctx context.Context, beneficiaryID, therapistID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM therapy_sessions WHERE beneficiary_id = $1 AND therapist_id = $2 AND status = $3`, beneficiaryID, therapistID, string(models.SessionCompleted)); err != nil {
		return 0, fmt.Errorf("count completed sessions: %w", err)
	}
	return total, nil
}

// StatusCounts returns session totals per status for a therapist.
func (r *SessionRepository) StatusCounts(ctx context.Context, therapistID string) (map[models.SessionStatus]int, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT status, COUNT(*) AS total FROM therapy_sessions WHERE therapist_id = $1 GROUP BY status`, therapistID)
	if err != nil {
		return nil, fmt.Errorf("session status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.SessionStatus]int)
	for rows.Next() {
		var status string
		var total int
		if err := rows.Scan(&status, &total); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[models.SessionStatus(status)] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session status counts: %w", err)
	}
	return counts, nil
}

// AverageRating returns the mean rating across rated sessions of a therapist.
func (r *SessionRepository) AverageRating(ctx context.Context, therapistID string) (float64, error) {
	var avg float64
	if err := r.db.GetContext(ctx, &avg, `SELECT COALESCE(AVG(rating), 0) FROM therapy_sessions WHERE therapist_id = $1 AND rating IS NOT NULL`, therapistID); err != nil {
		return 0, fmt.Errorf("average session rating: %w", err)
	}
	return avg, nil
}

// Create stores a new session record. A unique-violation on the occupied
// slot index surfaces as ErrDuplicateSlot.
func (r *SessionRepository) Create(ctx context.Context, session *models.TherapySession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	const query = `INSERT INTO therapy_sessions (id, therapist_id, beneficiary_id, plan_id, date, start_time, end_time, status, attendance, rating, created_at, updated_at) VALUES (:id, :therapist_id, :beneficiary_id, :plan_id, :date, :start_time, :end_time, :status, :attendance, :rating, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlot
		}
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// UpdateSlot rewrites the date/time identity of a session and its status.
// Used only by the reschedule flow.
func (r *SessionRepository) UpdateSlot(ctx context.Context, session *models.TherapySession) error {
	session.UpdatedAt = time.Now().UTC()
	const query = `UPDATE therapy_sessions SET date = :date, start_time = :start_time, end_time = :end_time, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlot
		}
		return fmt.Errorf("update session slot: %w", err)
	}
	return nil
}

// UpdateOutcome records attendance and rating for a session.
func (r *SessionRepository) UpdateOutcome(ctx context.Context, id string, attendance *string, rating *int) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE therapy_sessions SET attendance = COALESCE($2, attendance), rating = COALESCE($3, rating), updated_at = $4 WHERE id = $1`, id, attendance, rating, time.Now().UTC()); err != nil {
		return fmt.Errorf("update session outcome: %w", err)
	}
	return nil
}

// UpdateStatus sets the status of a session.
func (r *SessionRepository) UpdateStatus(ctx context.Context, id string, status models.SessionStatus) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE therapy_sessions SET status = $2, updated_at = $3 WHERE id = $1`, id, string(status), time.Now().UTC()); err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}
