package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/rehasoft/rehab-center-api/internal/models"
)

func newSessionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func sessionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "therapist_id", "beneficiary_id", "plan_id", "date", "start_time", "end_time", "status", "attendance", "rating", "created_at", "updated_at"})
}

func TestSessionRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO therapy_sessions")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	session := &models.TherapySession{
		TherapistID:   "therapist-1",
		BeneficiaryID: "beneficiary-1",
		Date:          "2025-03-03",
		StartTime:     "09:00",
		EndTime:       "10:00",
		Status:        models.SessionScheduled,
	}
	require.NoError(t, repo.Create(context.Background(), session))
	require.NotEmpty(t, session.ID)
	require.False(t, session.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryCreateDuplicateSlot(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO therapy_sessions")).
		WillReturnError(&pq.Error{Code: "23505"})

	session := &models.TherapySession{
		TherapistID:   "therapist-1",
		BeneficiaryID: "beneficiary-1",
		Date:          "2025-03-03",
		StartTime:     "09:00",
		EndTime:       "10:00",
		Status:        models.SessionScheduled,
	}
	err := repo.Create(context.Background(), session)
	require.ErrorIs(t, err, ErrDuplicateSlot)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryUpdateSlotDuplicate(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE therapy_sessions SET date")).
		WillReturnError(&pq.Error{Code: "23505"})

	session := &models.TherapySession{
		ID:        "sess-1",
		Date:      "2025-03-03",
		StartTime: "09:00",
		EndTime:   "10:00",
		Status:    models.SessionScheduled,
	}
	require.ErrorIs(t, repo.UpdateSlot(context.Background(), session), ErrDuplicateSlot)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	rows := sessionRows().
		AddRow("sess-1", "therapist-1", "beneficiary-1", nil, "2025-03-03", "09:00", "10:00", "SCHEDULED", nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, therapist_id, beneficiary_id")).
		WithArgs("therapist-1", "SCHEDULED").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("therapist-1", "SCHEDULED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	sessions, total, err := repo.List(context.Background(), models.SessionFilter{
		TherapistID: "therapist-1",
		Status:      "scheduled",
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, sessions, 1)
	require.Equal(t, "sess-1", sessions[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, therapist_id, beneficiary_id")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListOccupying(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	rows := sessionRows().
		AddRow("sess-1", "therapist-1", "beneficiary-1", nil, "2025-03-03", "09:00", "10:00", "CONFIRMED", nil, nil, time.Now(), time.Now()).
		AddRow("sess-2", "therapist-1", "beneficiary-2", nil, "2025-03-03", "11:00", "12:00", "SCHEDULED", nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("status = ANY($3) ORDER BY start_time")).
		WithArgs("therapist-1", "2025-03-03", sqlmock.AnyArg()).
		WillReturnRows(rows)

	sessions, err := repo.ListOccupying(context.Background(), "therapist-1", "2025-03-03")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, "09:00", sessions[0].StartTime)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryCountOccupyingExcludesSession(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("status = ANY($3) AND id <> $4")).
		WithArgs("therapist-1", "2025-03-03", sqlmock.AnyArg(), "sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	total, err := repo.CountOccupying(context.Background(), "therapist-1", "2025-03-03", "sess-1")
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryStatusCounts(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	rows := sqlmock.NewRows([]string{"status", "total"}).
		AddRow("COMPLETED", 6).
		AddRow("CANCELLED_BY_PATIENT", 2).
		AddRow("NO_SHOW", 1)
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY status")).
		WithArgs("therapist-1").
		WillReturnRows(rows)

	counts, err := repo.StatusCounts(context.Background(), "therapist-1")
	require.NoError(t, err)
	require.Equal(t, 6, counts[models.SessionCompleted])
	require.Equal(t, 2, counts[models.SessionCancelledByPatient])
	require.Equal(t, 1, counts[models.SessionNoShow])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryUpdateOutcome(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	attendance := "PRESENT"
	rating := 5
	mock.ExpectExec(regexp.QuoteMeta("UPDATE therapy_sessions SET attendance")).
		WithArgs("sess-1", &attendance, &rating, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateOutcome(context.Background(), "sess-1", &attendance, &rating))
	require.NoError(t, mock.ExpectationsWereMet())
}
