package repository

import (
	"context"
	"os"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/rehasoft/rehab-center-api/internal/models"
)

func newAvailabilityRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAvailabilityRepositoryGetByTherapist(t *testing.T) {
	db, mock, cleanup := newAvailabilityRepoMock(t)
	defer cleanup()

	repo := NewAvailabilityRepository(db)
	rows := sqlmock.NewRows([]string{"id", "therapist_id", "recurring_schedule", "exceptions", "preferences", "metrics", "created_at", "updated_at"}).
		AddRow("avail-1", "therapist-1",
			[]byte(`[{"day_of_week":"MON","start_time":"08:00","end_time":"16:00"}]`),
			[]byte(`[]`),
			[]byte(`{"max_sessions_per_day":3}`),
			[]byte(`{}`),
			time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM therapist_availabilities WHERE therapist_id = $1")).
		WithArgs("therapist-1").
		WillReturnRows(rows)

	availability, err := repo.GetByTherapist(context.Background(), "therapist-1")
	require.NoError(t, err)
	require.Equal(t, "avail-1", availability.ID)
	require.Len(t, availability.RecurringSchedule, 1)
	require.Equal(t, "MON", availability.RecurringSchedule[0].DayOfWeek)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newAvailabilityRepoMock(t)
	defer cleanup()

	repo := NewAvailabilityRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO therapist_availabilities")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	availability := &models.TherapistAvailability{
		TherapistID: "therapist-1",
		RecurringSchedule: []models.AvailabilitySlot{
			{DayOfWeek: "MON", StartTime: "08:00", EndTime: "16:00"},
		},
	}
	require.NoError(t, repo.Upsert(context.Background(), availability))
	require.NotEmpty(t, availability.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryUpdateMetrics(t *testing.T) {
	db, mock, cleanup := newAvailabilityRepoMock(t)
	defer cleanup()

	repo := NewAvailabilityRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE therapist_availabilities SET metrics")).
		WithArgs("therapist-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	metrics := models.AvailabilityMetrics{CancellationRate: 0.2}
	require.NoError(t, repo.UpdateMetrics(context.Background(), "therapist-1", metrics))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityTableMatchesSchema(t *testing.T) {
	ddl, err := os.ReadFile("../../scripts/schema.sql")
	require.NoError(t, err)
	require.Contains(t, string(ddl), "CREATE TABLE IF NOT EXISTS therapist_availabilities (")
}
