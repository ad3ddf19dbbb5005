package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/rehasoft/rehab-center-api/internal/models"
)

// AvailabilityRepository manages persistence for therapist availability records.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs an AvailabilityRepository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// availabilityRow is the storage shape; the embedded documents live in JSONB columns.
type availabilityRow struct {
	ID                string         `db:"id"`
	TherapistID       string         `db:"therapist_id"`
	RecurringSchedule types.JSONText `db:"recurring_schedule"`
	Exceptions        types.JSONText `db:"exceptions"`
	Preferences       types.JSONText `db:"preferences"`
	Metrics           types.JSONText `db:"metrics"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func (row *availabilityRow) toModel() (*models.TherapistAvailability, error) {
	availability := &models.TherapistAvailability{
		ID:          row.ID,
		TherapistID: row.TherapistID,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if len(row.RecurringSchedule) > 0 {
		if err := json.Unmarshal(row.RecurringSchedule, &availability.RecurringSchedule); err != nil {
			return nil, fmt.Errorf("decode recurring schedule: %w", err)
		}
	}
	if len(row.Exceptions) > 0 {
		if err := json.Unmarshal(row.Exceptions, &availability.Exceptions); err != nil {
			return nil, fmt.Errorf("decode exceptions: %w", err)
		}
	}
	if len(row.Preferences) > 0 {
		if err := json.Unmarshal(row.Preferences, &availability.Preferences); err != nil {
			return nil, fmt.Errorf("decode preferences: %w", err)
		}
	}
	if len(row.Metrics) > 0 {
		if err := json.Unmarshal(row.Metrics, &availability.Metrics); err != nil {
			return nil, fmt.Errorf("decode metrics: %w", err)
		}
	}
	return availability, nil
}

func toRow(availability *models.TherapistAvailability) (*availabilityRow, error) {
	schedule, err := json.Marshal(availability.RecurringSchedule)
	if err != nil {
		return nil, fmt.Errorf("encode recurring schedule: %w", err)
	}
	exceptions, err := json.Marshal(availability.Exceptions)
	if err != nil {
		return nil, fmt.Errorf("encode exceptions: %w", err)
	}
	preferences, err := json.Marshal(availability.Preferences)
	if err != nil {
		return nil, fmt.Errorf("encode preferences: %w", err)
	}
	metrics, err := json.Marshal(availability.Metrics)
	if err != nil {
		return nil, fmt.Errorf("encode metrics: %w", err)
	}
	return &availabilityRow{
		ID:                availability.ID,
		TherapistID:       availability.TherapistID,
		RecurringSchedule: types.JSONText(schedule),
		Exceptions:        types.JSONText(exceptions),
		Preferences:       types.JSONText(preferences),
		Metrics:           types.JSONText(metrics),
		CreatedAt:         availability.CreatedAt,
		UpdatedAt:         availability.UpdatedAt,
	}, nil
}

const availabilityColumns = "id, therapist_id, recurring_schedule, exceptions, preferences, metrics, created_at, updated_at"

// GetByTherapist loads the availability record for a therapist.
func (r *AvailabilityRepository) GetByTherapist(ctx context.Context, therapistID string) (*models.TherapistAvailability, error) {
	query := fmt.Sprintf("SELECT %s FROM therapist_availabilities WHERE therapist_id = $1", availabilityColumns)
	var row availabilityRow
	if err := r.db.GetContext(ctx, &row, query, therapistID); err != nil {
		return nil, err
	}
	return row.toModel()
}

// Upsert stores the availability record, keyed by therapist.
func (r *AvailabilityRepository) Upsert(ctx context.Context, availability *models.TherapistAvailability) error {
	if availability.ID == "" {
		availability.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if availability.CreatedAt.IsZero() {
		availability.CreatedAt = now
	}
	availability.UpdatedAt = now

	row, err := toRow(availability)
	if err != nil {
		return err
	}

	const query = `INSERT INTO therapist_availabilities (id, therapist_id, recurring_schedule, exceptions, preferences, metrics, created_at, updated_at)
VALUES (:id, :therapist_id, :recurring_schedule, :exceptions, :preferences, :metrics, :created_at, :updated_at)
ON CONFLICT (therapist_id) DO UPDATE SET recurring_schedule = EXCLUDED.recurring_schedule, exceptions = EXCLUDED.exceptions, preferences = EXCLUDED.preferences, metrics = EXCLUDED.metrics, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert availability: %w", err)
	}
	return nil
}

// UpdateMetrics overwrites only the metrics document for a therapist.
func (r *AvailabilityRepository) UpdateMetrics(ctx context.Context, therapistID string, metrics models.AvailabilityMetrics) error {
	encoded, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE therapist_availabilities SET metrics = $2, updated_at = $3 WHERE therapist_id = $1`, therapistID, types.JSONText(encoded), time.Now().UTC()); err != nil {
		return fmt.Errorf("update availability metrics: %w", err)
	}
	return nil
}
