package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/rehasoft/rehab-center-api/internal/models"
)

// WaitlistRepository manages persistence for waitlist entries.
type WaitlistRepository struct {
	db *sqlx.DB
}

// NewWaitlistRepository constructs a WaitlistRepository.
func NewWaitlistRepository(db *sqlx.DB) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

type waitlistRow struct {
	ID                   string         `db:"id"`
	BeneficiaryID        string         `db:"beneficiary_id"`
	Department           string         `db:"department"`
	PreferredTherapistID *string        `db:"preferred_therapist_id"`
	PreferredDays        types.JSONText `db:"preferred_days"`
	PreferredStart       string         `db:"preferred_start"`
	PreferredEnd         string         `db:"preferred_end"`
	Priority             string         `db:"priority"`
	Status               string         `db:"status"`
	OfferedAt            *time.Time     `db:"offered_at"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

func (row *waitlistRow) toModel() (*models.WaitlistEntry, error) {
	entry := &models.WaitlistEntry{
		ID:                   row.ID,
		BeneficiaryID:        row.BeneficiaryID,
		Department:           row.Department,
		PreferredTherapistID: row.PreferredTherapistID,
		PreferredStart:       row.PreferredStart,
		PreferredEnd:         row.PreferredEnd,
		Priority:             models.WaitlistPriority(row.Priority),
		Status:               models.WaitlistStatus(row.Status),
		OfferedAt:            row.OfferedAt,
		CreatedAt:            row.CreatedAt,
		UpdatedAt:            row.UpdatedAt,
	}
	if len(row.PreferredDays) > 0 {
		if err := json.Unmarshal(row.PreferredDays, &entry.PreferredDays); err != nil {
			return nil, fmt.Errorf("decode preferred days: %w", err)
		}
	}
	return entry, nil
}

const waitlistColumns = "id, beneficiary_id, department, preferred_therapist_id, preferred_days, preferred_start, preferred_end, priority, status, offered_at, created_at, updated_at"

// Create stores a new waitlist entry.
func (r *WaitlistRepository) Create(ctx context.Context, entry *models.WaitlistEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	days, err := json.Marshal(entry.PreferredDays)
	if err != nil {
		return fmt.Errorf("encode preferred days: %w", err)
	}
	row := &waitlistRow{
		ID:                   entry.ID,
		BeneficiaryID:        entry.BeneficiaryID,
		Department:           entry.Department,
		PreferredTherapistID: entry.PreferredTherapistID,
		PreferredDays:        types.JSONText(days),
		PreferredStart:       entry.PreferredStart,
		PreferredEnd:         entry.PreferredEnd,
		Priority:             string(entry.Priority),
		Status:               string(entry.Status),
		OfferedAt:            entry.OfferedAt,
		CreatedAt:            entry.CreatedAt,
		UpdatedAt:            entry.UpdatedAt,
	}

	const query = `INSERT INTO waitlist_entries (id, beneficiary_id, department, preferred_therapist_id, preferred_days, preferred_start, preferred_end, priority, status, offered_at, created_at, updated_at) VALUES (:id, :beneficiary_id, :department, :preferred_therapist_id, :preferred_days, :preferred_start, :preferred_end, :priority, :status, :offered_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("create waitlist entry: %w", err)
	}
	return nil
}

// FindByID loads a waitlist entry by id.
func (r *WaitlistRepository) FindByID(ctx context.Context, id string) (*models.WaitlistEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM waitlist_entries WHERE id = $1", waitlistColumns)
	var row waitlistRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return row.toModel()
}

// List returns waitlist entries matching filters along with total count.
func (r *WaitlistRepository) List(ctx context.Context, filter models.WaitlistFilter) ([]models.WaitlistEntry, int, error) {
	base := "FROM waitlist_entries WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, strings.ToUpper(filter.Department))
	}
	if filter.BeneficiaryID != "" {
		conditions = append(conditions, fmt.Sprintf("beneficiary_id = $%d", len(args)+1))
		args = append(args, filter.BeneficiaryID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, strings.ToUpper(filter.Status))
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at ASC LIMIT %d OFFSET %d", waitlistColumns, base, size, offset)
	var rows []waitlistRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list waitlist entries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count waitlist entries: %w", err)
	}

	entries := make([]models.WaitlistEntry, 0, len(rows))
	for i := range rows {
		entry, err := rows[i].toModel()
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, *entry)
	}
	return entries, total, nil
}

// ListWaitingByDepartment returns WAITING entries for a department ordered
// by creation time (longest-waiting first).
func (r *WaitlistRepository) ListWaitingByDepartment(ctx context.Context, department string) ([]models.WaitlistEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM waitlist_entries WHERE department = $1 AND status = $2 ORDER BY created_at ASC", waitlistColumns)
	var rows []waitlistRow
	if err := r.db.SelectContext(ctx, &rows, query, strings.ToUpper(department), string(models.WaitlistWaiting)); err != nil {
		return nil, fmt.Errorf("list waiting entries: %w", err)
	}

	entries := make([]models.WaitlistEntry, 0, len(rows))
	for i := range rows {
		entry, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// UpdateStatus moves an entry to a new status, stamping offered_at when the
// entry enters OFFERED.
func (r *WaitlistRepository) UpdateStatus(ctx context.Context, id string, status models.WaitlistStatus) error {
	now := time.Now().UTC()
	var offeredAt *time.Time
	if status == models.WaitlistOffered {
		offeredAt = &now
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE waitlist_entries SET status = $2, offered_at = COALESCE($3, offered_at), updated_at = $4 WHERE id = $1`, id, string(status), offeredAt, now); err != nil {
		return fmt.Errorf("update waitlist status: %w", err)
	}
	return nil
}

// ExpireOffersBefore marks stale OFFERED entries as EXPIRED.
func (r *WaitlistRepository) ExpireOffersBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE waitlist_entries SET status = $1, updated_at = $2 WHERE status = $3 AND offered_at < $4`, string(models.WaitlistExpired), time.Now().UTC(), string(models.WaitlistOffered), cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire waitlist offers: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expire waitlist offers: %w", err)
	}
	return affected, nil
}
