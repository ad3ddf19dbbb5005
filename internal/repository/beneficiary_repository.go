package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rehasoft/rehab-center-api/internal/models"
)

// BeneficiaryRepository manages persistence for beneficiaries.
type BeneficiaryRepository struct {
	db *sqlx.DB
}

// NewBeneficiaryRepository constructs a BeneficiaryRepository.
func NewBeneficiaryRepository(db *sqlx.DB) *BeneficiaryRepository {
	return &BeneficiaryRepository{db: db}
}

const beneficiaryColumns = "id, full_name, email, phone, department, active, created_at, updated_at"

// List returns beneficiaries matching filters along with total count.
func (r *BeneficiaryRepository) List(ctx context.Context, filter models.BeneficiaryFilter) ([]models.Beneficiary, int, error) {
	base := "FROM beneficiaries WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, strings.ToUpper(filter.Department))
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(COALESCE(email, '')) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	sortBy := filter.SortBy
	allowedSorts := map[string]bool{"full_name": true, "department": true, "created_at": true}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", beneficiaryColumns, base, sortBy, order, size, offset)
	var beneficiaries []models.Beneficiary
	if err := r.db.SelectContext(ctx, &beneficiaries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list beneficiaries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count beneficiaries: %w", err)
	}

	return beneficiaries, total, nil
}

// FindByID loads a beneficiary by id.
func (r *BeneficiaryRepository) FindByID(ctx context.Context, id string) (*models.Beneficiary, error) {
	query := fmt.Sprintf("SELECT %s FROM beneficiaries WHERE id = $1", beneficiaryColumns)
	var beneficiary models.Beneficiary
	if err := r.db.GetContext(ctx, &beneficiary, query, id); err != nil {
		return nil, err
	}
	return &beneficiary, nil
}

// Create stores a new beneficiary record.
func (r *BeneficiaryRepository) Create(ctx context.Context, beneficiary *models.Beneficiary) error {
	if beneficiary.ID == "" {
		beneficiary.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	beneficiary.CreatedAt = now
	beneficiary.UpdatedAt = now

	const query = `INSERT INTO beneficiaries (id, full_name, email, phone, department, active, created_at, updated_at) VALUES (:id, :full_name, :email, :phone, :department, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, beneficiary); err != nil {
		return fmt.Errorf("create beneficiary: %w", err)
	}
	return nil
}

// Update modifies a beneficiary record.
func (r *BeneficiaryRepository) Update(ctx context.Context, beneficiary *models.Beneficiary) error {
	beneficiary.UpdatedAt = time.Now().UTC()
	const query = `UPDATE beneficiaries SET full_name = :full_name, email = :email, phone = :phone, department = :department, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, beneficiary); err != nil {
		return fmt.Errorf("update beneficiary: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a beneficiary.
func (r *BeneficiaryRepository) Deactivate(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE beneficiaries SET active = FALSE, updated_at = $2 WHERE id = $1`, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate beneficiary: %w", err)
	}
	return nil
}
