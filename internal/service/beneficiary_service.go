package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rehasoft/rehab-center-api/internal/models"
	appErrors "github.com/rehasoft/rehab-center-api/pkg/errors"
)

type beneficiaryRepo interface {
	List(ctx context.Context, filter models.BeneficiaryFilter) ([]models.Beneficiary, int, error)
	FindByID(ctx context.Context, id string) (*models.Beneficiary, error)
	Create(ctx context.Context, beneficiary *models.Beneficiary) error
	Update(ctx context.Context, beneficiary *models.Beneficiary) error
	Deactivate(ctx context.Context, id string) error
}

// UpsertBeneficiaryRequest carries create/update payloads for beneficiaries.
type UpsertBeneficiaryRequest struct {
	FullName   string  `json:"full_name" validate:"required,min=2,max=120"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string `json:"phone,omitempty"`
	Department string  `json:"department" validate:"required"`
	Active     *bool   `json:"active,omitempty"`
}

// BeneficiaryService manages the beneficiary directory.
type BeneficiaryService struct {
	repo      beneficiaryRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBeneficiaryService builds the beneficiary directory service.
func NewBeneficiaryService(repo beneficiaryRepo, validate *validator.Validate, logger *zap.Logger) *BeneficiaryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BeneficiaryService{repo: repo, validator: validate, logger: logger}
}

// List returns beneficiaries with pagination metadata.
func (s *BeneficiaryService) List(ctx context.Context, filter models.BeneficiaryFilter) ([]models.Beneficiary, *models.Pagination, error) {
	beneficiaries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list beneficiaries")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return beneficiaries, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads a beneficiary by id.
func (s *BeneficiaryService) Get(ctx context.Context, id string) (*models.Beneficiary, error) {
	beneficiary, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "beneficiary not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load beneficiary")
	}
	return beneficiary, nil
}

// Create registers a new beneficiary.
func (s *BeneficiaryService) Create(ctx context.Context, req UpsertBeneficiaryRequest) (*models.Beneficiary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid beneficiary payload")
	}

	beneficiary := &models.Beneficiary{
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		Department: strings.ToUpper(req.Department),
		Active:     true,
	}
	if req.Active != nil {
		beneficiary.Active = *req.Active
	}
	if err := s.repo.Create(ctx, beneficiary); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create beneficiary")
	}

	s.logger.Sugar().Infow("beneficiary created", "beneficiary_id", beneficiary.ID, "department", beneficiary.Department)
	return beneficiary, nil
}

// Update modifies an existing beneficiary.
func (s *BeneficiaryService) Update(ctx context.Context, id string, req UpsertBeneficiaryRequest) (*models.Beneficiary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid beneficiary payload")
	}

	beneficiary, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	beneficiary.FullName = req.FullName
	beneficiary.Email = req.Email
	beneficiary.Phone = req.Phone
	beneficiary.Department = strings.ToUpper(req.Department)
	if req.Active != nil {
		beneficiary.Active = *req.Active
	}

	if err := s.repo.Update(ctx, beneficiary); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update beneficiary")
	}
	return beneficiary, nil
}

// Deactivate soft-deletes a beneficiary.
func (s *BeneficiaryService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate beneficiary")
	}
	s.logger.Sugar().Infow("beneficiary deactivated", "beneficiary_id", id)
	return nil
}
