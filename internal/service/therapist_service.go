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

type therapistRepo interface {
	List(ctx context.Context, filter models.TherapistFilter) ([]models.Therapist, int, error)
	FindByID(ctx context.Context, id string) (*models.Therapist, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, therapist *models.Therapist) error
	Update(ctx context.Context, therapist *models.Therapist) error
	Deactivate(ctx context.Context, id string) error
}

// UpsertTherapistRequest carries create/update payloads for therapists.
type UpsertTherapistRequest struct {
	Email           string   `json:"email" validate:"required,email"`
	FullName        string   `json:"full_name" validate:"required,min=2,max=120"`
	Phone           *string  `json:"phone,omitempty"`
	Department      string   `json:"department" validate:"required"`
	Specializations []string `json:"specializations" validate:"required,min=1"`
	Languages       []string `json:"languages"`
	Active          *bool    `json:"active,omitempty"`
}

// TherapistService manages the therapist directory.
type TherapistService struct {
	repo      therapistRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTherapistService builds the therapist directory service.
func NewTherapistService(repo therapistRepo, validate *validator.Validate, logger *zap.Logger) *TherapistService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TherapistService{repo: repo, validator: validate, logger: logger}
}

// List returns therapists with pagination metadata.
func (s *TherapistService) List(ctx context.Context, filter models.TherapistFilter) ([]models.Therapist, *models.Pagination, error) {
	therapists, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list therapists")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return therapists, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads a therapist by id.
func (s *TherapistService) Get(ctx context.Context, id string) (*models.Therapist, error) {
	therapist, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "therapist not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load therapist")
	}
	return therapist, nil
}

// Create registers a new therapist.
func (s *TherapistService) Create(ctx context.Context, req UpsertTherapistRequest) (*models.Therapist, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid therapist payload")
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check therapist email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}

	therapist := &models.Therapist{
		Email:           strings.ToLower(req.Email),
		FullName:        req.FullName,
		Phone:           req.Phone,
		Department:      strings.ToUpper(req.Department),
		Specializations: req.Specializations,
		Languages:       req.Languages,
		Active:          true,
	}
	if req.Active != nil {
		therapist.Active = *req.Active
	}
	if err := s.repo.Create(ctx, therapist); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create therapist")
	}

	s.logger.Sugar().Infow("therapist created", "therapist_id", therapist.ID, "department", therapist.Department)
	return therapist, nil
}

// Update modifies an existing therapist.
func (s *TherapistService) Update(ctx context.Context, id string, req UpsertTherapistRequest) (*models.Therapist, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid therapist payload")
	}

	therapist, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check therapist email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}

	therapist.Email = strings.ToLower(req.Email)
	therapist.FullName = req.FullName
	therapist.Phone = req.Phone
	therapist.Department = strings.ToUpper(req.Department)
	therapist.Specializations = req.Specializations
	therapist.Languages = req.Languages
	if req.Active != nil {
		therapist.Active = *req.Active
	}

	if err := s.repo.Update(ctx, therapist); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update therapist")
	}
	return therapist, nil
}

// Deactivate soft-deletes a therapist; future bookings are refused for
// inactive therapists.
func (s *TherapistService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate therapist")
	}
	s.logger.Sugar().Infow("therapist deactivated", "therapist_id", id)
	return nil
}
