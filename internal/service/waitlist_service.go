package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rehasoft/rehab-center-api/internal/models"
	"github.com/rehasoft/rehab-center-api/pkg/config"
	appErrors "github.com/rehasoft/rehab-center-api/pkg/errors"
)

type waitlistRepo interface {
	Create(ctx context.Context, entry *models.WaitlistEntry) error
	FindByID(ctx context.Context, id string) (*models.WaitlistEntry, error)
	List(ctx context.Context, filter models.WaitlistFilter) ([]models.WaitlistEntry, int, error)
	UpdateStatus(ctx context.Context, id string, status models.WaitlistStatus) error
	ExpireOffersBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CreateWaitlistEntryRequest registers a beneficiary's standing slot request.
type CreateWaitlistEntryRequest struct {
	BeneficiaryID        string   `json:"beneficiary_id" validate:"required"`
	Department           string   `json:"department" validate:"required"`
	PreferredTherapistID *string  `json:"preferred_therapist_id,omitempty"`
	PreferredDays        []string `json:"preferred_days" validate:"required,min=1"`
	PreferredStart       string   `json:"preferred_start" validate:"required"`
	PreferredEnd         string   `json:"preferred_end" validate:"required"`
	Priority             string   `json:"priority" validate:"required"`
}

// WaitlistService manages waitlist entries and offer responses.
type WaitlistService struct {
	repo          waitlistRepo
	beneficiaries beneficiaryDirectory
	cfg           config.WaitlistConfig
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewWaitlistService builds the waitlist service.
func NewWaitlistService(repo waitlistRepo, beneficiaries beneficiaryDirectory, cfg config.WaitlistConfig, validate *validator.Validate, logger *zap.Logger) *WaitlistService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WaitlistService{
		repo:          repo,
		beneficiaries: beneficiaries,
		cfg:           cfg,
		validator:     validate,
		logger:        logger,
	}
}

// Create registers a new WAITING entry.
func (s *WaitlistService) Create(ctx context.Context, req CreateWaitlistEntryRequest) (*models.WaitlistEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid waitlist payload")
	}

	priority := models.WaitlistPriority(strings.ToUpper(req.Priority))
	if !priority.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid priority %q", req.Priority))
	}
	for _, day := range req.PreferredDays {
		if !models.ValidDayOfWeek(day) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid day of week %q", day))
		}
	}
	if _, err := models.NewTimeRange(req.PreferredStart, req.PreferredEnd); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if _, err := s.beneficiaries.FindByID(ctx, req.BeneficiaryID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "beneficiary not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load beneficiary")
	}

	entry := &models.WaitlistEntry{
		BeneficiaryID:        req.BeneficiaryID,
		Department:           strings.ToUpper(req.Department),
		PreferredTherapistID: req.PreferredTherapistID,
		PreferredDays:        req.PreferredDays,
		PreferredStart:       req.PreferredStart,
		PreferredEnd:         req.PreferredEnd,
		Priority:             priority,
		Status:               models.WaitlistWaiting,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create waitlist entry")
	}

	s.logger.Sugar().Infow("waitlist entry created", "waitlist_entry_id", entry.ID, "department", entry.Department, "priority", entry.Priority)
	return entry, nil
}

// List returns entries with pagination metadata.
func (s *WaitlistService) List(ctx context.Context, filter models.WaitlistFilter) ([]models.WaitlistEntry, *models.Pagination, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list waitlist entries")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return entries, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads a single entry.
func (s *WaitlistService) Get(ctx context.Context, id string) (*models.WaitlistEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "waitlist entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load waitlist entry")
	}
	return entry, nil
}

// Respond records the beneficiary's answer to an offer: acceptance books
// the entry, decline returns it to the waiting pool. Only OFFERED entries
// can be responded to.
func (s *WaitlistService) Respond(ctx context.Context, id string, accept bool) (*models.WaitlistEntry, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Status != models.WaitlistOffered {
		return nil, appErrors.Clone(appErrors.ErrIllegalTransition, fmt.Sprintf("cannot respond to a %s entry", entry.Status))
	}

	next := models.WaitlistWaiting
	if accept {
		next = models.WaitlistBooked
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update waitlist entry")
	}
	entry.Status = next

	s.logger.Sugar().Infow("waitlist offer answered", "waitlist_entry_id", id, "accepted", accept)
	return entry, nil
}

// ExpireStale marks OFFERED entries older than the configured offer window
// as EXPIRED and returns how many were expired.
func (s *WaitlistService) ExpireStale(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.cfg.OfferTTL)
	expired, err := s.repo.ExpireOffersBefore(ctx, cutoff)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to expire waitlist offers")
	}
	if expired > 0 {
		s.logger.Sugar().Infow("stale waitlist offers expired", "count", expired)
	}
	return expired, nil
}
