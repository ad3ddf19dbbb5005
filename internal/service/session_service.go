package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rehasoft/rehab-center-api/internal/models"
	"github.com/rehasoft/rehab-center-api/internal/repository"
	appErrors "github.com/rehasoft/rehab-center-api/pkg/errors"
	"github.com/rehasoft/rehab-center-api/pkg/lock"
)

type sessionRepository interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.TherapySession, int, error)
	FindByID(ctx context.Context, id string) (*models.TherapySession, error)
	Create(ctx context.Context, session *models.TherapySession) error
	UpdateSlot(ctx context.Context, session *models.TherapySession) error
	UpdateStatus(ctx context.Context, id string, status models.SessionStatus) error
	UpdateOutcome(ctx context.Context, id string, attendance *string, rating *int) error
}

type sessionNoteStore interface {
	Create(ctx context.Context, note *models.SessionNote) error
	GetBySession(ctx context.Context, sessionID string) (*models.SessionNote, error)
}

type beneficiaryDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Beneficiary, error)
}

type availabilityChecker interface {
	CheckAvailability(ctx context.Context, therapistID, date, startTime, endTime, excludeSessionID string) (*models.AvailabilityDecision, error)
	RefreshMetrics(ctx context.Context, therapistID string) error
}

type conflictDetector interface {
	FindConflict(ctx context.Context, therapistID, date, startTime, endTime, excludeSessionID string) (*models.TherapySession, error)
}

type slotOfferer interface {
	OfferFreedSlot(ctx context.Context, session *models.TherapySession) (*models.SlotOffer, error)
}

// ScheduleSessionRequest describes payload for booking a session.
type ScheduleSessionRequest struct {
	TherapistID   string  `json:"therapist_id" validate:"required"`
	BeneficiaryID string  `json:"beneficiary_id" validate:"required"`
	PlanID        *string `json:"plan_id,omitempty"`
	Date          string  `json:"date" validate:"required"`
	StartTime     string  `json:"start_time" validate:"required"`
	EndTime       string  `json:"end_time" validate:"required"`
}

// RescheduleSessionRequest moves an existing session to a new slot.
type RescheduleSessionRequest struct {
	Date      string `json:"date" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// DocumentSessionRequest attaches SOAP documentation to a completed session.
type DocumentSessionRequest struct {
	Subjective string  `json:"subjective" validate:"required"`
	Objective  string  `json:"objective" validate:"required"`
	Assessment string  `json:"assessment" validate:"required"`
	Plan       string  `json:"plan" validate:"required"`
	Attendance *string `json:"attendance,omitempty"`
	Rating     *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}

// SessionService is the scheduling entry point: it books, reschedules and
// transitions therapy sessions, consulting the availability checker and
// conflict detector before any write.
type SessionService struct {
	repo         sessionRepository
	notes        sessionNoteStore
	therapists   therapistDirectory
	beneficiarys beneficiaryDirectory
	availability availabilityChecker
	conflicts    conflictDetector
	gapfill      slotOfferer
	locker       lock.Locker
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewSessionService builds the scheduler. locker, gapfill and metrics are optional.
func NewSessionService(repo sessionRepository, notes sessionNoteStore, therapists therapistDirectory, beneficiaries beneficiaryDirectory, availability availabilityChecker, conflicts conflictDetector, gapfill slotOfferer, locker lock.Locker, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		repo:         repo,
		notes:        notes,
		therapists:   therapists,
		beneficiarys: beneficiaries,
		availability: availability,
		conflicts:    conflicts,
		gapfill:      gapfill,
		locker:       locker,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
	}
}

// List returns sessions with pagination metadata.
func (s *SessionService) List(ctx context.Context, filter models.SessionFilter) ([]models.TherapySession, *models.Pagination, error) {
	sessions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return sessions, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads a single session.
func (s *SessionService) Get(ctx context.Context, id string) (*models.TherapySession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// Schedule books a new session after availability and conflict checks pass.
// The per-therapist booking lock serialises the check-then-write section;
// the storage uniqueness index backs it should the lock be bypassed.
func (s *SessionService) Schedule(ctx context.Context, req ScheduleSessionRequest) (*models.TherapySession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	if _, err := models.ParseDate(req.Date); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q", req.Date))
	}
	if _, err := models.NewTimeRange(req.StartTime, req.EndTime); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	therapist, err := s.therapists.FindByID(ctx, req.TherapistID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "therapist not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load therapist")
	}
	if !therapist.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "therapist is inactive")
	}
	if _, err := s.beneficiarys.FindByID(ctx, req.BeneficiaryID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "beneficiary not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load beneficiary")
	}

	session := &models.TherapySession{
		TherapistID:   req.TherapistID,
		BeneficiaryID: req.BeneficiaryID,
		PlanID:        req.PlanID,
		Date:          req.Date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Status:        models.SessionScheduled,
	}

	err = s.withBookingLock(ctx, req.TherapistID, req.Date, func(lockCtx context.Context) error {
		return s.validateAndCreate(lockCtx, session)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.SessionBooked()
	}
	s.logger.Sugar().Infow("session scheduled", "session_id", session.ID, "therapist_id", session.TherapistID, "date", session.Date, "start", session.StartTime)
	return session, nil
}

func (s *SessionService) validateAndCreate(ctx context.Context, session *models.TherapySession) error {
	decision, err := s.availability.CheckAvailability(ctx, session.TherapistID, session.Date, session.StartTime, session.EndTime, session.ID)
	if err != nil {
		return err
	}
	if !decision.Available {
		if s.metrics != nil {
			s.metrics.BookingRejected("availability")
		}
		return appErrors.Clone(appErrors.ErrUnavailable, decision.Reason)
	}

	conflict, err := s.conflicts.FindConflict(ctx, session.TherapistID, session.Date, session.StartTime, session.EndTime, session.ID)
	if err != nil {
		return err
	}
	if conflict != nil {
		if s.metrics != nil {
			s.metrics.BookingRejected("conflict")
		}
		return s.conflictError(conflict)
	}

	if session.ID == "" {
		err = s.repo.Create(ctx, session)
	} else {
		err = s.repo.UpdateSlot(ctx, session)
	}
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateSlot) {
			if s.metrics != nil {
				s.metrics.BookingRejected("conflict")
			}
			return appErrors.Clone(appErrors.ErrConflict, "time slot conflicts with existing session")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store session")
	}
	return nil
}

// Reschedule moves a non-terminal session to a new slot, re-validating the
// new time from scratch (the session never conflicts with itself) and
// resetting status to SCHEDULED.
func (s *SessionService) Reschedule(ctx context.Context, id string, req RescheduleSessionRequest) (*models.TherapySession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reschedule payload")
	}
	if _, err := models.ParseDate(req.Date); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q", req.Date))
	}
	if _, err := models.NewTimeRange(req.StartTime, req.EndTime); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrIllegalTransition, fmt.Sprintf("cannot reschedule a %s session", session.Status))
	}

	session.Date = req.Date
	session.StartTime = req.StartTime
	session.EndTime = req.EndTime
	session.Status = models.SessionScheduled

	err = s.withBookingLock(ctx, session.TherapistID, req.Date, func(lockCtx context.Context) error {
		return s.validateAndCreate(lockCtx, session)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Sugar().Infow("session rescheduled", "session_id", session.ID, "date", session.Date, "start", session.StartTime)
	return session, nil
}

// UpdateStatus sets a session's status. Membership in the defined status
// set is the only guard: any defined status may be set from any other, the
// reschedule flow being the sole transition-checked path. Entering a
// cancelled state hands the freed slot to the gap-fill engine.
func (s *SessionService) UpdateStatus(ctx context.Context, id string, newStatus models.SessionStatus) (*models.TherapySession, error) {
	newStatus = models.SessionStatus(strings.ToUpper(string(newStatus)))
	if !newStatus.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid session status %q", newStatus))
	}

	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session status")
	}
	previous := session.Status
	session.Status = newStatus

	if newStatus.Cancelled() && !previous.Cancelled() {
		s.handleCancellation(ctx, session)
	}
	if newStatus.Terminal() || newStatus == models.SessionNoShow {
		if err := s.availability.RefreshMetrics(ctx, session.TherapistID); err != nil {
			s.logger.Sugar().Warnw("metrics refresh failed", "therapist_id", session.TherapistID, "error", err)
		}
	}

	s.logger.Sugar().Infow("session status updated", "session_id", id, "from", previous, "to", newStatus)
	return session, nil
}

// handleCancellation runs the gap-fill engine. Its failure never fails the
// cancellation that triggered it.
func (s *SessionService) handleCancellation(ctx context.Context, session *models.TherapySession) {
	if s.gapfill == nil {
		return
	}
	offer, err := s.gapfill.OfferFreedSlot(ctx, session)
	if err != nil {
		s.logger.Sugar().Warnw("gap-fill failed after cancellation", "session_id", session.ID, "error", err)
		return
	}
	if s.metrics != nil && offer.Offered {
		s.metrics.GapFillOffered()
	}
}

// Document stores SOAP documentation for a completed session and records
// its outcome fields.
func (s *SessionService) Document(ctx context.Context, id string, req DocumentSessionRequest) (*models.SessionNote, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid documentation payload")
	}

	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionCompleted {
		return nil, appErrors.Clone(appErrors.ErrIllegalTransition, "only completed sessions can be documented")
	}

	note := &models.SessionNote{
		SessionID:  id,
		Subjective: req.Subjective,
		Objective:  req.Objective,
		Assessment: req.Assessment,
		Plan:       req.Plan,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store session note")
	}

	if req.Attendance != nil || req.Rating != nil {
		if err := s.repo.UpdateOutcome(ctx, id, req.Attendance, req.Rating); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store session outcome")
		}
	}
	return note, nil
}

// GetNote returns the documentation attached to a session.
func (s *SessionService) GetNote(ctx context.Context, sessionID string) (*models.SessionNote, error) {
	note, err := s.notes.GetBySession(ctx, sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session note not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session note")
	}
	return note, nil
}

func (s *SessionService) withBookingLock(ctx context.Context, therapistID, date string, fn func(ctx context.Context) error) error {
	if s.locker == nil {
		return fn(ctx)
	}
	err := s.locker.WithBookingLock(ctx, therapistID, date, fn)
	if errors.Is(err, lock.ErrNotAcquired) {
		return appErrors.Clone(appErrors.ErrConflict, "another booking for this therapist is in progress, retry shortly")
	}
	return err
}

func (s *SessionService) conflictError(existing *models.TherapySession) error {
	domainErr := &models.SessionConflictError{
		Message: "time slot conflicts with existing session",
		Conflict: models.SessionConflict{
			SessionID:   existing.ID,
			TherapistID: existing.TherapistID,
			Date:        existing.Date,
			StartTime:   existing.StartTime,
			EndTime:     existing.EndTime,
			Status:      existing.Status,
		},
	}
	return appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, domainErr.Message)
}
