package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rehasoft/rehab-center-api/internal/models"
	"github.com/rehasoft/rehab-center-api/pkg/config"
	appErrors "github.com/rehasoft/rehab-center-api/pkg/errors"
)

type availabilityRepo interface {
	GetByTherapist(ctx context.Context, therapistID string) (*models.TherapistAvailability, error)
	Upsert(ctx context.Context, availability *models.TherapistAvailability) error
	UpdateMetrics(ctx context.Context, therapistID string, metrics models.AvailabilityMetrics) error
}

type therapistDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Therapist, error)
}

type sessionAggregates interface {
	CountOccupying(ctx context.Context, therapistID, date, excludeSessionID string) (int, error)
	StatusCounts(ctx context.Context, therapistID string) (map[models.SessionStatus]int, error)
	AverageRating(ctx context.Context, therapistID string) (float64, error)
}

// UpsertAvailabilityRequest captures the full availability payload for a therapist.
type UpsertAvailabilityRequest struct {
	RecurringSchedule []models.AvailabilitySlot      `json:"recurring_schedule" validate:"required,min=1"`
	Exceptions        []models.AvailabilityException `json:"exceptions"`
	Preferences       models.AvailabilityPreferences `json:"preferences"`
}

// AvailabilityService owns the therapist availability aggregate and answers
// slot availability checks for the scheduler.
type AvailabilityService struct {
	repo       availabilityRepo
	therapists therapistDirectory
	sessions   sessionAggregates
	cache      *redis.Client
	scheduling config.SchedulingConfig
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAvailabilityService builds the service. The cache client and metrics are optional.
func NewAvailabilityService(repo availabilityRepo, therapists therapistDirectory, sessions sessionAggregates, cache *redis.Client, scheduling config.SchedulingConfig, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		repo:       repo,
		therapists: therapists,
		sessions:   sessions,
		cache:      cache,
		scheduling: scheduling,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
	}
}

// Get returns the stored availability record for a therapist.
func (s *AvailabilityService) Get(ctx context.Context, therapistID string) (*models.TherapistAvailability, error) {
	if _, err := s.therapists.FindByID(ctx, therapistID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "therapist not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load therapist")
	}

	availability, err := s.lookup(ctx, therapistID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}
	if availability == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no availability configured for therapist")
	}
	return availability, nil
}

// Upsert validates and stores the availability aggregate for a therapist.
func (s *AvailabilityService) Upsert(ctx context.Context, therapistID string, req UpsertAvailabilityRequest) (*models.TherapistAvailability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}
	if _, err := s.therapists.FindByID(ctx, therapistID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "therapist not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load therapist")
	}

	for i := range req.RecurringSchedule {
		if err := validateSlot(&req.RecurringSchedule[i]); err != nil {
			return nil, err
		}
	}
	for i := range req.Exceptions {
		exc := &req.Exceptions[i]
		if _, err := models.ParseDate(exc.Date); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid exception date %q", exc.Date))
		}
		for j := range exc.Slots {
			if err := validateSlot(&exc.Slots[j]); err != nil {
				return nil, err
			}
		}
	}
	if req.Preferences.MaxSessionsPerDay < 0 || req.Preferences.MinBreakBetweenSessions < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "preferences must not be negative")
	}

	existing, err := s.lookup(ctx, therapistID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}

	payload := &models.TherapistAvailability{
		TherapistID:       therapistID,
		RecurringSchedule: req.RecurringSchedule,
		Exceptions:        req.Exceptions,
		Preferences:       req.Preferences,
	}
	if existing != nil {
		payload.ID = existing.ID
		payload.CreatedAt = existing.CreatedAt
		payload.Metrics = existing.Metrics
	}

	if err := s.repo.Upsert(ctx, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store availability")
	}
	s.invalidate(ctx, therapistID)
	return payload, nil
}

// CheckAvailability decides whether a requested slot falls inside the
// therapist's working hours, outside breaks and under the daily cap.
// A therapist without an availability record is treated as always
// available; only the default daily cap still applies. A non-empty
// excludeSessionID keeps that session out of the cap count so a
// same-day reschedule is not rejected by its own slot.
func (s *AvailabilityService) CheckAvailability(ctx context.Context, therapistID, date, startTime, endTime, excludeSessionID string) (*models.AvailabilityDecision, error) {
	requested, err := models.NewTimeRange(startTime, endTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	day, err := models.ParseDate(date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q", date))
	}
	dayCode := models.DayOfWeekFor(day)

	availability, err := s.lookup(ctx, therapistID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}

	if availability != nil {
		decision, err := s.checkSlots(availability, dayCode, date, requested)
		if err != nil || !decision.Available {
			return decision, err
		}
	}

	dailyCap := s.scheduling.DefaultMaxSessionsPerDay
	if availability != nil && availability.Preferences.MaxSessionsPerDay > 0 {
		dailyCap = availability.Preferences.MaxSessionsPerDay
	}
	if dailyCap > 0 {
		count, err := s.sessions.CountOccupying(ctx, therapistID, date, excludeSessionID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count sessions")
		}
		if count >= dailyCap {
			return &models.AvailabilityDecision{Available: false, Reason: "daily session limit reached"}, nil
		}
	}

	return &models.AvailabilityDecision{Available: true}, nil
}

// checkSlots resolves the effective slot list for the date (exception
// overrides recurring) and verifies working hours and break windows.
func (s *AvailabilityService) checkSlots(availability *models.TherapistAvailability, dayCode, date string, requested models.TimeRange) (*models.AvailabilityDecision, error) {
	var slots []models.AvailabilitySlot

	if exc := availability.ExceptionFor(date); exc != nil {
		if !exc.IsAvailable {
			reason := fmt.Sprintf("therapist is not available on %s", date)
			if exc.Reason != "" {
				reason = fmt.Sprintf("%s (%s)", reason, exc.Reason)
			}
			return &models.AvailabilityDecision{Available: false, Reason: reason}, nil
		}
		slots = exc.Slots
	} else {
		for _, slot := range availability.RecurringSchedule {
			if slot.IsActive && strings.EqualFold(slot.DayOfWeek, dayCode) {
				slots = append(slots, slot)
			}
		}
	}

	if len(slots) == 0 {
		return &models.AvailabilityDecision{Available: false, Reason: fmt.Sprintf("therapist is not available on %s", dayCode)}, nil
	}

	var hoursReason string
	for _, slot := range slots {
		window, err := models.NewTimeRange(slot.StartTime, slot.EndTime)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored slot is invalid")
		}
		if !requested.Within(window) {
			hoursReason = fmt.Sprintf("requested time is outside working hours (%s-%s)", slot.StartTime, slot.EndTime)
			continue
		}
		if slot.BreakStart != nil && slot.BreakEnd != nil {
			breakWindow, err := models.NewTimeRange(*slot.BreakStart, *slot.BreakEnd)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored break window is invalid")
			}
			if requested.Overlaps(breakWindow) {
				return &models.AvailabilityDecision{Available: false, Reason: fmt.Sprintf("requested time overlaps break time (%s-%s)", *slot.BreakStart, *slot.BreakEnd)}, nil
			}
		}
		return &models.AvailabilityDecision{Available: true}, nil
	}

	return &models.AvailabilityDecision{Available: false, Reason: hoursReason}, nil
}

// BufferMinutes returns the inter-session buffer for a therapist, falling
// back to the configured default when no record or no preference exists.
func (s *AvailabilityService) BufferMinutes(ctx context.Context, therapistID string) (int, error) {
	availability, err := s.lookup(ctx, therapistID)
	if err != nil {
		return 0, err
	}
	if availability == nil || availability.Preferences.MinBreakBetweenSessions <= 0 {
		return s.scheduling.DefaultBufferMinutes, nil
	}
	return availability.Preferences.MinBreakBetweenSessions, nil
}

// RefreshMetrics recomputes the rolling counters from session aggregates.
// Best-effort; a therapist without an availability record is skipped.
func (s *AvailabilityService) RefreshMetrics(ctx context.Context, therapistID string) error {
	availability, err := s.lookup(ctx, therapistID)
	if err != nil {
		return err
	}
	if availability == nil {
		return nil
	}

	counts, err := s.sessions.StatusCounts(ctx, therapistID)
	if err != nil {
		return err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return nil
	}

	rating, err := s.sessions.AverageRating(ctx, therapistID)
	if err != nil {
		return err
	}

	completed := counts[models.SessionCompleted]
	cancelled := counts[models.SessionCancelledByPatient] + counts[models.SessionCancelledByCenter]
	noShow := counts[models.SessionNoShow]

	metrics := models.AvailabilityMetrics{
		TotalSessionsCompleted: completed,
		AverageSessionRating:   rating,
		CancellationRate:       float64(cancelled) / float64(total),
		NoShowRate:             float64(noShow) / float64(total),
		Utilization:            float64(completed) / float64(total),
	}

	if err := s.repo.UpdateMetrics(ctx, therapistID, metrics); err != nil {
		return err
	}
	s.invalidate(ctx, therapistID)
	return nil
}

// lookup loads the availability record, consulting the read-through cache
// first. A missing record returns (nil, nil).
func (s *AvailabilityService) lookup(ctx context.Context, therapistID string) (*models.TherapistAvailability, error) {
	key := cacheKey(therapistID)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key).Result(); err == nil {
			var cached models.TherapistAvailability
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				s.metrics.RecordCacheOperation(true)
				return &cached, nil
			}
		}
		s.metrics.RecordCacheOperation(false)
	}

	availability, err := s.repo.GetByTherapist(ctx, therapistID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(availability); err == nil {
			ttl := s.scheduling.AvailabilityCacheTTL
			if ttl <= 0 {
				ttl = 5 * time.Minute
			}
			if err := s.cache.Set(ctx, key, encoded, ttl).Err(); err != nil {
				s.logger.Sugar().Warnw("availability cache write failed", "therapist_id", therapistID, "error", err)
			}
		}
	}
	return availability, nil
}

func (s *AvailabilityService) invalidate(ctx context.Context, therapistID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey(therapistID)).Err(); err != nil {
		s.logger.Sugar().Warnw("availability cache invalidation failed", "therapist_id", therapistID, "error", err)
	}
}

func cacheKey(therapistID string) string {
	return "availability:" + therapistID
}

func validateSlot(slot *models.AvailabilitySlot) error {
	slot.DayOfWeek = strings.ToUpper(slot.DayOfWeek)
	if !models.ValidDayOfWeek(slot.DayOfWeek) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid day of week %q", slot.DayOfWeek))
	}
	window, err := models.NewTimeRange(slot.StartTime, slot.EndTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if (slot.BreakStart == nil) != (slot.BreakEnd == nil) {
		return appErrors.Clone(appErrors.ErrValidation, "break start and end must be set together")
	}
	if slot.BreakStart != nil {
		breakWindow, err := models.NewTimeRange(*slot.BreakStart, *slot.BreakEnd)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		if !breakWindow.Within(window) {
			return appErrors.Clone(appErrors.ErrValidation, "break window must lie within the working slot")
		}
	}
	return nil
}
