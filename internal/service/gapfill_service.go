package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/rehasoft/rehab-center-api/internal/models"
	appErrors "github.com/rehasoft/rehab-center-api/pkg/errors"
)

type waitingLister interface {
	ListWaitingByDepartment(ctx context.Context, department string) ([]models.WaitlistEntry, error)
	UpdateStatus(ctx context.Context, id string, status models.WaitlistStatus) error
}

type offerNotifier interface {
	Notify(ctx context.Context, recipientID, title, message, severity string) error
}

// GapFillService matches freed slots against the department waitlist when a
// session gets cancelled.
type GapFillService struct {
	waitlist   waitingLister
	therapists therapistDirectory
	notifier   offerNotifier
	logger     *zap.Logger
}

// NewGapFillService builds the gap-fill engine. notifier is optional.
func NewGapFillService(waitlist waitingLister, therapists therapistDirectory, notifier offerNotifier, logger *zap.Logger) *GapFillService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GapFillService{
		waitlist:   waitlist,
		therapists: therapists,
		notifier:   notifier,
		logger:     logger,
	}
}

// OfferFreedSlot picks the best WAITING entry for the cancelled session's
// slot and marks it OFFERED. Candidates are ranked in two tiers: entries
// whose preferred time range overlaps the freed slot come first, entries
// matching only the day of week serve as fallback. Ties resolve by priority
// then by longest wait. A slot no entry wants yields Offered=false, not an
// error.
func (s *GapFillService) OfferFreedSlot(ctx context.Context, session *models.TherapySession) (*models.SlotOffer, error) {
	therapist, err := s.therapists.FindByID(ctx, session.TherapistID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "therapist not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load therapist for freed slot")
	}

	day, err := s.freedDay(session.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	freed, err := models.NewTimeRange(session.StartTime, session.EndTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	entries, err := s.waitlist.ListWaitingByDepartment(ctx, therapist.Department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load waitlist")
	}

	best := s.pickCandidate(entries, session.TherapistID, day, freed)
	if best == nil {
		s.logger.Sugar().Infow("no waitlist match for freed slot", "session_id", session.ID, "department", therapist.Department, "date", session.Date)
		return &models.SlotOffer{Offered: false}, nil
	}

	if err := s.waitlist.UpdateStatus(ctx, best.ID, models.WaitlistOffered); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark waitlist entry offered")
	}
	best.Status = models.WaitlistOffered

	s.notifyOffer(ctx, best, session, therapist)
	s.logger.Sugar().Infow("freed slot offered", "session_id", session.ID, "waitlist_entry_id", best.ID, "beneficiary_id", best.BeneficiaryID)
	return &models.SlotOffer{Offered: true, Entry: best}, nil
}

func (s *GapFillService) pickCandidate(entries []models.WaitlistEntry, therapistID, day string, freed models.TimeRange) *models.WaitlistEntry {
	var overlapping, dayOnly []models.WaitlistEntry
	for i := range entries {
		entry := entries[i]
		if entry.PreferredTherapistID != nil && *entry.PreferredTherapistID != therapistID {
			continue
		}
		if !entry.PrefersDay(day) {
			continue
		}
		preferred, err := models.NewTimeRange(entry.PreferredStart, entry.PreferredEnd)
		if err != nil {
			s.logger.Sugar().Warnw("skipping waitlist entry with invalid time range", "waitlist_entry_id", entry.ID, "error", err)
			continue
		}
		if preferred.Overlaps(freed) {
			overlapping = append(overlapping, entry)
		} else {
			dayOnly = append(dayOnly, entry)
		}
	}

	pool := overlapping
	if len(pool) == 0 {
		pool = dayOnly
	}
	if len(pool) == 0 {
		return nil
	}

	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].Priority.Rank() != pool[j].Priority.Rank() {
			return pool[i].Priority.Rank() < pool[j].Priority.Rank()
		}
		return pool[i].CreatedAt.Before(pool[j].CreatedAt)
	})
	return &pool[0]
}

func (s *GapFillService) notifyOffer(ctx context.Context, entry *models.WaitlistEntry, session *models.TherapySession, therapist *models.Therapist) {
	if s.notifier == nil {
		return
	}
	message := fmt.Sprintf("A slot with %s on %s from %s to %s has opened up. Respond within the offer window to claim it.", therapist.FullName, session.Date, session.StartTime, session.EndTime)
	if err := s.notifier.Notify(ctx, entry.BeneficiaryID, "Earlier slot available", message, models.NotificationSeverityInfo); err != nil {
		s.logger.Sugar().Warnw("failed to notify waitlist offer", "waitlist_entry_id", entry.ID, "error", err)
	}
}

func (s *GapFillService) freedDay(date string) (string, error) {
	t, err := models.ParseDate(date)
	if err != nil {
		return "", err
	}
	return models.DayOfWeekFor(t), nil
}
