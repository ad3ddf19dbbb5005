package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/rehasoft/rehab-center-api/internal/models"
	"github.com/rehasoft/rehab-center-api/pkg/config"
	appErrors "github.com/rehasoft/rehab-center-api/pkg/errors"
)

type substitutePool interface {
	FindByID(ctx context.Context, id string) (*models.Therapist, error)
	ListActiveBySpecialization(ctx context.Context, specialization, excludeID string) ([]models.Therapist, error)
}

type substituteStats interface {
	CountOccupying(ctx context.Context, therapistID, date, excludeSessionID string) (int, error)
	CountCompletedWith(ctx context.Context, beneficiaryID, therapistID string) (int, error)
}

type conflictReporter interface {
	HasConflict(ctx context.Context, therapistID, date, startTime, endTime, excludeSessionID string) (bool, error)
}

// SubstituteCandidate is one ranked replacement therapist.
type SubstituteCandidate struct {
	Therapist    models.Therapist `json:"therapist"`
	Score        int              `json:"score"`
	SameDayCount int              `json:"same_day_count"`
	Reasons      []string         `json:"reasons"`
}

// SubstitutionService ranks replacement therapists for a slot whose assigned
// therapist has become unavailable. It never books anything itself.
type SubstitutionService struct {
	therapists substitutePool
	sessions   substituteStats
	conflicts  conflictReporter
	weights    config.SubstitutionConfig
	logger     *zap.Logger
}

// NewSubstitutionService builds the substitute matcher.
func NewSubstitutionService(therapists substitutePool, sessions substituteStats, conflicts conflictReporter, weights config.SubstitutionConfig, logger *zap.Logger) *SubstitutionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubstitutionService{
		therapists: therapists,
		sessions:   sessions,
		conflicts:  conflicts,
		weights:    weights,
		logger:     logger,
	}
}

// FindSubstitutes returns same-specialization active therapists free at the
// given slot, ordered best first. Scoring favours continuity of care with
// the beneficiary and lightly booked days; ties resolve toward the less
// loaded candidate. beneficiaryID may be empty, in which case continuity
// scoring is skipped.
func (s *SubstitutionService) FindSubstitutes(ctx context.Context, originalTherapistID, date, startTime, endTime, beneficiaryID string) ([]SubstituteCandidate, error) {
	if _, err := models.ParseDate(date); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q", date))
	}
	if _, err := models.NewTimeRange(startTime, endTime); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	original, err := s.therapists.FindByID(ctx, originalTherapistID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "therapist not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load original therapist")
	}

	seen := map[string]bool{}
	var pool []models.Therapist
	for _, specialization := range original.Specializations {
		candidates, err := s.therapists.ListActiveBySpecialization(ctx, specialization, originalTherapistID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate therapists")
		}
		for _, candidate := range candidates {
			if seen[candidate.ID] {
				continue
			}
			seen[candidate.ID] = true
			pool = append(pool, candidate)
		}
	}

	results := make([]SubstituteCandidate, 0, len(pool))
	for _, candidate := range pool {
		busy, err := s.conflicts.HasConflict(ctx, candidate.ID, date, startTime, endTime, "")
		if err != nil {
			return nil, err
		}
		if busy {
			continue
		}

		scored, err := s.score(ctx, candidate, date, beneficiaryID)
		if err != nil {
			return nil, err
		}
		results = append(results, scored)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].SameDayCount < results[j].SameDayCount
	})

	s.logger.Sugar().Infow("substitute search completed", "original_therapist_id", originalTherapistID, "date", date, "candidates", len(results))
	return results, nil
}

func (s *SubstitutionService) score(ctx context.Context, candidate models.Therapist, date, beneficiaryID string) (SubstituteCandidate, error) {
	result := SubstituteCandidate{Therapist: candidate, Reasons: []string{}}

	if beneficiaryID != "" {
		prior, err := s.sessions.CountCompletedWith(ctx, beneficiaryID, candidate.ID)
		if err != nil {
			return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count prior sessions")
		}
		if prior > 0 {
			result.Score += s.weights.ContinuityWeight
			result.Reasons = append(result.Reasons, fmt.Sprintf("%d prior completed sessions with this beneficiary", prior))
		}
	}

	sameDay, err := s.sessions.CountOccupying(ctx, candidate.ID, date, "")
	if err != nil {
		return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count same-day sessions")
	}
	result.SameDayCount = sameDay

	switch {
	case sameDay < s.weights.LightScheduleBelow:
		result.Score += s.weights.LightScheduleWeight
		result.Reasons = append(result.Reasons, fmt.Sprintf("light schedule (%d sessions that day)", sameDay))
	case sameDay > s.weights.HeavyScheduleAbove:
		result.Score += s.weights.HeavyScheduleWeight
		result.Reasons = append(result.Reasons, fmt.Sprintf("heavily booked (%d sessions that day)", sameDay))
	}
	return result, nil
}
