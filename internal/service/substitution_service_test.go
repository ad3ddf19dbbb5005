package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rehasoft/rehab-center-api/internal/models"
	"github.com/rehasoft/rehab-center-api/pkg/config"
)

type substituteStatsStub struct {
	sameDay   map[string]int
	completed map[string]int
}

func (m *substituteStatsStub) CountOccupying(ctx context.Context, therapistID, date, excludeSessionID string) (int, error) {
	return m.sameDay[therapistID], nil
}

func (m *substituteStatsStub) CountCompletedWith(ctx context.Context, beneficiaryID, therapistID string) (int, error) {
	return m.completed[therapistID], nil
}

type conflictReporterStub struct {
	busy map[string]bool
}

func (m *conflictReporterStub) HasConflict(ctx context.Context, therapistID, date, startTime, endTime, excludeSessionID string) (bool, error) {
	return m.busy[therapistID], nil
}

func substitutionWeights() config.SubstitutionConfig {
	return config.SubstitutionConfig{
		ContinuityWeight:    10,
		LightScheduleWeight: 5,
		HeavyScheduleWeight: -5,
		LightScheduleBelow:  4,
		HeavyScheduleAbove:  6,
	}
}

func physioTherapist(id, name string, active bool) *models.Therapist {
	return &models.Therapist{
		ID:              id,
		FullName:        name,
		Department:      "PHYSIO",
		Specializations: []string{"physiotherapy"},
		Active:          active,
	}
}

func newSubstitutionFixture(stats *substituteStatsStub, conflicts *conflictReporterStub, extra ...*models.Therapist) *SubstitutionService {
	items := map[string]*models.Therapist{
		"original": physioTherapist("original", "Dana Reyes", true),
	}
	for _, therapist := range extra {
		items[therapist.ID] = therapist
	}
	therapists := &therapistDirStub{items: items}
	if stats == nil {
		stats = &substituteStatsStub{}
	}
	if conflicts == nil {
		conflicts = &conflictReporterStub{}
	}
	return NewSubstitutionService(therapists, stats, conflicts, substitutionWeights(), zap.NewNop())
}

func TestFindSubstitutesExcludesOriginalAndInactive(t *testing.T) {
	service := newSubstitutionFixture(nil, nil,
		physioTherapist("sub-1", "Liam Ortiz", true),
		physioTherapist("sub-2", "Mara Vance", false),
	)

	candidates, err := service.FindSubstitutes(context.Background(), "original", "2025-03-03", "09:00", "10:00", "")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "sub-1", candidates[0].Therapist.ID)
}

func TestFindSubstitutesFiltersBusyCandidates(t *testing.T) {
	conflicts := &conflictReporterStub{busy: map[string]bool{"sub-1": true}}
	service := newSubstitutionFixture(nil, conflicts,
		physioTherapist("sub-1", "Liam Ortiz", true),
		physioTherapist("sub-2", "Mara Vance", true),
	)

	candidates, err := service.FindSubstitutes(context.Background(), "original", "2025-03-03", "09:00", "10:00", "")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "sub-2", candidates[0].Therapist.ID)
}

func TestFindSubstitutesContinuityOutranksLoad(t *testing.T) {
	stats := &substituteStatsStub{
		sameDay:   map[string]int{"familiar": 5, "fresh": 2},
		completed: map[string]int{"familiar": 3},
	}
	service := newSubstitutionFixture(stats, nil,
		physioTherapist("familiar", "Liam Ortiz", true),
		physioTherapist("fresh", "Mara Vance", true),
	)

	candidates, err := service.FindSubstitutes(context.Background(), "original", "2025-03-03", "09:00", "10:00", "beneficiary-1")
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	// familiar: +10 continuity; fresh: +5 light schedule.
	assert.Equal(t, "familiar", candidates[0].Therapist.ID)
	assert.Equal(t, 10, candidates[0].Score)
	assert.Equal(t, "fresh", candidates[1].Therapist.ID)
	assert.Equal(t, 5, candidates[1].Score)
	assert.Contains(t, candidates[0].Reasons[0], "prior completed sessions")
}

func TestFindSubstitutesHeavyLoadPenalty(t *testing.T) {
	stats := &substituteStatsStub{sameDay: map[string]int{"packed": 7}}
	service := newSubstitutionFixture(stats, nil, physioTherapist("packed", "Liam Ortiz", true))

	candidates, err := service.FindSubstitutes(context.Background(), "original", "2025-03-03", "09:00", "10:00", "")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, -5, candidates[0].Score)
	assert.Contains(t, candidates[0].Reasons[0], "heavily booked")
}

func TestFindSubstitutesTieBrokenByLoad(t *testing.T) {
	stats := &substituteStatsStub{sameDay: map[string]int{"busier": 5, "calmer": 4}}
	service := newSubstitutionFixture(stats, nil,
		physioTherapist("busier", "Liam Ortiz", true),
		physioTherapist("calmer", "Mara Vance", true),
	)

	candidates, err := service.FindSubstitutes(context.Background(), "original", "2025-03-03", "09:00", "10:00", "")
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	// Both score zero; fewer same-day sessions wins.
	assert.Equal(t, 0, candidates[0].Score)
	assert.Equal(t, "calmer", candidates[0].Therapist.ID)
	assert.Equal(t, "busier", candidates[1].Therapist.ID)
}

func TestFindSubstitutesSkipsContinuityWithoutBeneficiary(t *testing.T) {
	stats := &substituteStatsStub{
		sameDay:   map[string]int{"familiar": 5},
		completed: map[string]int{"familiar": 3},
	}
	service := newSubstitutionFixture(stats, nil, physioTherapist("familiar", "Liam Ortiz", true))

	candidates, err := service.FindSubstitutes(context.Background(), "original", "2025-03-03", "09:00", "10:00", "")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, 0, candidates[0].Score)
}

func TestFindSubstitutesInvalidDate(t *testing.T) {
	service := newSubstitutionFixture(nil, nil)

	_, err := service.FindSubstitutes(context.Background(), "original", "03/03/2025", "09:00", "10:00", "")
	require.Error(t, err)
}
