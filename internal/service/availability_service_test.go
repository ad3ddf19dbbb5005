package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rehasoft/rehab-center-api/internal/models"
	"github.com/rehasoft/rehab-center-api/pkg/config"
)

type availabilityRepoStub struct {
	stored  *models.TherapistAvailability
	metrics *models.AvailabilityMetrics
}

func (m *availabilityRepoStub) GetByTherapist(ctx context.Context, therapistID string) (*models.TherapistAvailability, error) {
	if m.stored == nil {
		return nil, sql.ErrNoRows
	}
	cp := *m.stored
	return &cp, nil
}

func (m *availabilityRepoStub) Upsert(ctx context.Context, availability *models.TherapistAvailability) error {
	cp := *availability
	m.stored = &cp
	return nil
}

func (m *availabilityRepoStub) UpdateMetrics(ctx context.Context, therapistID string, metrics models.AvailabilityMetrics) error {
	m.metrics = &metrics
	return nil
}

type therapistDirStub struct {
	items map[string]*models.Therapist
}

func (m *therapistDirStub) FindByID(ctx context.Context, id string) (*models.Therapist, error) {
	therapist, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *therapist
	return &cp, nil
}

func (m *therapistDirStub) ListActiveBySpecialization(ctx context.Context, specialization, excludeID string) ([]models.Therapist, error) {
	var result []models.Therapist
	for _, therapist := range m.items {
		if therapist.ID == excludeID || !therapist.Active || !therapist.HasSpecialization(specialization) {
			continue
		}
		result = append(result, *therapist)
	}
	return result, nil
}

type sessionAggregatesStub struct {
	occupying map[string]int
	excluded  map[string]bool
	counts    map[models.SessionStatus]int
	rating    float64
}

func (m *sessionAggregatesStub) CountOccupying(ctx context.Context, therapistID, date, excludeSessionID string) (int, error) {
	count := m.occupying[therapistID+"|"+date]
	if excludeSessionID != "" && m.excluded != nil && m.excluded[excludeSessionID] {
		count--
	}
	return count, nil
}

func (m *sessionAggregatesStub) StatusCounts(ctx context.Context, therapistID string) (map[models.SessionStatus]int, error) {
	return m.counts, nil
}

func (m *sessionAggregatesStub) AverageRating(ctx context.Context, therapistID string) (float64, error) {
	return m.rating, nil
}

func strPtr(s string) *string { return &s }

func weekdayAvailability() *models.TherapistAvailability {
	return &models.TherapistAvailability{
		ID:          "avail-1",
		TherapistID: "therapist-1",
		RecurringSchedule: []models.AvailabilitySlot{
			{DayOfWeek: models.DayMonday, StartTime: "08:00", EndTime: "16:00", BreakStart: strPtr("12:00"), BreakEnd: strPtr("13:00"), IsActive: true},
			{DayOfWeek: models.DayTuesday, StartTime: "08:00", EndTime: "12:00", IsActive: true},
		},
		Preferences: models.AvailabilityPreferences{MaxSessionsPerDay: 3, MinBreakBetweenSessions: 10},
	}
}

func newAvailabilityService(repo *availabilityRepoStub, sessions *sessionAggregatesStub) *AvailabilityService {
	therapists := &therapistDirStub{items: map[string]*models.Therapist{
		"therapist-1": {ID: "therapist-1", FullName: "Dana Reyes", Department: "PHYSIO", Active: true},
	}}
	if sessions == nil {
		sessions = &sessionAggregatesStub{}
	}
	scheduling := config.SchedulingConfig{DefaultBufferMinutes: 15, DefaultMaxSessionsPerDay: 8}
	return NewAvailabilityService(repo, therapists, sessions, nil, scheduling, nil, validator.New(), zap.NewNop())
}

func TestCheckAvailabilityWithinWorkingHours(t *testing.T) {
	service := newAvailabilityService(&availabilityRepoStub{stored: weekdayAvailability()}, nil)

	// 2025-03-03 is a Monday.
	decision, err := service.CheckAvailability(context.Background(), "therapist-1", "2025-03-03", "09:00", "10:00", "")
	require.NoError(t, err)
	assert.True(t, decision.Available)
	assert.Empty(t, decision.Reason)
}

func TestCheckAvailabilityOutsideWorkingHours(t *testing.T) {
	service := newAvailabilityService(&availabilityRepoStub{stored: weekdayAvailability()}, nil)

	decision, err := service.CheckAvailability(context.Background(), "therapist-1", "2025-03-03", "17:00", "18:00", "")
	require.NoError(t, err)
	assert.False(t, decision.Available)
	assert.Contains(t, decision.Reason, "outside working hours")
}

func TestCheckAvailabilityOffDay(t *testing.T) {
	service := newAvailabilityService(&availabilityRepoStub{stored: weekdayAvailability()}, nil)

	// 2025-03-02 is a Sunday with no recurring slot.
	decision, err := service.CheckAvailability(context.Background(), "therapist-1", "2025-03-02", "09:00", "10:00", "")
	require.NoError(t, err)
	assert.False(t, decision.Available)
	assert.Contains(t, decision.Reason, "SUN")
}

func TestCheckAvailabilityBreakOverlap(t *testing.T) {
	service := newAvailabilityService(&availabilityRepoStub{stored: weekdayAvailability()}, nil)

	decision, err := service.CheckAvailability(context.Background(), "therapist-1", "2025-03-03", "12:30", "13:30", "")
	require.NoError(t, err)
	assert.False(t, decision.Available)
	assert.Contains(t, decision.Reason, "break time (12:00-13:00)")
}

func TestCheckAvailabilityExceptionBlanksDay(t *testing.T) {
	availability := weekdayAvailability()
	availability.Exceptions = []models.AvailabilityException{
		{Date: "2025-03-03", Reason: "conference", IsAvailable: false},
	}
	service := newAvailabilityService(&availabilityRepoStub{stored: availability}, nil)

	decision, err := service.CheckAvailability(context.Background(), "therapist-1", "2025-03-03", "09:00", "10:00", "")
	require.NoError(t, err)
	assert.False(t, decision.Available)
	assert.Contains(t, decision.Reason, "conference")
}

func TestCheckAvailabilityExceptionReplacesSlots(t *testing.T) {
	availability := weekdayAvailability()
	availability.Exceptions = []models.AvailabilityException{
		{Date: "2025-03-03", IsAvailable: true, Slots: []models.AvailabilitySlot{
			{DayOfWeek: models.DayMonday, StartTime: "14:00", EndTime: "18:00", IsActive: true},
		}},
	}
	service := newAvailabilityService(&availabilityRepoStub{stored: availability}, nil)

	morning, err := service.CheckAvailability(context.Background(), "therapist-1", "2025-03-03", "09:00", "10:00", "")
	require.NoError(t, err)
	assert.False(t, morning.Available)

	afternoon, err := service.CheckAvailability(context.Background(), "therapist-1", "2025-03-03", "15:00", "16:00", "")
	require.NoError(t, err)
	assert.True(t, afternoon.Available)
}

func TestCheckAvailabilityDailyCap(t *testing.T) {
	sessions := &sessionAggregatesStub{occupying: map[string]int{"therapist-1|2025-03-03": 3}}
	service := newAvailabilityService(&availabilityRepoStub{stored: weekdayAvailability()}, sessions)

	decision, err := service.CheckAvailability(context.Background(), "therapist-1", "2025-03-03", "09:00", "10:00", "")
	require.NoError(t, err)
	assert.False(t, decision.Available)
	assert.Equal(t, "daily session limit reached", decision.Reason)
}

func TestCheckAvailabilityDailyCapIgnoresMovedSession(t *testing.T) {
	sessions := &sessionAggregatesStub{
		occupying: map[string]int{"therapist-1|2025-03-03": 3},
		excluded:  map[string]bool{"sess-1": true},
	}
	service := newAvailabilityService(&availabilityRepoStub{stored: weekdayAvailability()}, sessions)

	decision, err := service.CheckAvailability(context.Background(), "therapist-1", "2025-03-03", "09:00", "10:00", "sess-1")
	require.NoError(t, err)
	assert.True(t, decision.Available)
}

func TestCheckAvailabilityNoRecordIsPermissive(t *testing.T) {
	service := newAvailabilityService(&availabilityRepoStub{}, nil)

	decision, err := service.CheckAvailability(context.Background(), "therapist-1", "2025-03-02", "06:00", "07:00", "")
	require.NoError(t, err)
	assert.True(t, decision.Available)
}

func TestCheckAvailabilityNoRecordStillCapped(t *testing.T) {
	sessions := &sessionAggregatesStub{occupying: map[string]int{"therapist-1|2025-03-03": 8}}
	service := newAvailabilityService(&availabilityRepoStub{}, sessions)

	decision, err := service.CheckAvailability(context.Background(), "therapist-1", "2025-03-03", "09:00", "10:00", "")
	require.NoError(t, err)
	assert.False(t, decision.Available)
	assert.Equal(t, "daily session limit reached", decision.Reason)
}

func TestBufferMinutesFallsBackToDefault(t *testing.T) {
	service := newAvailabilityService(&availabilityRepoStub{}, nil)

	buffer, err := service.BufferMinutes(context.Background(), "therapist-1")
	require.NoError(t, err)
	assert.Equal(t, 15, buffer)
}

func TestBufferMinutesUsesPreference(t *testing.T) {
	service := newAvailabilityService(&availabilityRepoStub{stored: weekdayAvailability()}, nil)

	buffer, err := service.BufferMinutes(context.Background(), "therapist-1")
	require.NoError(t, err)
	assert.Equal(t, 10, buffer)
}

func TestUpsertRejectsBreakOutsideSlot(t *testing.T) {
	service := newAvailabilityService(&availabilityRepoStub{}, nil)

	_, err := service.Upsert(context.Background(), "therapist-1", UpsertAvailabilityRequest{
		RecurringSchedule: []models.AvailabilitySlot{
			{DayOfWeek: "MON", StartTime: "09:00", EndTime: "12:00", BreakStart: strPtr("11:30"), BreakEnd: strPtr("12:30"), IsActive: true},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "break window")
}

func TestUpsertNormalizesDayCodes(t *testing.T) {
	repo := &availabilityRepoStub{}
	service := newAvailabilityService(repo, nil)

	stored, err := service.Upsert(context.Background(), "therapist-1", UpsertAvailabilityRequest{
		RecurringSchedule: []models.AvailabilitySlot{
			{DayOfWeek: "mon", StartTime: "09:00", EndTime: "12:00", IsActive: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "MON", stored.RecurringSchedule[0].DayOfWeek)
	require.NotNil(t, repo.stored)
}

func TestRefreshMetricsComputesRates(t *testing.T) {
	repo := &availabilityRepoStub{stored: weekdayAvailability()}
	sessions := &sessionAggregatesStub{
		counts: map[models.SessionStatus]int{
			models.SessionCompleted:          6,
			models.SessionCancelledByPatient: 2,
			models.SessionNoShow:             2,
		},
		rating: 4.5,
	}
	service := newAvailabilityService(repo, sessions)

	require.NoError(t, service.RefreshMetrics(context.Background(), "therapist-1"))
	require.NotNil(t, repo.metrics)
	assert.Equal(t, 6, repo.metrics.TotalSessionsCompleted)
	assert.InDelta(t, 0.2, repo.metrics.CancellationRate, 1e-9)
	assert.InDelta(t, 0.2, repo.metrics.NoShowRate, 1e-9)
	assert.InDelta(t, 4.5, repo.metrics.AverageSessionRating, 1e-9)
}
