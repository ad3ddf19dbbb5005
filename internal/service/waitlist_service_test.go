package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rehasoft/rehab-center-api/internal/models"
	"github.com/rehasoft/rehab-center-api/pkg/config"
	appErrors "github.com/rehasoft/rehab-center-api/pkg/errors"
)

type waitlistRepoStub struct {
	items   map[string]*models.WaitlistEntry
	expired int64
	cutoff  time.Time
}

func newWaitlistRepoStub() *waitlistRepoStub {
	return &waitlistRepoStub{items: map[string]*models.WaitlistEntry{}}
}

func (m *waitlistRepoStub) Create(ctx context.Context, entry *models.WaitlistEntry) error {
	entry.ID = "wait-1"
	cp := *entry
	m.items[entry.ID] = &cp
	return nil
}

func (m *waitlistRepoStub) FindByID(ctx context.Context, id string) (*models.WaitlistEntry, error) {
	entry, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *entry
	return &cp, nil
}

func (m *waitlistRepoStub) List(ctx context.Context, filter models.WaitlistFilter) ([]models.WaitlistEntry, int, error) {
	var result []models.WaitlistEntry
	for _, entry := range m.items {
		result = append(result, *entry)
	}
	return result, len(result), nil
}

func (m *waitlistRepoStub) UpdateStatus(ctx context.Context, id string, status models.WaitlistStatus) error {
	if entry, ok := m.items[id]; ok {
		entry.Status = status
	}
	return nil
}

func (m *waitlistRepoStub) ExpireOffersBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.cutoff = cutoff
	return m.expired, nil
}

func newWaitlistService(repo *waitlistRepoStub) *WaitlistService {
	beneficiaries := &beneficiaryDirStub{items: map[string]*models.Beneficiary{
		"beneficiary-1": {ID: "beneficiary-1", FullName: "Ada Osei", Department: "PHYSIO", Active: true},
	}}
	cfg := config.WaitlistConfig{OfferTTL: 24 * time.Hour}
	return NewWaitlistService(repo, beneficiaries, cfg, validator.New(), zap.NewNop())
}

func validWaitlistRequest() CreateWaitlistEntryRequest {
	return CreateWaitlistEntryRequest{
		BeneficiaryID:  "beneficiary-1",
		Department:     "physio",
		PreferredDays:  []string{"MON", "WED"},
		PreferredStart: "09:00",
		PreferredEnd:   "12:00",
		Priority:       "high",
	}
}

func TestWaitlistCreateNormalizes(t *testing.T) {
	repo := newWaitlistRepoStub()
	service := newWaitlistService(repo)

	entry, err := service.Create(context.Background(), validWaitlistRequest())
	require.NoError(t, err)
	assert.Equal(t, "PHYSIO", entry.Department)
	assert.Equal(t, models.WaitlistPriorityHigh, entry.Priority)
	assert.Equal(t, models.WaitlistWaiting, entry.Status)
}

func TestWaitlistCreateRejectsBadDay(t *testing.T) {
	service := newWaitlistService(newWaitlistRepoStub())
	req := validWaitlistRequest()
	req.PreferredDays = []string{"MONDAY"}

	_, err := service.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestWaitlistCreateRejectsBadPriority(t *testing.T) {
	service := newWaitlistService(newWaitlistRepoStub())
	req := validWaitlistRequest()
	req.Priority = "URGENT"

	_, err := service.Create(context.Background(), req)
	require.Error(t, err)
}

func TestWaitlistCreateUnknownBeneficiary(t *testing.T) {
	service := newWaitlistService(newWaitlistRepoStub())
	req := validWaitlistRequest()
	req.BeneficiaryID = "missing"

	_, err := service.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestWaitlistRespondAccept(t *testing.T) {
	repo := newWaitlistRepoStub()
	repo.items["wait-1"] = &models.WaitlistEntry{ID: "wait-1", Status: models.WaitlistOffered}
	service := newWaitlistService(repo)

	entry, err := service.Respond(context.Background(), "wait-1", true)
	require.NoError(t, err)
	assert.Equal(t, models.WaitlistBooked, entry.Status)
}

func TestWaitlistRespondDeclineReturnsToWaiting(t *testing.T) {
	repo := newWaitlistRepoStub()
	repo.items["wait-1"] = &models.WaitlistEntry{ID: "wait-1", Status: models.WaitlistOffered}
	service := newWaitlistService(repo)

	entry, err := service.Respond(context.Background(), "wait-1", false)
	require.NoError(t, err)
	assert.Equal(t, models.WaitlistWaiting, entry.Status)
}

func TestWaitlistRespondRequiresOfferedState(t *testing.T) {
	repo := newWaitlistRepoStub()
	repo.items["wait-1"] = &models.WaitlistEntry{ID: "wait-1", Status: models.WaitlistWaiting}
	service := newWaitlistService(repo)

	_, err := service.Respond(context.Background(), "wait-1", true)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrIllegalTransition.Code, appErrors.FromError(err).Code)
}

func TestWaitlistExpireStaleUsesOfferWindow(t *testing.T) {
	repo := newWaitlistRepoStub()
	repo.expired = 2
	service := newWaitlistService(repo)

	before := time.Now().UTC().Add(-24 * time.Hour)
	expired, err := service.ExpireStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), expired)
	assert.WithinDuration(t, before, repo.cutoff, time.Minute)
}
