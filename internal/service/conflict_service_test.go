package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rehasoft/rehab-center-api/internal/models"
)

type occupyingListerStub struct {
	sessions []models.TherapySession
}

func (m *occupyingListerStub) ListOccupying(ctx context.Context, therapistID, date string) ([]models.TherapySession, error) {
	return m.sessions, nil
}

type bufferResolverStub struct {
	minutes int
}

func (m *bufferResolverStub) BufferMinutes(ctx context.Context, therapistID string) (int, error) {
	return m.minutes, nil
}

func occupied(id, start, end string) models.TherapySession {
	return models.TherapySession{
		ID:          id,
		TherapistID: "therapist-1",
		Date:        "2025-03-03",
		StartTime:   start,
		EndTime:     end,
		Status:      models.SessionScheduled,
	}
}

func TestFindConflictDetectsOverlap(t *testing.T) {
	service := NewConflictService(
		&occupyingListerStub{sessions: []models.TherapySession{occupied("sess-1", "09:00", "10:00")}},
		&bufferResolverStub{},
		zap.NewNop(),
	)

	conflict, err := service.FindConflict(context.Background(), "therapist-1", "2025-03-03", "09:30", "10:30", "")
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, "sess-1", conflict.ID)
}

func TestFindConflictFreeSlot(t *testing.T) {
	service := NewConflictService(
		&occupyingListerStub{sessions: []models.TherapySession{occupied("sess-1", "09:00", "10:00")}},
		&bufferResolverStub{},
		zap.NewNop(),
	)

	conflict, err := service.FindConflict(context.Background(), "therapist-1", "2025-03-03", "10:00", "11:00", "")
	require.NoError(t, err)
	assert.Nil(t, conflict)
}

func TestFindConflictBufferAfterExisting(t *testing.T) {
	service := NewConflictService(
		&occupyingListerStub{sessions: []models.TherapySession{occupied("sess-1", "09:00", "10:00")}},
		&bufferResolverStub{minutes: 15},
		zap.NewNop(),
	)

	// 10:10 start leaves only 10 minutes after the existing session.
	conflict, err := service.FindConflict(context.Background(), "therapist-1", "2025-03-03", "10:10", "11:00", "")
	require.NoError(t, err)
	require.NotNil(t, conflict)

	conflict, err = service.FindConflict(context.Background(), "therapist-1", "2025-03-03", "10:15", "11:00", "")
	require.NoError(t, err)
	assert.Nil(t, conflict)
}

func TestFindConflictBufferBeforeExisting(t *testing.T) {
	service := NewConflictService(
		&occupyingListerStub{sessions: []models.TherapySession{occupied("sess-1", "10:00", "11:00")}},
		&bufferResolverStub{minutes: 15},
		zap.NewNop(),
	)

	// Ending at 09:50 leaves only 10 minutes before the existing session.
	conflict, err := service.FindConflict(context.Background(), "therapist-1", "2025-03-03", "09:00", "09:50", "")
	require.NoError(t, err)
	require.NotNil(t, conflict)

	conflict, err = service.FindConflict(context.Background(), "therapist-1", "2025-03-03", "09:00", "09:45", "")
	require.NoError(t, err)
	assert.Nil(t, conflict)
}

func TestFindConflictExcludesSelf(t *testing.T) {
	service := NewConflictService(
		&occupyingListerStub{sessions: []models.TherapySession{occupied("sess-1", "09:00", "10:00")}},
		&bufferResolverStub{minutes: 15},
		zap.NewNop(),
	)

	conflict, err := service.FindConflict(context.Background(), "therapist-1", "2025-03-03", "09:00", "10:00", "sess-1")
	require.NoError(t, err)
	assert.Nil(t, conflict)
}

func TestFindConflictSkipsInvalidStoredRange(t *testing.T) {
	service := NewConflictService(
		&occupyingListerStub{sessions: []models.TherapySession{
			occupied("sess-bad", "bogus", "10:00"),
			occupied("sess-2", "11:00", "12:00"),
		}},
		&bufferResolverStub{},
		zap.NewNop(),
	)

	conflict, err := service.FindConflict(context.Background(), "therapist-1", "2025-03-03", "11:30", "12:30", "")
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, "sess-2", conflict.ID)
}

func TestHasConflict(t *testing.T) {
	service := NewConflictService(
		&occupyingListerStub{sessions: []models.TherapySession{occupied("sess-1", "09:00", "10:00")}},
		&bufferResolverStub{},
		zap.NewNop(),
	)

	busy, err := service.HasConflict(context.Background(), "therapist-1", "2025-03-03", "09:30", "10:30", "")
	require.NoError(t, err)
	assert.True(t, busy)

	busy, err = service.HasConflict(context.Background(), "therapist-1", "2025-03-03", "14:00", "15:00", "")
	require.NoError(t, err)
	assert.False(t, busy)
}
