package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/rehasoft/rehab-center-api/internal/models"
	appErrors "github.com/rehasoft/rehab-center-api/pkg/errors"
)

type occupyingLister interface {
	ListOccupying(ctx context.Context, therapistID, date string) ([]models.TherapySession, error)
}

type bufferResolver interface {
	BufferMinutes(ctx context.Context, therapistID string) (int, error)
}

// ConflictService detects overlaps between a requested slot and the
// sessions already holding time for a therapist on a date.
type ConflictService struct {
	sessions occupyingLister
	buffers  bufferResolver
	logger   *zap.Logger
}

// NewConflictService builds the detector.
func NewConflictService(sessions occupyingLister, buffers bufferResolver, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{sessions: sessions, buffers: buffers, logger: logger}
}

// FindConflict returns the first existing session separated from the
// requested range by less than the therapist's minimum break. The buffer
// applies on both sides of an existing session. excludeSessionID removes
// one session from the scan so a reschedule never collides with itself.
// A nil result means the slot is free.
func (s *ConflictService) FindConflict(ctx context.Context, therapistID, date, startTime, endTime, excludeSessionID string) (*models.TherapySession, error) {
	requested, err := models.NewTimeRange(startTime, endTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	existing, err := s.sessions.ListOccupying(ctx, therapistID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}
	if len(existing) == 0 {
		return nil, nil
	}

	buffer, err := s.buffers.BufferMinutes(ctx, therapistID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve session buffer")
	}

	for i := range existing {
		session := &existing[i]
		if session.ID == excludeSessionID {
			continue
		}
		booked, err := models.NewTimeRange(session.StartTime, session.EndTime)
		if err != nil {
			s.logger.Sugar().Warnw("stored session has invalid time range", "session_id", session.ID, "error", err)
			continue
		}
		if requested.Overlaps(booked.WidenEnd(buffer)) || booked.Overlaps(requested.WidenEnd(buffer)) {
			return session, nil
		}
	}
	return nil, nil
}

// HasConflict reports whether any existing session blocks the requested slot.
func (s *ConflictService) HasConflict(ctx context.Context, therapistID, date, startTime, endTime, excludeSessionID string) (bool, error) {
	conflict, err := s.FindConflict(ctx, therapistID, date, startTime, endTime, excludeSessionID)
	if err != nil {
		return false, err
	}
	return conflict != nil, nil
}
