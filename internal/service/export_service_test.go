package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rehasoft/rehab-center-api/internal/models"
	appErrors "github.com/rehasoft/rehab-center-api/pkg/errors"
)

func newExportFixture() (*ExportService, *sessionRepoStub) {
	repo := newSessionRepoStub()
	repo.items["sess-1"] = &models.TherapySession{
		ID:            "sess-1",
		TherapistID:   "therapist-1",
		BeneficiaryID: "beneficiary-1",
		Date:          "2025-03-03",
		StartTime:     "09:00",
		EndTime:       "10:00",
		Status:        models.SessionScheduled,
	}
	therapists := &therapistDirStub{items: map[string]*models.Therapist{
		"therapist-1": {ID: "therapist-1", FullName: "Dr. Kwame Mensah", Department: "PHYSIO", Active: true},
	}}
	return NewExportService(repo, therapists, zap.NewNop()), repo
}

func TestExportScheduleCSV(t *testing.T) {
	service, _ := newExportFixture()

	result, err := service.TherapistSchedule(context.Background(), "therapist-1", "2025-03-01", "2025-03-07", ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "schedule_dr__kwame_mensah_2025-03-01_2025-03-07.csv", result.Filename)
	assert.Contains(t, string(result.Content), "Date,Start,End,Beneficiary,Status")
	assert.Contains(t, string(result.Content), "2025-03-03,09:00,10:00,beneficiary-1,SCHEDULED")
}

func TestExportSchedulePDF(t *testing.T) {
	service, _ := newExportFixture()

	result, err := service.TherapistSchedule(context.Background(), "therapist-1", "2025-03-01", "2025-03-07", ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "schedule_dr__kwame_mensah_2025-03-01_2025-03-07.pdf", result.Filename)
	assert.True(t, bytes.HasPrefix(result.Content, []byte("%PDF")))
}

func TestExportScheduleInvalidRange(t *testing.T) {
	service, _ := newExportFixture()

	_, err := service.TherapistSchedule(context.Background(), "therapist-1", "2025-03-07", "2025-03-01", ExportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportScheduleUnknownTherapist(t *testing.T) {
	service, _ := newExportFixture()

	_, err := service.TherapistSchedule(context.Background(), "missing", "2025-03-01", "2025-03-07", ExportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportScheduleUnsupportedFormat(t *testing.T) {
	service, _ := newExportFixture()

	_, err := service.TherapistSchedule(context.Background(), "therapist-1", "2025-03-01", "2025-03-07", ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
