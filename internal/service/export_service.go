package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rehasoft/rehab-center-api/internal/models"
	appErrors "github.com/rehasoft/rehab-center-api/pkg/errors"
	"github.com/rehasoft/rehab-center-api/pkg/export"
)

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult carries rendered bytes plus response metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders therapist schedules as downloadable documents.
type ExportService struct {
	sessions   sessionRepository
	therapists therapistDirectory
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// NewExportService builds the schedule export service.
func NewExportService(sessions sessionRepository, therapists therapistDirectory, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		sessions:   sessions,
		therapists: therapists,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
}

var scheduleHeaders = []string{"Date", "Start", "End", "Beneficiary", "Status"}

// TherapistSchedule exports a therapist's sessions between two dates
// (inclusive) in the requested format.
func (s *ExportService) TherapistSchedule(ctx context.Context, therapistID, dateFrom, dateTo string, format ExportFormat) (*ExportResult, error) {
	if _, err := models.ParseDate(dateFrom); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q", dateFrom))
	}
	if _, err := models.ParseDate(dateTo); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q", dateTo))
	}
	if dateTo < dateFrom {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date range end precedes start")
	}

	therapist, err := s.therapists.FindByID(ctx, therapistID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "therapist not found")
	}

	sessions, _, err := s.sessions.List(ctx, models.SessionFilter{
		TherapistID: therapistID,
		DateFrom:    dateFrom,
		DateTo:      dateTo,
		PageSize:    100,
		SortBy:      "date",
		SortOrder:   "ASC",
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions for export")
	}

	dataset := export.Dataset{Headers: scheduleHeaders}
	for _, session := range sessions {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":        session.Date,
			"Start":       session.StartTime,
			"End":         session.EndTime,
			"Beneficiary": session.BeneficiaryID,
			"Status":      string(session.Status),
		})
	}

	base := fmt.Sprintf("schedule_%s_%s_%s", sanitizeFilename(therapist.FullName), dateFrom, dateTo)
	switch format {
	case ExportFormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: base + ".csv"}, nil
	case ExportFormatPDF:
		title := fmt.Sprintf("Schedule %s (%s to %s)", therapist.FullName, dateFrom, dateTo)
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: base + ".pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func sanitizeFilename(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
}
