package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edu-fleet-api/internal/models"
	appErrors "github.com/noah-isme/edu-fleet-api/pkg/errors"
	"github.com/noah-isme/edu-fleet-api/pkg/export"
)

// Supported export formats.
const (
	ExportFormatCSV  = "csv"
	ExportFormatPDF  = "pdf"
	ExportFormatXLSX = "xlsx"
)

var curriculumExportHeaders = []string{"Code", "Subject", "Grade Level", "Room", "Teacher", "Lessons", "Fleets", "Fleet Serials", "Total Equipment", "Available"}

type curriculumViewer interface {
	View(ctx context.Context) (*models.CurriculumView, bool, error)
}

// ExportResult is a rendered document ready to be sent as an attachment.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the curriculum view into downloadable documents.
type ExportService struct {
	curriculum curriculumViewer
	renderers  map[string]export.Renderer
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the package defaults.
func NewExportService(curriculum curriculumViewer, logger *zap.Logger, renderers map[string]export.Renderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderers == nil {
		renderers = map[string]export.Renderer{
			ExportFormatCSV:  export.NewCSVExporter(),
			ExportFormatPDF:  export.NewPDFExporter(),
			ExportFormatXLSX: export.NewXLSXExporter(),
		}
	}
	return &ExportService{curriculum: curriculum, renderers: renderers, logger: logger, now: time.Now}
}

// ExportCurriculum renders the curriculum view in the requested format.
func (s *ExportService) ExportCurriculum(ctx context.Context, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	view, _, err := s.curriculum.View(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := renderer.Render(curriculumDataset(view))
	if err != nil {
		return nil, internalError(err, "failed to render curriculum export")
	}
	s.logger.Debug("curriculum exported", zap.String("format", format), zap.Int("bytes", len(payload)))

	return &ExportResult{
		Filename:    fmt.Sprintf("curriculum_%s.%s", s.now().UTC().Format("20060102_150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        payload,
	}, nil
}

func curriculumDataset(view *models.CurriculumView) export.Dataset {
	rows := make([]map[string]string, 0, len(view.Subjects))
	for _, subject := range view.Subjects {
		serials := make([]string, 0, len(subject.Fleets))
		available := 0
		for _, fleet := range subject.Fleets {
			serials = append(serials, fleet.BaseSerial)
			available += fleet.AvailableCount
		}
		rows = append(rows, map[string]string{
			"Code":            subject.Code,
			"Subject":         subject.Name,
			"Grade Level":     subject.GradeLevel,
			"Room":            subject.Room,
			"Teacher":         subject.TeacherName,
			"Lessons":         strconv.Itoa(subject.LessonCount),
			"Fleets":          strconv.Itoa(subject.FleetCount),
			"Fleet Serials":   strings.Join(serials, ", "),
			"Total Equipment": strconv.Itoa(subject.TotalEquipment),
			"Available":       strconv.Itoa(available),
		})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Curriculum Equipment Map (%d subjects, %d items mapped)", view.Summary.TotalSubjects, view.Summary.TotalEquipmentMapped),
		Headers: curriculumExportHeaders,
		Rows:    rows,
	}
}
