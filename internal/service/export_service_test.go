package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/edu-fleet-api/internal/models"
	appErrors "github.com/noah-isme/edu-fleet-api/pkg/errors"
)

type curriculumViewerStub struct {
	view *models.CurriculumView
	err  error
}

func (m curriculumViewerStub) View(context.Context) (*models.CurriculumView, bool, error) {
	return m.view, false, m.err
}

func sampleCurriculumView() *models.CurriculumView {
	math := curriculumSubject("Mathematics", "MATH", 3, "LAP", "CALC")
	math.Room = "B12"
	return &models.CurriculumView{
		Subjects: []models.CurriculumSubject{{
			SubjectWithLessons: math,
			FleetCount:         2,
			TotalEquipment:     33,
			Fleets: []models.FleetGroup{
				{BaseSerial: "CALC", Name: "Calculator", Type: "calculator", TotalCount: 30, AvailableCount: 28},
				{BaseSerial: "LAP", Name: "Laptop", Type: "laptop", TotalCount: 3, AvailableCount: 1},
			},
		}},
		Summary: models.CurriculumSummary{TotalSubjects: 1, SubjectsWithFleets: 1, SubjectsWithLessons: 1, TotalEquipmentMapped: 33},
	}
}

func newExportServiceForTest(viewer curriculumViewer) *ExportService {
	svc := NewExportService(viewer, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }
	return svc
}

func TestExportServiceCurriculumCSV(t *testing.T) {
	svc := newExportServiceForTest(curriculumViewerStub{view: sampleCurriculumView()})

	result, err := svc.ExportCurriculum(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "curriculum_20240301_093000.csv", result.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", result.ContentType)

	records, err := csv.NewReader(bytes.NewReader(result.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, curriculumExportHeaders, records[0])
	assert.Equal(t, []string{"MATH", "Mathematics", "", "B12", "", "3", "2", "CALC, LAP", "33", "29"}, records[1])
}

func TestExportServiceCurriculumXLSX(t *testing.T) {
	svc := newExportServiceForTest(curriculumViewerStub{view: sampleCurriculumView()})

	result, err := svc.ExportCurriculum(context.Background(), "XLSX")
	require.NoError(t, err)
	assert.Equal(t, "curriculum_20240301_093000.xlsx", result.Filename)

	book, err := excelize.OpenReader(bytes.NewReader(result.Data))
	require.NoError(t, err)
	defer book.Close()
	code, err := book.GetCellValue("Export", "A3")
	require.NoError(t, err)
	assert.Equal(t, "MATH", code)
}

func TestExportServiceCurriculumPDF(t *testing.T) {
	svc := newExportServiceForTest(curriculumViewerStub{view: sampleCurriculumView()})

	result, err := svc.ExportCurriculum(context.Background(), "pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(result.Data, []byte("%PDF")))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := newExportServiceForTest(curriculumViewerStub{view: sampleCurriculumView()})

	_, err := svc.ExportCurriculum(context.Background(), "docx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServicePropagatesViewError(t *testing.T) {
	boom := internalError(errors.New("db down"), "failed to build curriculum view")
	svc := newExportServiceForTest(curriculumViewerStub{err: boom})

	_, err := svc.ExportCurriculum(context.Background(), "csv")
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
