package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-fleet-api/internal/models"
	"github.com/noah-isme/edu-fleet-api/internal/service"
	"github.com/noah-isme/edu-fleet-api/pkg/response"
)

type curriculumService interface {
	View(ctx context.Context) (*models.CurriculumView, bool, error)
	Recommendations(ctx context.Context, subjectCode string) (*models.Recommendations, error)
}

type curriculumExporter interface {
	ExportCurriculum(ctx context.Context, format string) (*service.ExportResult, error)
}

// CurriculumHandler serves the curriculum equipment map.
type CurriculumHandler struct {
	curriculum curriculumService
	exporter   curriculumExporter
}

// NewCurriculumHandler constructs a curriculum handler.
func NewCurriculumHandler(curriculum curriculumService, exporter curriculumExporter) *CurriculumHandler {
	return &CurriculumHandler{curriculum: curriculum, exporter: exporter}
}

// View godoc
// @Summary Subjects mapped to equipment fleets
// @Tags Curriculum
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /curriculum [get]
func (h *CurriculumHandler) View(c *gin.Context) {
	view, hit, err := h.curriculum.View(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil, withCacheMeta(c, hit))
}

// Recommendations godoc
// @Summary Equipment recommendations for a subject
// @Description gap_analysis is illustrative sample data.
// @Tags Curriculum
// @Produce json
// @Security BearerAuth
// @Param subjectCode path string true "Subject code"
// @Success 200 {object} response.Envelope
// @Router /curriculum/{subjectCode}/recommendations [get]
func (h *CurriculumHandler) Recommendations(c *gin.Context) {
	recs, err := h.curriculum.Recommendations(c.Request.Context(), c.Param("subjectCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, recs, nil)
}

// Export godoc
// @Summary Download the curriculum equipment map
// @Tags Curriculum
// @Produce octet-stream
// @Security BearerAuth
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /curriculum/export [get]
func (h *CurriculumHandler) Export(c *gin.Context) {
	result, err := h.exporter.ExportCurriculum(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Data)
}
