package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-fleet-api/internal/dto"
	"github.com/noah-isme/edu-fleet-api/internal/models"
	"github.com/noah-isme/edu-fleet-api/internal/service"
	"github.com/noah-isme/edu-fleet-api/pkg/response"
)

type lessonPlanService interface {
	List(ctx context.Context, principal models.Principal) ([]models.LessonPlan, error)
	Get(ctx context.Context, principal models.Principal, id string) (*models.LessonPlan, error)
	Create(ctx context.Context, principal models.Principal, req service.LessonPlanRequest) (*models.LessonPlan, error)
	Update(ctx context.Context, principal models.Principal, id string, req service.LessonPlanRequest) (*models.LessonPlan, error)
	Delete(ctx context.Context, principal models.Principal, id string) error
	BulkCreate(ctx context.Context, principal models.Principal, req service.BulkLessonPlanRequest) (*dto.BulkLessonPlanResponse, error)
	Stats(ctx context.Context, principal models.Principal) (*models.TeacherStats, error)
}

type allocationService interface {
	RequestEquipment(ctx context.Context, principal models.Principal, lessonPlanID string, req dto.RequestEquipmentRequest) (*dto.AllocationResponse, error)
}

// LessonPlanHandler serves lesson plans and equipment requests made for them.
type LessonPlanHandler struct {
	plans      lessonPlanService
	allocation allocationService
}

// NewLessonPlanHandler constructs a lesson plan handler.
func NewLessonPlanHandler(plans lessonPlanService, allocation allocationService) *LessonPlanHandler {
	return &LessonPlanHandler{plans: plans, allocation: allocation}
}

// List godoc
// @Summary List the caller's lesson plans
// @Tags LessonPlans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /lesson-plans [get]
func (h *LessonPlanHandler) List(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	plans, err := h.plans.List(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plans, nil)
}

// Get godoc
// @Summary Get a lesson plan
// @Tags LessonPlans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lesson plan ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lesson-plans/{id} [get]
func (h *LessonPlanHandler) Get(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	plan, err := h.plans.Get(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// Create godoc
// @Summary Create a lesson plan
// @Tags LessonPlans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.LessonPlanRequest true "Lesson plan"
// @Success 201 {object} response.Envelope
// @Router /lesson-plans [post]
func (h *LessonPlanHandler) Create(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req service.LessonPlanRequest
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.plans.Create(c.Request.Context(), principal, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, plan)
}

// Update godoc
// @Summary Update a lesson plan
// @Tags LessonPlans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lesson plan ID"
// @Param payload body service.LessonPlanRequest true "Lesson plan"
// @Success 200 {object} response.Envelope
// @Router /lesson-plans/{id} [put]
func (h *LessonPlanHandler) Update(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req service.LessonPlanRequest
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.plans.Update(c.Request.Context(), principal, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// Delete godoc
// @Summary Delete a lesson plan
// @Tags LessonPlans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lesson plan ID"
// @Success 200 {object} response.Envelope
// @Router /lesson-plans/{id} [delete]
func (h *LessonPlanHandler) Delete(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	if err := h.plans.Delete(c.Request.Context(), principal, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Lesson plan deleted successfully")
}

// BulkCreate godoc
// @Summary Create several lesson plans
// @Description Plans are inserted in order; a failure stops the batch and keeps earlier plans.
// @Tags LessonPlans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.BulkLessonPlanRequest true "Plans"
// @Success 201 {object} response.Envelope
// @Router /lesson-plans/bulk [post]
func (h *LessonPlanHandler) BulkCreate(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req service.BulkLessonPlanRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.plans.BulkCreate(c.Request.Context(), principal, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Stats godoc
// @Summary Lesson plan statistics for the caller
// @Tags LessonPlans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /teacher/stats [get]
func (h *LessonPlanHandler) Stats(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	stats, err := h.plans.Stats(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// RequestEquipment godoc
// @Summary Reserve equipment for a lesson plan
// @Description Each requested item is reserved for the period, or replaced by the next free unit of its fleet.
// @Tags LessonPlans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lesson plan ID"
// @Param payload body dto.RequestEquipmentRequest true "Requested equipment and period"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope "FLEET_EXHAUSTED when nothing could be reserved"
// @Failure 404 {object} response.Envelope
// @Router /lesson-plans/{id}/request-equipment [post]
func (h *LessonPlanHandler) RequestEquipment(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req dto.RequestEquipmentRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.allocation.RequestEquipment(c.Request.Context(), principal, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
