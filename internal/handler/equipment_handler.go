package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-fleet-api/internal/dto"
	"github.com/noah-isme/edu-fleet-api/internal/models"
	"github.com/noah-isme/edu-fleet-api/internal/service"
	"github.com/noah-isme/edu-fleet-api/pkg/response"
)

type equipmentService interface {
	List(ctx context.Context, filter models.EquipmentFilter) ([]models.Equipment, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Equipment, error)
	Search(ctx context.Context, term string) (*models.Equipment, error)
	Create(ctx context.Context, req service.EquipmentRequest) (*models.Equipment, error)
	Update(ctx context.Context, id string, req service.EquipmentRequest) (*models.Equipment, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, req service.StatusRequest) (*models.Equipment, error)
	StartRepair(ctx context.Context, req dto.RepairRequest) (*models.Equipment, error)
	CompleteRepair(ctx context.Context, req dto.RepairRequest) (*models.Equipment, error)
	RetireFleet(ctx context.Context, req dto.RetireFleetRequest) (*dto.RetireFleetResponse, error)
	Groups(ctx context.Context) ([]models.FleetGroup, bool, error)
	LowStock(ctx context.Context) (*dto.LowStockResponse, error)
	NextAvailable(ctx context.Context, fleet, startDate, endDate string) (*models.Equipment, error)
}

// EquipmentHandler serves the equipment inventory.
type EquipmentHandler struct {
	service equipmentService
}

// NewEquipmentHandler constructs an equipment handler.
func NewEquipmentHandler(svc equipmentService) *EquipmentHandler {
	return &EquipmentHandler{service: svc}
}

// List godoc
// @Summary List equipment
// @Tags Equipment
// @Produce json
// @Security BearerAuth
// @Param status query string false "available, checked_out, under_repair or retired"
// @Param type query string false "Equipment type"
// @Param fleet query string false "Fleet serial"
// @Param search query string false "Serial or name keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /equipment [get]
func (h *EquipmentHandler) List(c *gin.Context) {
	filter := models.EquipmentFilter{
		Status:      models.EquipmentStatus(c.Query("status")),
		Type:        strings.ToLower(strings.TrimSpace(c.Query("type"))),
		FleetSerial: strings.TrimSpace(c.Query("fleet")),
		Search:      strings.TrimSpace(c.Query("search")),
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "limit", 20),
	}
	items, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get equipment by id
// @Tags Equipment
// @Produce json
// @Security BearerAuth
// @Param id path string true "Equipment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /equipment/{id} [get]
func (h *EquipmentHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Search godoc
// @Summary Find equipment by serial number fragment
// @Tags Equipment
// @Produce json
// @Security BearerAuth
// @Param serial path string true "Serial fragment"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /equipment/search/{serial} [get]
func (h *EquipmentHandler) Search(c *gin.Context) {
	item, err := h.service.Search(c.Request.Context(), c.Param("serial"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Groups godoc
// @Summary Equipment grouped by fleet
// @Tags Equipment
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /equipment/groups [get]
func (h *EquipmentHandler) Groups(c *gin.Context) {
	groups, hit, err := h.service.Groups(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil, withCacheMeta(c, hit))
}

// LowStock godoc
// @Summary Fleets running low on available units
// @Tags Equipment
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /equipment/low-stock [get]
func (h *EquipmentHandler) LowStock(c *gin.Context) {
	result, err := h.service.LowStock(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// NextAvailable godoc
// @Summary Next free unit of a fleet
// @Tags Equipment
// @Produce json
// @Security BearerAuth
// @Param baseSerial path string true "Fleet serial"
// @Param start_date query string true "YYYY-MM-DD"
// @Param end_date query string true "YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /equipment/fleet/{baseSerial}/next-available [get]
func (h *EquipmentHandler) NextAvailable(c *gin.Context) {
	item, err := h.service.NextAvailable(c.Request.Context(), c.Param("baseSerial"), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Add equipment
// @Tags Equipment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.EquipmentRequest true "Equipment"
// @Success 201 {object} response.Envelope
// @Router /equipment [post]
func (h *EquipmentHandler) Create(c *gin.Context) {
	var req service.EquipmentRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update equipment
// @Tags Equipment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Equipment ID"
// @Param payload body service.EquipmentRequest true "Equipment"
// @Success 200 {object} response.Envelope
// @Router /equipment/{id} [put]
func (h *EquipmentHandler) Update(c *gin.Context) {
	var req service.EquipmentRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete equipment
// @Tags Equipment
// @Produce json
// @Security BearerAuth
// @Param id path string true "Equipment ID"
// @Success 200 {object} response.Envelope
// @Router /equipment/{id} [delete]
func (h *EquipmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Equipment deleted successfully")
}

// UpdateStatus godoc
// @Summary Set equipment status
// @Tags Equipment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Equipment ID"
// @Param payload body service.StatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Router /equipment/{id}/status [put]
func (h *EquipmentHandler) UpdateStatus(c *gin.Context) {
	var req service.StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// StartRepair godoc
// @Summary Send equipment for repair
// @Tags Equipment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RepairRequest true "Repair"
// @Success 200 {object} response.Envelope
// @Router /equipment/repair [put]
func (h *EquipmentHandler) StartRepair(c *gin.Context) {
	var req dto.RepairRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.StartRepair(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// CompleteRepair godoc
// @Summary Return repaired equipment to service
// @Tags Equipment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RepairRequest true "Repair"
// @Success 200 {object} response.Envelope
// @Router /equipment/repair-complete [put]
func (h *EquipmentHandler) CompleteRepair(c *gin.Context) {
	var req dto.RepairRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.CompleteRepair(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// RetireFleet godoc
// @Summary Retire every unit of a fleet
// @Tags Equipment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RetireFleetRequest true "Fleet"
// @Success 200 {object} response.Envelope
// @Router /equipment/retire-fleet [put]
func (h *EquipmentHandler) RetireFleet(c *gin.Context) {
	var req dto.RetireFleetRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.service.RetireFleet(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
