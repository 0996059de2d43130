package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-fleet-api/internal/models"
	"github.com/noah-isme/edu-fleet-api/internal/service"
	"github.com/noah-isme/edu-fleet-api/pkg/export"
	"github.com/noah-isme/edu-fleet-api/pkg/response"
)

type reservationService interface {
	List(ctx context.Context, principal models.Principal, filter models.ReservationFilter) ([]models.ReservationView, *models.Pagination, error)
	UpdateStatus(ctx context.Context, principal models.Principal, id string, req service.ReservationStatusRequest) (*models.Reservation, error)
	Calendar(ctx context.Context, principal models.Principal) ([]byte, error)
}

// ReservationHandler serves the equipment request ledger.
type ReservationHandler struct {
	service reservationService
}

// NewReservationHandler constructs a reservation handler.
func NewReservationHandler(svc reservationService) *ReservationHandler {
	return &ReservationHandler{service: svc}
}

// List godoc
// @Summary List equipment requests
// @Description Admins and managers see every request; other callers see their own.
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param status query string false "Comma separated statuses"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *ReservationHandler) List(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	filter := models.ReservationFilter{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "limit", 20),
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		for _, status := range strings.Split(raw, ",") {
			if status = strings.TrimSpace(status); status != "" {
				filter.Statuses = append(filter.Statuses, status)
			}
		}
	}
	views, pagination, err := h.service.List(c.Request.Context(), principal, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, pagination)
}

// UpdateStatus godoc
// @Summary Approve, reject or close an equipment request
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param payload body service.ReservationStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/status [put]
func (h *ReservationHandler) UpdateStatus(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req service.ReservationStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	reservation, err := h.service.UpdateStatus(c.Request.Context(), principal, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservation, nil)
}

// Calendar godoc
// @Summary The caller's active equipment requests as iCalendar
// @Tags Requests
// @Produce text/calendar
// @Security BearerAuth
// @Success 200 {file} file
// @Router /requests/calendar.ics [get]
func (h *ReservationHandler) Calendar(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	body, err := h.service.Calendar(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, "reservations.ics", export.ICSContentType, body)
}
