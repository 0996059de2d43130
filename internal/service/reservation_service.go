package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-fleet-api/internal/models"
	"github.com/noah-isme/edu-fleet-api/pkg/database"
	appErrors "github.com/noah-isme/edu-fleet-api/pkg/errors"
	"github.com/noah-isme/edu-fleet-api/pkg/export"
	"github.com/noah-isme/edu-fleet-api/pkg/validation"
)

type reservationRepository interface {
	List(ctx context.Context, filter models.ReservationFilter) ([]models.ReservationView, int, error)
	ListActiveForUser(ctx context.Context, userID string) ([]models.ReservationView, error)
	UpdateStatus(ctx context.Context, id string, status models.ReservationStatus) (*models.Reservation, error)
}

// ReservationStatusRequest moves a reservation through its approval lifecycle.
type ReservationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected returned cancelled"`
}

// ReservationService exposes the request ledger.
type ReservationService struct {
	repo      reservationRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewReservationService constructs a reservation service.
func NewReservationService(repo reservationRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ReservationService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationService{repo: repo, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// List returns the caller's reservations. Admins and managers see every reservation.
func (s *ReservationService) List(ctx context.Context, principal models.Principal, filter models.ReservationFilter) ([]models.ReservationView, *models.Pagination, error) {
	if !principal.HasRole(models.RoleAdmin, models.RoleManager) {
		filter.UserID = principal.UserID
	}
	for _, status := range filter.Statuses {
		if !models.ReservationStatus(status).Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown reservation status %q", status))
		}
	}
	views, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list equipment requests")
	}
	if views == nil {
		views = []models.ReservationView{}
	}
	return views, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// UpdateStatus changes a reservation's status. Reactivating a reservation whose
// period was claimed meanwhile is rejected by the store.
func (s *ReservationService) UpdateStatus(ctx context.Context, principal models.Principal, id string, req ReservationStatusRequest) (*models.Reservation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid status payload")
	}
	reservation, err := s.repo.UpdateStatus(ctx, id, models.ReservationStatus(req.Status))
	if err != nil {
		if database.IsReservationConflict(err) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "Equipment is already reserved for this period")
		}
		return nil, lookupError(err, "Equipment request not found", "failed to update equipment request")
	}
	s.cache.Invalidate(ctx, cachePatternEquipment, cachePatternCurriculum)
	s.logger.Info("equipment request status changed",
		zap.String("request_id", reservation.ID),
		zap.String("status", string(reservation.Status)),
		zap.String("by", principal.UserID),
	)
	return reservation, nil
}

// Calendar renders the caller's active reservations as an iCalendar feed.
func (s *ReservationService) Calendar(ctx context.Context, principal models.Principal) ([]byte, error) {
	views, err := s.repo.ListActiveForUser(ctx, principal.UserID)
	if err != nil {
		return nil, internalError(err, "failed to load equipment requests")
	}

	stamp := s.now().UTC()
	events := make([]export.CalendarEvent, 0, len(views))
	for _, view := range views {
		summary := strings.TrimSpace(view.EquipmentName + " (" + view.SerialNumber + ")")
		events = append(events, export.CalendarEvent{
			UID:         view.ID + "@edu-fleet-api",
			Summary:     summary,
			Description: view.Notes,
			Location:    view.Location,
			Start:       view.StartDate.Time,
			End:         view.EndDate.Time,
			Tentative:   view.Status == models.ReservationPending,
			Stamp:       stamp,
		})
	}
	return export.RenderCalendar("Equipment reservations", events), nil
}
