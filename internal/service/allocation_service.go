package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-fleet-api/internal/dto"
	"github.com/noah-isme/edu-fleet-api/internal/models"
	"github.com/noah-isme/edu-fleet-api/pkg/database"
	appErrors "github.com/noah-isme/edu-fleet-api/pkg/errors"
	"github.com/noah-isme/edu-fleet-api/pkg/validation"
)

type txBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type allocationLessonPlans interface {
	FindByID(ctx context.Context, id string) (*models.LessonPlan, error)
}

type allocationEquipment interface {
	FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Equipment, error)
	NextAvailableInFleet(ctx context.Context, exec sqlx.ExtContext, fleet string, period models.DateRange, lock bool) (*models.Equipment, error)
}

type allocationReservations interface {
	HasActiveOverlap(ctx context.Context, exec sqlx.ExtContext, equipmentID string, period models.DateRange) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, reservation *models.Reservation) error
}

// errNoCandidate marks a requested id for which neither the item nor its fleet can serve the period.
var errNoCandidate = errors.New("no candidate in fleet")

// AllocationService reserves fleet units for lesson plans.
type AllocationService struct {
	db           txBeginner
	plans        allocationLessonPlans
	equipment    allocationEquipment
	reservations allocationReservations
	cache        *CacheService
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewAllocationService constructs an allocation service.
func NewAllocationService(db txBeginner, plans allocationLessonPlans, equipment allocationEquipment, reservations allocationReservations, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AllocationService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationService{
		db:           db,
		plans:        plans,
		equipment:    equipment,
		reservations: reservations,
		cache:        cache,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
	}
}

// RequestEquipment reserves one unit per requested id for the period. A requested item that is
// busy or out of service is replaced by the lowest-serial free unit of its fleet. Ids that cannot
// be served are reported as skipped; when every id is skipped the call fails with FLEET_EXHAUSTED.
func (s *AllocationService) RequestEquipment(ctx context.Context, principal models.Principal, lessonPlanID string, req dto.RequestEquipmentRequest) (*dto.AllocationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid equipment request payload")
	}
	period, err := models.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "start_date must not be after end_date")
	}

	plan, err := s.plans.FindByID(ctx, lessonPlanID)
	if err != nil {
		return nil, lookupError(err, "Lesson plan not found", "failed to load lesson plan")
	}

	notes := strings.TrimSpace(req.Notes)
	if notes == "" {
		notes = "Equipment for lesson: " + plan.Title
	}

	created := make([]models.Reservation, 0, len(req.EquipmentIDs))
	skipped := make([]dto.SkippedItem, 0)
	for _, equipmentID := range req.EquipmentIDs {
		start := time.Now()
		reservation, outcome, err := s.reserve(ctx, principal.UserID, equipmentID, period, notes)
		s.metrics.ObserveAllocation(outcome, time.Since(start))
		if err != nil {
			if !errors.Is(err, errNoCandidate) && !errors.Is(err, sql.ErrNoRows) && !database.IsReservationConflict(err) {
				return nil, internalError(err, "failed to create equipment request")
			}
			s.logger.Info("equipment request skipped",
				zap.String("lesson_plan_id", plan.ID),
				zap.String("equipment_id", equipmentID),
				zap.Error(err),
			)
			skipped = append(skipped, dto.SkippedItem{EquipmentID: equipmentID, Reason: dto.SkipReasonNoFleetItem})
			continue
		}
		s.logger.Info("equipment reserved",
			zap.String("lesson_plan_id", plan.ID),
			zap.String("requested_id", equipmentID),
			zap.String("equipment_id", reservation.EquipmentID),
			zap.String("outcome", outcome),
		)
		created = append(created, *reservation)
	}

	if len(created) == 0 {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrFleetExhausted, ""), dto.SkippedDetails{Skipped: skipped})
	}

	s.cache.Invalidate(ctx, cachePatternEquipment, cachePatternCurriculum)

	return &dto.AllocationResponse{
		Requests:   created,
		Skipped:    skipped,
		LessonPlan: *plan,
		Message:    fmt.Sprintf("%d requests created, %d items skipped", len(created), len(skipped)),
	}, nil
}

// reserve runs check-then-insert for one requested id inside a serializable transaction.
func (s *AllocationService) reserve(ctx context.Context, userID, equipmentID string, period models.DateRange, notes string) (*models.Reservation, string, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, AllocationSkipped, fmt.Errorf("begin allocation tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	item, outcome, err := s.selectUnit(ctx, tx, equipmentID, period)
	if err != nil {
		return nil, AllocationSkipped, err
	}

	reservation := &models.Reservation{
		UserID:      userID,
		EquipmentID: item.ID,
		StartDate:   period.Start,
		EndDate:     period.End,
		Status:      models.ReservationPending,
		Notes:       notes,
	}
	if err := s.reservations.Create(ctx, tx, reservation); err != nil {
		return nil, AllocationSkipped, err
	}
	if err := tx.Commit(); err != nil {
		return nil, AllocationSkipped, fmt.Errorf("commit allocation tx: %w", err)
	}
	reservation.Equipment = item
	return reservation, outcome, nil
}

func (s *AllocationService) selectUnit(ctx context.Context, tx *sqlx.Tx, equipmentID string, period models.DateRange) (*models.Equipment, string, error) {
	item, err := s.equipment.FindByIDForUpdate(ctx, tx, equipmentID)
	if err != nil {
		return nil, "", err
	}

	if item.Status == models.EquipmentAvailable {
		busy, err := s.reservations.HasActiveOverlap(ctx, tx, item.ID, period)
		if err != nil {
			return nil, "", err
		}
		if !busy {
			return item, AllocationReserved, nil
		}
	}

	replacement, err := s.equipment.NextAvailableInFleet(ctx, tx, item.FleetSerial, period, true)
	if err != nil {
		return nil, "", err
	}
	if replacement == nil {
		return nil, "", errNoCandidate
	}
	return replacement, AllocationFallback, nil
}
