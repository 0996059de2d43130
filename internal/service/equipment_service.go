package service

import (
	"context"
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

type equipmentRepository interface {
	List(ctx context.Context, filter models.EquipmentFilter) ([]models.Equipment, int, error)
	FindByID(ctx context.Context, id string) (*models.Equipment, error)
	FindBySerialContaining(ctx context.Context, term string) (*models.Equipment, error)
	ExistsBySerial(ctx context.Context, serial string, excludeID string) (bool, error)
	Create(ctx context.Context, item *models.Equipment) error
	Update(ctx context.Context, item *models.Equipment) error
	UpdateStatus(ctx context.Context, id string, status models.EquipmentStatus, notes *string) (*models.Equipment, error)
	RetireFleet(ctx context.Context, fleet string) (int64, error)
	Delete(ctx context.Context, id string) error
	Groups(ctx context.Context) ([]models.FleetGroup, error)
}

type fleetQuerier interface {
	NextAvailableInFleet(ctx context.Context, exec sqlx.ExtContext, fleet string, period models.DateRange, lock bool) (*models.Equipment, error)
}

// EquipmentRequest captures the writable equipment fields.
type EquipmentRequest struct {
	SerialNumber        string   `json:"serial_number" validate:"required,max=64,serial"`
	FleetSerial         string   `json:"fleet_serial" validate:"omitempty,max=64,serial"`
	Name                string   `json:"name" validate:"required,max=255"`
	Type                string   `json:"type" validate:"required,max=64"`
	Status              string   `json:"status" validate:"omitempty,oneof=available checked_out under_repair retired"`
	Location            string   `json:"location" validate:"max=255"`
	Notes               string   `json:"notes" validate:"max=1000"`
	LearningImpactScore *float64 `json:"learning_impact_score" validate:"omitempty,gte=0,lte=5"`
}

// StatusRequest changes an item's status.
type StatusRequest struct {
	Status string  `json:"status" validate:"required,oneof=available checked_out under_repair retired"`
	Notes  *string `json:"notes" validate:"omitempty,max=1000"`
}

// EquipmentConfig tunes inventory reporting.
type EquipmentConfig struct {
	LowStockThreshold int
	GroupsTTL         time.Duration
}

// EquipmentService manages the inventory and fleet aggregates.
type EquipmentService struct {
	repo      equipmentRepository
	fleets    fleetQuerier
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	config    EquipmentConfig
}

// NewEquipmentService constructs an equipment service.
func NewEquipmentService(repo equipmentRepository, fleets fleetQuerier, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cfg EquipmentConfig) *EquipmentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = 2
	}
	return &EquipmentService{repo: repo, fleets: fleets, cache: cache, validator: validate, logger: logger, config: cfg}
}

// List returns paginated equipment.
func (s *EquipmentService) List(ctx context.Context, filter models.EquipmentFilter) ([]models.Equipment, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown equipment status")
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list equipment")
	}
	if items == nil {
		items = []models.Equipment{}
	}
	return items, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns an item by id.
func (s *EquipmentService) Get(ctx context.Context, id string) (*models.Equipment, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Equipment not found", "failed to load equipment")
	}
	return item, nil
}

// Search returns the first item whose serial contains term.
func (s *EquipmentService) Search(ctx context.Context, term string) (*models.Equipment, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "serial search term is required")
	}
	item, err := s.repo.FindBySerialContaining(ctx, term)
	if err != nil {
		return nil, lookupError(err, "No equipment found with that serial number", "failed to search equipment")
	}
	return item, nil
}

// Create adds an item. Its fleet is the supplied fleet serial or the base of its serial.
func (s *EquipmentService) Create(ctx context.Context, req EquipmentRequest) (*models.Equipment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid equipment payload")
	}
	serial := strings.TrimSpace(req.SerialNumber)
	if err := s.ensureSerialFree(ctx, serial, ""); err != nil {
		return nil, err
	}

	item := &models.Equipment{Status: models.EquipmentAvailable}
	applyEquipmentRequest(item, req)
	if err := s.repo.Create(ctx, item); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrSerialExists, "")
		}
		return nil, internalError(err, "failed to create equipment")
	}
	s.invalidate(ctx)
	return item, nil
}

// Update replaces the writable fields of an item.
func (s *EquipmentService) Update(ctx context.Context, id string, req EquipmentRequest) (*models.Equipment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid equipment payload")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Equipment not found", "failed to load equipment")
	}
	if err := s.ensureSerialFree(ctx, strings.TrimSpace(req.SerialNumber), id); err != nil {
		return nil, err
	}

	applyEquipmentRequest(item, req)
	if err := s.repo.Update(ctx, item); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrSerialExists, "")
		}
		return nil, internalError(err, "failed to update equipment")
	}
	s.invalidate(ctx)
	return item, nil
}

// Delete removes an item that no reservation references.
func (s *EquipmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupError(err, "Equipment not found", "failed to load equipment")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if database.IsForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrValidation, "Cannot delete equipment with reservations. Retire it instead.")
		}
		return internalError(err, "failed to delete equipment")
	}
	s.invalidate(ctx)
	return nil
}

// UpdateStatus sets an item's status.
func (s *EquipmentService) UpdateStatus(ctx context.Context, id string, req StatusRequest) (*models.Equipment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid status payload")
	}
	return s.setStatus(ctx, id, models.EquipmentStatus(req.Status), req.Notes)
}

// StartRepair marks an item under repair. Retired items cannot be repaired.
func (s *EquipmentService) StartRepair(ctx context.Context, req dto.RepairRequest) (*models.Equipment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid repair payload")
	}
	item, err := s.repo.FindByID(ctx, req.EquipmentID)
	if err != nil {
		return nil, lookupError(err, "Equipment not found", "failed to load equipment")
	}
	if item.Status == models.EquipmentRetired {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Retired equipment cannot be sent for repair")
	}
	return s.setStatus(ctx, item.ID, models.EquipmentUnderRepair, optionalNotes(req.Notes))
}

// CompleteRepair returns an item under repair to service.
func (s *EquipmentService) CompleteRepair(ctx context.Context, req dto.RepairRequest) (*models.Equipment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid repair payload")
	}
	item, err := s.repo.FindByID(ctx, req.EquipmentID)
	if err != nil {
		return nil, lookupError(err, "Equipment not found", "failed to load equipment")
	}
	if item.Status != models.EquipmentUnderRepair {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Equipment is not under repair")
	}
	return s.setStatus(ctx, item.ID, models.EquipmentAvailable, optionalNotes(req.Notes))
}

// RetireFleet retires every unit of a fleet.
func (s *EquipmentService) RetireFleet(ctx context.Context, req dto.RetireFleetRequest) (*dto.RetireFleetResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid retire payload")
	}
	retired, err := s.repo.RetireFleet(ctx, req.BaseSerial)
	if err != nil {
		return nil, internalError(err, "failed to retire fleet")
	}
	if retired == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "No active units found for this fleet")
	}
	s.invalidate(ctx)
	s.logger.Info("fleet retired", zap.String("fleet", req.BaseSerial), zap.Int64("units", retired))
	return &dto.RetireFleetResponse{
		BaseSerial: req.BaseSerial,
		Retired:    retired,
		Message:    "Fleet retired successfully",
	}, nil
}

// Groups aggregates the inventory per fleet. The bool reports a cache hit.
func (s *EquipmentService) Groups(ctx context.Context) ([]models.FleetGroup, bool, error) {
	groups, hit, err := remember(ctx, s.cache, cacheKeyFleetGroups, s.config.GroupsTTL, func(ctx context.Context) ([]models.FleetGroup, error) {
		groups, err := s.repo.Groups(ctx)
		if err != nil {
			return nil, err
		}
		if groups == nil {
			groups = []models.FleetGroup{}
		}
		return groups, nil
	})
	if err != nil {
		return nil, false, internalError(err, "failed to load equipment groups")
	}
	return groups, hit, nil
}

// LowStock lists fleets whose available count is under the configured threshold.
func (s *EquipmentService) LowStock(ctx context.Context) (*dto.LowStockResponse, error) {
	groups, _, err := s.Groups(ctx)
	if err != nil {
		return nil, err
	}
	low := make([]models.FleetGroup, 0)
	for _, group := range groups {
		if group.AvailableCount < s.config.LowStockThreshold {
			low = append(low, group)
		}
	}
	return &dto.LowStockResponse{Threshold: s.config.LowStockThreshold, Fleets: low}, nil
}

// NextAvailable returns the lowest-serial free unit of a fleet for the period without reserving it.
func (s *EquipmentService) NextAvailable(ctx context.Context, fleet, startDate, endDate string) (*models.Equipment, error) {
	fleet = strings.TrimSpace(fleet)
	if fleet == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fleet serial is required")
	}
	period, err := models.ParseDateRange(startDate, endDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "start_date and end_date must be YYYY-MM-DD with start_date <= end_date")
	}
	item, err := s.fleets.NextAvailableInFleet(ctx, nil, fleet, period, false)
	if err != nil {
		return nil, internalError(err, "failed to get next available equipment")
	}
	if item == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "No available items")
	}
	return item, nil
}

func (s *EquipmentService) setStatus(ctx context.Context, id string, status models.EquipmentStatus, notes *string) (*models.Equipment, error) {
	item, err := s.repo.UpdateStatus(ctx, id, status, notes)
	if err != nil {
		return nil, lookupError(err, "Equipment not found", "failed to update equipment status")
	}
	s.invalidate(ctx)
	return item, nil
}

func (s *EquipmentService) ensureSerialFree(ctx context.Context, serial, excludeID string) error {
	exists, err := s.repo.ExistsBySerial(ctx, serial, excludeID)
	if err != nil {
		return internalError(err, "failed to check serial number")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrSerialExists, "")
	}
	return nil
}

func (s *EquipmentService) invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, cachePatternEquipment, cachePatternCurriculum)
}

// fleetFor returns the stored fleet for a serial: the explicit value when given, else its base serial.
func fleetFor(serial, explicit string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	if base := models.BaseSerial(serial); base != "" {
		return base
	}
	return serial
}

// applyEquipmentRequest copies req onto item. Without a fleet_serial in req, a fleet
// assigned explicitly earlier is kept and a derived one follows the new serial.
func applyEquipmentRequest(item *models.Equipment, req EquipmentRequest) {
	assigned := item.FleetSerial != "" && item.FleetSerial != fleetFor(item.SerialNumber, "")
	item.SerialNumber = strings.TrimSpace(req.SerialNumber)
	if strings.TrimSpace(req.FleetSerial) != "" || !assigned {
		item.FleetSerial = fleetFor(item.SerialNumber, req.FleetSerial)
	}
	item.Name = strings.TrimSpace(req.Name)
	item.Type = strings.ToLower(strings.TrimSpace(req.Type))
	if req.Status != "" {
		item.Status = models.EquipmentStatus(req.Status)
	}
	item.Location = req.Location
	item.Notes = req.Notes
	item.LearningImpactScore = req.LearningImpactScore
}

func optionalNotes(notes string) *string {
	if strings.TrimSpace(notes) == "" {
		return nil
	}
	return &notes
}
