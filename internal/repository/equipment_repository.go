package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/edu-fleet-api/internal/models"
)

const equipmentColumns = "e.id, e.serial_number, e.fleet_serial, e.name, e.type, e.status, e.location, e.notes, e.learning_impact_score, e.created_at, e.updated_at"

// EquipmentRepository handles persistence for equipment items and fleet aggregates.
type EquipmentRepository struct {
	db *sqlx.DB
}

// NewEquipmentRepository creates a new repository instance.
func NewEquipmentRepository(db *sqlx.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

func (r *EquipmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns equipment matching filters with the total count.
func (r *EquipmentRepository) List(ctx context.Context, filter models.EquipmentFilter) ([]models.Equipment, int, error) {
	base := "FROM equipment e WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("e.type = $%d", len(args)))
	}
	if filter.FleetSerial != "" {
		args = append(args, filter.FleetSerial)
		conditions = append(conditions, fmt.Sprintf("e.fleet_serial = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(e.name) LIKE $%d OR LOWER(e.serial_number) LIKE $%d)", len(args), len(args)))
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY e.serial_number LIMIT %d OFFSET %d", equipmentColumns, base, size, offset)
	var items []models.Equipment
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list equipment: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count equipment: %w", err)
	}
	return items, total, nil
}

// FindByID returns an item by id.
func (r *EquipmentRepository) FindByID(ctx context.Context, id string) (*models.Equipment, error) {
	var item models.Equipment
	if err := r.db.GetContext(ctx, &item, "SELECT "+equipmentColumns+" FROM equipment e WHERE e.id = $1", id); err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByIDForUpdate loads an item and locks its row for the surrounding transaction.
func (r *EquipmentRepository) FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Equipment, error) {
	var item models.Equipment
	query := "SELECT " + equipmentColumns + " FROM equipment e WHERE e.id = $1 FOR UPDATE"
	if err := sqlx.GetContext(ctx, r.exec(exec), &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// NextAvailableInFleet returns the lowest-serial available unit of a fleet that has
// no active reservation overlapping the period. With lock set, rows held by other
// transactions are skipped and the returned row stays locked.
func (r *EquipmentRepository) NextAvailableInFleet(ctx context.Context, exec sqlx.ExtContext, fleet string, period models.DateRange, lock bool) (*models.Equipment, error) {
	query := `
SELECT ` + equipmentColumns + `
FROM equipment e
WHERE e.fleet_serial = $1
  AND e.status = $2
  AND NOT EXISTS (
    SELECT 1 FROM requests r
    WHERE r.equipment_id = e.id
      AND r.status = ANY($3)
      AND r.start_date <= $5
      AND r.end_date >= $4
  )
ORDER BY e.serial_number
LIMIT 1`
	if lock {
		query += " FOR UPDATE OF e SKIP LOCKED"
	}

	var item models.Equipment
	err := sqlx.GetContext(ctx, r.exec(exec), &item, query,
		fleet, models.EquipmentAvailable, pq.Array(models.ActiveReservationStatuses), period.Start, period.End)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find next available in fleet %s: %w", fleet, err)
	}
	return &item, nil
}

// FindBySerialContaining returns the first item whose serial contains term, case-insensitively.
func (r *EquipmentRepository) FindBySerialContaining(ctx context.Context, term string) (*models.Equipment, error) {
	query := "SELECT " + equipmentColumns + " FROM equipment e WHERE e.serial_number ILIKE $1 ORDER BY e.serial_number LIMIT 1"
	var item models.Equipment
	if err := r.db.GetContext(ctx, &item, query, "%"+escapeLike(term)+"%"); err != nil {
		return nil, err
	}
	return &item, nil
}

// ExistsBySerial checks uniqueness of a serial number.
func (r *EquipmentRepository) ExistsBySerial(ctx context.Context, serial string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM equipment WHERE serial_number = $1"
	args := []interface{}{serial}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check serial number: %w", err)
	}
	return true, nil
}

// Create persists a new item.
func (r *EquipmentRepository) Create(ctx context.Context, item *models.Equipment) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Status == "" {
		item.Status = models.EquipmentAvailable
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	const query = `
INSERT INTO equipment (id, serial_number, fleet_serial, name, type, status, location, notes, learning_impact_score, created_at, updated_at)
VALUES (:id, :serial_number, :fleet_serial, :name, :type, :status, :location, :notes, :learning_impact_score, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create equipment: %w", err)
	}
	return nil
}

// Update modifies an item.
func (r *EquipmentRepository) Update(ctx context.Context, item *models.Equipment) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE equipment SET serial_number = :serial_number, fleet_serial = :fleet_serial, name = :name, type = :type,
       status = :status, location = :location, notes = :notes, learning_impact_score = :learning_impact_score,
       updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("update equipment: %w", err)
	}
	return nil
}

// UpdateStatus sets status and notes, returning the updated row.
func (r *EquipmentRepository) UpdateStatus(ctx context.Context, id string, status models.EquipmentStatus, notes *string) (*models.Equipment, error) {
	query := `
UPDATE equipment e SET status = $2, notes = COALESCE($3, e.notes), updated_at = $4
WHERE e.id = $1
RETURNING ` + equipmentColumns
	var item models.Equipment
	if err := r.db.GetContext(ctx, &item, query, id, status, notes, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &item, nil
}

// RetireFleet marks every unit of a fleet retired and reports how many rows changed.
func (r *EquipmentRepository) RetireFleet(ctx context.Context, fleet string) (int64, error) {
	const query = `UPDATE equipment SET status = $2, updated_at = $3 WHERE fleet_serial = $1 AND status <> $2`
	res, err := r.db.ExecContext(ctx, query, fleet, models.EquipmentRetired, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("retire fleet %s: %w", fleet, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("retire fleet %s: %w", fleet, err)
	}
	return affected, nil
}

// Delete removes an item.
func (r *EquipmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM equipment WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete equipment: %w", err)
	}
	return nil
}

// Groups aggregates equipment per fleet, name and type. Retired units are left out.
func (r *EquipmentRepository) Groups(ctx context.Context) ([]models.FleetGroup, error) {
	const query = `
SELECT fleet_serial AS base_serial, name, type,
       COUNT(*) AS total_count,
       COUNT(*) FILTER (WHERE status = 'available') AS available_count
FROM equipment
WHERE status <> 'retired'
GROUP BY fleet_serial, name, type
ORDER BY name, fleet_serial`
	var groups []models.FleetGroup
	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("group equipment fleets: %w", err)
	}
	return groups, nil
}

// TypeScores summarises owned equipment for the given types, best impact first.
func (r *EquipmentRepository) TypeScores(ctx context.Context, types []string) ([]models.TypeScore, error) {
	const query = `
SELECT type, COUNT(*) AS count, AVG(COALESCE(learning_impact_score, $2)) AS avg_score
FROM equipment
WHERE type = ANY($1)
GROUP BY type
ORDER BY avg_score DESC, type`
	var scores []models.TypeScore
	if err := r.db.SelectContext(ctx, &scores, query, pq.Array(types), models.DefaultImpactScore); err != nil {
		return nil, fmt.Errorf("equipment type scores: %w", err)
	}
	return scores, nil
}

// OtherTypeUsage ranks equipment types outside the given set by impact.
func (r *EquipmentRepository) OtherTypeUsage(ctx context.Context, exclude []string, limit int) ([]models.TypeUsage, error) {
	const query = `
SELECT type, AVG(COALESCE(learning_impact_score, $2)) AS avg_score, COUNT(*) AS usage_count
FROM equipment
WHERE type <> ALL($1)
GROUP BY type
ORDER BY avg_score DESC, type
LIMIT $3`
	var usage []models.TypeUsage
	if err := r.db.SelectContext(ctx, &usage, query, pq.Array(exclude), models.DefaultImpactScore, limit); err != nil {
		return nil, fmt.Errorf("equipment type usage: %w", err)
	}
	return usage, nil
}

func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}
