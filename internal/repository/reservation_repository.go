package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/edu-fleet-api/internal/models"
)

const reservationColumns = "r.id, r.user_id, r.equipment_id, r.start_date, r.end_date, r.status, r.notes, r.created_at, r.updated_at"

const reservationViewSelect = `
SELECT ` + reservationColumns + `, e.serial_number, e.name AS equipment_name, e.type AS equipment_type, e.location
FROM requests r
JOIN equipment e ON e.id = r.equipment_id`

// ReservationRepository persists rows of the requests ledger.
type ReservationRepository struct {
	db *sqlx.DB
}

// NewReservationRepository creates a new repository instance.
func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// HasActiveOverlap reports whether the item has a pending or approved reservation overlapping the period.
func (r *ReservationRepository) HasActiveOverlap(ctx context.Context, exec sqlx.ExtContext, equipmentID string, period models.DateRange) (bool, error) {
	const query = `
SELECT EXISTS (
  SELECT 1 FROM requests
  WHERE equipment_id = $1
    AND status = ANY($2)
    AND start_date <= $4
    AND end_date >= $3
)`
	var exists bool
	err := sqlx.GetContext(ctx, r.exec(exec), &exists, query,
		equipmentID, pq.Array(models.ActiveReservationStatuses), period.Start, period.End)
	if err != nil {
		return false, fmt.Errorf("check reservation overlap: %w", err)
	}
	return exists, nil
}

// Create inserts a reservation.
func (r *ReservationRepository) Create(ctx context.Context, exec sqlx.ExtContext, reservation *models.Reservation) error {
	if reservation.ID == "" {
		reservation.ID = uuid.NewString()
	}
	if reservation.Status == "" {
		reservation.Status = models.ReservationPending
	}
	now := time.Now().UTC()
	if reservation.CreatedAt.IsZero() {
		reservation.CreatedAt = now
	}
	reservation.UpdatedAt = now

	const query = `
INSERT INTO requests (id, user_id, equipment_id, start_date, end_date, status, notes, created_at, updated_at)
VALUES (:id, :user_id, :equipment_id, :start_date, :end_date, :status, :notes, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, reservation); err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// List returns reservations joined with equipment, newest first.
func (r *ReservationRepository) List(ctx context.Context, filter models.ReservationFilter) ([]models.ReservationView, int, error) {
	where := " WHERE 1=1"
	var args []interface{}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where += fmt.Sprintf(" AND r.user_id = $%d", len(args))
	}
	if len(filter.Statuses) > 0 {
		args = append(args, pq.Array(filter.Statuses))
		where += fmt.Sprintf(" AND r.status = ANY($%d)", len(args))
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

	query := fmt.Sprintf("%s%s ORDER BY r.start_date DESC, r.created_at DESC LIMIT %d OFFSET %d", reservationViewSelect, where, size, offset)
	var views []models.ReservationView
	if err := r.db.SelectContext(ctx, &views, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reservations: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM requests r"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count reservations: %w", err)
	}
	return views, total, nil
}

// ListActiveForUser returns a user's pending and approved reservations ordered by start date.
func (r *ReservationRepository) ListActiveForUser(ctx context.Context, userID string) ([]models.ReservationView, error) {
	query := reservationViewSelect + " WHERE r.user_id = $1 AND r.status = ANY($2) ORDER BY r.start_date"
	var views []models.ReservationView
	if err := r.db.SelectContext(ctx, &views, query, userID, pq.Array(models.ActiveReservationStatuses)); err != nil {
		return nil, fmt.Errorf("list active reservations: %w", err)
	}
	return views, nil
}

// UpdateStatus changes a reservation's status and returns the updated row.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id string, status models.ReservationStatus) (*models.Reservation, error) {
	query := `UPDATE requests r SET status = $2, updated_at = $3 WHERE r.id = $1 RETURNING ` + reservationColumns
	var reservation models.Reservation
	if err := r.db.GetContext(ctx, &reservation, query, id, status, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &reservation, nil
}
