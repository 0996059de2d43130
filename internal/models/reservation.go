package models

import "time"

// ReservationStatus tracks the approval lifecycle of an equipment request.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationApproved  ReservationStatus = "approved"
	ReservationRejected  ReservationStatus = "rejected"
	ReservationReturned  ReservationStatus = "returned"
	ReservationCancelled ReservationStatus = "cancelled"
)

// ActiveReservationStatuses hold their equipment for the reserved period.
var ActiveReservationStatuses = []string{string(ReservationPending), string(ReservationApproved)}

// Valid reports whether the status is known.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationApproved, ReservationRejected, ReservationReturned, ReservationCancelled:
		return true
	}
	return false
}

// Active reports whether the reservation blocks its equipment.
func (s ReservationStatus) Active() bool {
	return s == ReservationPending || s == ReservationApproved
}

// Reservation is a row of the requests ledger.
type Reservation struct {
	ID          string            `db:"id" json:"id"`
	UserID      string            `db:"user_id" json:"user_id"`
	EquipmentID string            `db:"equipment_id" json:"equipment_id"`
	StartDate   Date              `db:"start_date" json:"start_date"`
	EndDate     Date              `db:"end_date" json:"end_date"`
	Status      ReservationStatus `db:"status" json:"status"`
	Notes       string            `db:"notes" json:"notes"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
	Equipment   *Equipment        `db:"-" json:"equipment,omitempty"`
}

// Period returns the reserved inclusive date range.
func (r Reservation) Period() DateRange {
	return DateRange{Start: r.StartDate, End: r.EndDate}
}

// ReservationFilter scopes reservation listings.
type ReservationFilter struct {
	UserID   string
	Statuses []string
	Page     int
	PageSize int
}

// ReservationView joins a reservation with its equipment for listings.
type ReservationView struct {
	Reservation
	SerialNumber  string `db:"serial_number" json:"serial_number"`
	EquipmentName string `db:"equipment_name" json:"equipment_name"`
	EquipmentType string `db:"equipment_type" json:"equipment_type"`
	Location      string `db:"location" json:"location"`
}
