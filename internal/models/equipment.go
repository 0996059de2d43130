package models

import (
	"regexp"
	"time"
)

// EquipmentStatus enumerates lifecycle states of an item.
type EquipmentStatus string

const (
	EquipmentAvailable   EquipmentStatus = "available"
	EquipmentCheckedOut  EquipmentStatus = "checked_out"
	EquipmentUnderRepair EquipmentStatus = "under_repair"
	EquipmentRetired     EquipmentStatus = "retired"
)

// Valid reports whether the status is known.
func (s EquipmentStatus) Valid() bool {
	switch s {
	case EquipmentAvailable, EquipmentCheckedOut, EquipmentUnderRepair, EquipmentRetired:
		return true
	}
	return false
}

// DefaultImpactScore substitutes a missing learning impact score in aggregates.
const DefaultImpactScore = 4.2

// Equipment is a physical item. Items sharing FleetSerial are interchangeable.
type Equipment struct {
	ID                  string          `db:"id" json:"id"`
	SerialNumber        string          `db:"serial_number" json:"serial_number"`
	FleetSerial         string          `db:"fleet_serial" json:"fleet_serial"`
	Name                string          `db:"name" json:"name"`
	Type                string          `db:"type" json:"type"`
	Status              EquipmentStatus `db:"status" json:"status"`
	Location            string          `db:"location" json:"location"`
	Notes               string          `db:"notes" json:"notes"`
	LearningImpactScore *float64        `db:"learning_impact_score" json:"learning_impact_score"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at" json:"updated_at"`
}

var fleetSuffix = regexp.MustCompile(`[0-9]{3}$`)

// BaseSerial strips a trailing three digit unit number from a serial.
// Serials without such a suffix are their own fleet.
func BaseSerial(serial string) string {
	return fleetSuffix.ReplaceAllString(serial, "")
}

// EquipmentFilter captures supported filters for listing equipment.
type EquipmentFilter struct {
	Status      EquipmentStatus
	Type        string
	FleetSerial string
	Search      string
	Page        int
	PageSize    int
}

// FleetGroup aggregates the units of one fleet.
type FleetGroup struct {
	BaseSerial     string `db:"base_serial" json:"base_serial"`
	Name           string `db:"name" json:"name"`
	Type           string `db:"type" json:"type"`
	TotalCount     int    `db:"total_count" json:"total_count"`
	AvailableCount int    `db:"available_count" json:"available_count"`
}
