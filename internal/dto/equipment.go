package dto

import "github.com/noah-isme/edu-fleet-api/internal/models"

// RepairRequest moves an item into or out of repair.
type RepairRequest struct {
	EquipmentID string `json:"equipment_id" validate:"required"`
	Notes       string `json:"notes" validate:"max=1000"`
}

// RetireFleetRequest retires every unit of a fleet.
type RetireFleetRequest struct {
	BaseSerial string `json:"base_serial" validate:"required,serial"`
}

// RetireFleetResponse reports how many units were retired.
type RetireFleetResponse struct {
	BaseSerial string `json:"base_serial"`
	Retired    int64  `json:"retired"`
	Message    string `json:"message"`
}

// LowStockResponse lists fleets under the availability threshold.
type LowStockResponse struct {
	Threshold int                 `json:"threshold"`
	Fleets    []models.FleetGroup `json:"fleets"`
}
