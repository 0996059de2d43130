package dto

import "github.com/noah-isme/edu-fleet-api/internal/models"

// SkipReasonNoFleetItem is reported when neither the item nor its fleet can serve the period.
const SkipReasonNoFleetItem = "No available items in fleet for this period"

// RequestEquipmentRequest asks for equipment for a lesson plan's period.
type RequestEquipmentRequest struct {
	EquipmentIDs []string `json:"equipment_ids" validate:"required,min=1,dive,required"`
	StartDate    string   `json:"start_date" validate:"required,isodate"`
	EndDate      string   `json:"end_date" validate:"required,isodate"`
	Notes        string   `json:"notes" validate:"max=1000"`
}

// SkippedItem names a requested id that could not be reserved.
type SkippedItem struct {
	EquipmentID string `json:"equipment_id"`
	Reason      string `json:"reason"`
}

// SkippedDetails is the error detail payload when every requested id was skipped.
type SkippedDetails struct {
	Skipped []SkippedItem `json:"skipped"`
}

// AllocationResponse reports reservations created by a fleet-cycling request.
type AllocationResponse struct {
	Requests   []models.Reservation `json:"requests"`
	Skipped    []SkippedItem        `json:"skipped"`
	LessonPlan models.LessonPlan    `json:"lesson_plan"`
	Message    string               `json:"message"`
}
