package dto

import "github.com/noah-isme/edu-fleet-api/internal/models"

// BulkLessonPlanResponse reports plans created by a bulk request.
type BulkLessonPlanResponse struct {
	Message string              `json:"message"`
	Plans   []models.LessonPlan `json:"plans"`
}

// BulkFailure is attached to the error of a bulk request that stopped early.
type BulkFailure struct {
	FailedIndex int                 `json:"failed_index"`
	Created     []models.LessonPlan `json:"created"`
}
