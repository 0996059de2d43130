package models

import "time"

// CurriculumSubject is a subject with the fleets it maps to.
type CurriculumSubject struct {
	SubjectWithLessons
	FleetCount     int          `json:"fleet_count"`
	TotalEquipment int          `json:"total_equipment"`
	Fleets         []FleetGroup `json:"fleets"`
}

// CurriculumSummary holds headline counts for the curriculum view.
type CurriculumSummary struct {
	TotalSubjects        int `json:"total_subjects"`
	SubjectsWithFleets   int `json:"subjects_with_fleets"`
	SubjectsWithLessons  int `json:"subjects_with_lessons"`
	TotalEquipmentMapped int `json:"total_equipment_mapped"`
}

// CurriculumView maps subjects against the equipment inventory.
type CurriculumView struct {
	Subjects    []CurriculumSubject `json:"subjects"`
	Summary     CurriculumSummary   `json:"summary"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// TypeScore summarises owned equipment of one type.
type TypeScore struct {
	Type     string  `db:"type" json:"type"`
	Count    int     `db:"count" json:"count"`
	AvgScore float64 `db:"avg_score" json:"avg_score"`
}

// TypeUsage summarises equipment of a type outside a subject's mapping.
type TypeUsage struct {
	Type       string  `db:"type" json:"type"`
	AvgScore   float64 `db:"avg_score" json:"avg_score"`
	UsageCount int     `db:"usage_count" json:"usage_count"`
}

// GapItem names equipment the school does not own yet.
type GapItem struct {
	Type         string  `json:"type"`
	AvgImpact    float64 `json:"avg_impact"`
	SubjectCount int     `json:"subject_count"`
	IsGap        bool    `json:"is_gap"`
}

// Recommendations is the equipment advice for one subject code.
type Recommendations struct {
	SubjectCode          string      `json:"subject_code"`
	CurrentEquipment     []TypeScore `json:"current_equipment"`
	RecommendedAdditions []TypeUsage `json:"recommended_additions"`
	GapAnalysis          []GapItem   `json:"gap_analysis"`
	GapAnalysisSample    bool        `json:"gap_analysis_is_sample"`
}
