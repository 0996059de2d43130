package models

import (
	"time"

	"github.com/lib/pq"
)

// LessonPlan is a teacher-owned lesson record.
type LessonPlan struct {
	ID                 string         `db:"id" json:"id"`
	TeacherID          string         `db:"teacher_id" json:"teacher_id"`
	SubjectID          string         `db:"subject_id" json:"subject_id"`
	Title              string         `db:"title" json:"title"`
	Description        string         `db:"description" json:"description"`
	LearningObjectives pq.StringArray `db:"learning_objectives" json:"learning_objectives"`
	RequiredEquipment  pq.StringArray `db:"required_equipment" json:"required_equipment"`
	LessonDate         Date           `db:"lesson_date" json:"lesson_date"`
	StartDate          *Date          `db:"start_date" json:"start_date,omitempty"`
	EndDate            *Date          `db:"end_date" json:"end_date,omitempty"`
	DurationMinutes    int            `db:"duration_minutes" json:"duration_minutes"`
	GradeLevel         string         `db:"grade_level" json:"grade_level"`
	SubjectName        *string        `db:"subject_name" json:"subject_name,omitempty"`
	SubjectCode        *string        `db:"subject_code" json:"subject_code,omitempty"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// LessonPlanFilter scopes lesson plan listings.
type LessonPlanFilter struct {
	TeacherID string
	SubjectID string
	Limit     int
}

// TeacherStats summarises a teacher's lesson plans.
type TeacherStats struct {
	TotalPlans     int          `db:"total_plans" json:"total_plans"`
	UpcomingPlans  int          `db:"upcoming_plans" json:"upcoming_plans"`
	CompletedPlans int          `db:"completed_plans" json:"completed_plans"`
	SubjectsTaught int          `db:"subjects_taught" json:"subjects_taught"`
	RecentPlans    []LessonPlan `db:"-" json:"recent_plans"`
}
