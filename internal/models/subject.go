package models

import (
	"time"

	"github.com/lib/pq"
)

// Subject represents a taught subject and the equipment fleets it draws on.
type Subject struct {
	ID              string         `db:"id" json:"id"`
	Name            string         `db:"name" json:"name"`
	Code            string         `db:"code" json:"code"`
	Description     string         `db:"description" json:"description"`
	GradeLevel      string         `db:"grade_level" json:"grade_level"`
	Room            string         `db:"room" json:"room"`
	TeacherName     string         `db:"teacher_name" json:"teacher_name"`
	EquipmentFleets pq.StringArray `db:"equipment_fleets" json:"equipment_fleets"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// HasFleet reports whether the subject lists the given fleet.
func (s Subject) HasFleet(fleet string) bool {
	for _, f := range s.EquipmentFleets {
		if f == fleet {
			return true
		}
	}
	return false
}

// SubjectWithLessons decorates a subject with its lesson plan count.
type SubjectWithLessons struct {
	Subject
	LessonCount int `db:"lesson_count" json:"lesson_count"`
}
