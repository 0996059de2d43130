package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-fleet-api/internal/models"
)

const lessonPlanSelect = `
SELECT lp.id, lp.teacher_id, lp.subject_id, lp.title, lp.description, lp.learning_objectives,
       lp.required_equipment, lp.lesson_date, lp.start_date, lp.end_date, lp.duration_minutes,
       lp.grade_level, lp.created_at, lp.updated_at, s.name AS subject_name, s.code AS subject_code
FROM lesson_plans lp
LEFT JOIN subjects s ON s.id = lp.subject_id`

// LessonPlanRepository handles persistence for lesson plans.
type LessonPlanRepository struct {
	db *sqlx.DB
}

// NewLessonPlanRepository creates a new repository instance.
func NewLessonPlanRepository(db *sqlx.DB) *LessonPlanRepository {
	return &LessonPlanRepository{db: db}
}

// List returns a teacher's lesson plans, newest lesson date first.
func (r *LessonPlanRepository) List(ctx context.Context, filter models.LessonPlanFilter) ([]models.LessonPlan, error) {
	query := lessonPlanSelect + " WHERE lp.teacher_id = $1"
	args := []interface{}{filter.TeacherID}
	if filter.SubjectID != "" {
		args = append(args, filter.SubjectID)
		query += fmt.Sprintf(" AND lp.subject_id = $%d", len(args))
	}
	query += " ORDER BY lp.lesson_date DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var plans []models.LessonPlan
	if err := r.db.SelectContext(ctx, &plans, query, args...); err != nil {
		return nil, fmt.Errorf("list lesson plans: %w", err)
	}
	return plans, nil
}

// FindByID returns a lesson plan with its subject name and code.
func (r *LessonPlanRepository) FindByID(ctx context.Context, id string) (*models.LessonPlan, error) {
	var plan models.LessonPlan
	if err := r.db.GetContext(ctx, &plan, lessonPlanSelect+" WHERE lp.id = $1", id); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Create persists a new lesson plan.
func (r *LessonPlanRepository) Create(ctx context.Context, plan *models.LessonPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	normaliseLessonArrays(plan)
	now := time.Now().UTC()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = now

	const query = `
INSERT INTO lesson_plans (id, teacher_id, subject_id, title, description, learning_objectives, required_equipment,
                          lesson_date, start_date, end_date, duration_minutes, grade_level, created_at, updated_at)
VALUES (:id, :teacher_id, :subject_id, :title, :description, :learning_objectives, :required_equipment,
        :lesson_date, :start_date, :end_date, :duration_minutes, :grade_level, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("create lesson plan: %w", err)
	}
	return nil
}

// Update modifies a lesson plan.
func (r *LessonPlanRepository) Update(ctx context.Context, plan *models.LessonPlan) error {
	normaliseLessonArrays(plan)
	plan.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE lesson_plans SET subject_id = :subject_id, title = :title, description = :description,
       learning_objectives = :learning_objectives, required_equipment = :required_equipment,
       lesson_date = :lesson_date, start_date = :start_date, end_date = :end_date,
       duration_minutes = :duration_minutes, grade_level = :grade_level, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("update lesson plan: %w", err)
	}
	return nil
}

// Delete removes a lesson plan.
func (r *LessonPlanRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM lesson_plans WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete lesson plan: %w", err)
	}
	return nil
}

// Stats counts a teacher's plans relative to today.
func (r *LessonPlanRepository) Stats(ctx context.Context, teacherID string) (*models.TeacherStats, error) {
	const query = `
SELECT COUNT(*) AS total_plans,
       COUNT(*) FILTER (WHERE lesson_date >= CURRENT_DATE) AS upcoming_plans,
       COUNT(*) FILTER (WHERE lesson_date < CURRENT_DATE) AS completed_plans,
       COUNT(DISTINCT subject_id) AS subjects_taught
FROM lesson_plans
WHERE teacher_id = $1`
	var stats models.TeacherStats
	if err := r.db.GetContext(ctx, &stats, query, teacherID); err != nil {
		return nil, fmt.Errorf("lesson plan stats: %w", err)
	}
	return &stats, nil
}

func normaliseLessonArrays(plan *models.LessonPlan) {
	if plan.LearningObjectives == nil {
		plan.LearningObjectives = []string{}
	}
	if plan.RequiredEquipment == nil {
		plan.RequiredEquipment = []string{}
	}
}
