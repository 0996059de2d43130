package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-fleet-api/internal/models"
)

const subjectColumns = "id, name, code, description, grade_level, room, teacher_name, equipment_fleets, created_at, updated_at"

// SubjectRepository handles persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns every subject ordered by name.
func (r *SubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	query := "SELECT " + subjectColumns + " FROM subjects ORDER BY name"
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// ListWithLessonCounts returns subjects ordered by name with the number of lesson plans per subject.
func (r *SubjectRepository) ListWithLessonCounts(ctx context.Context) ([]models.SubjectWithLessons, error) {
	const query = `
SELECT s.id, s.name, s.code, s.description, s.grade_level, s.room, s.teacher_name, s.equipment_fleets,
       s.created_at, s.updated_at, COUNT(DISTINCT lp.id) AS lesson_count
FROM subjects s
LEFT JOIN lesson_plans lp ON lp.subject_id = s.id
GROUP BY s.id
ORDER BY s.name`
	var subjects []models.SubjectWithLessons
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects with lesson counts: %w", err)
	}
	return subjects, nil
}

// FindByID returns a subject by id.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	query := "SELECT " + subjectColumns + " FROM subjects WHERE id = $1"
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ExistsByCode checks uniqueness of subject code.
func (r *SubjectRepository) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM subjects WHERE UPPER(code) = UPPER($1)"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check subject code: %w", err)
	}
	return true, nil
}

// Create persists a new subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	if subject.EquipmentFleets == nil {
		subject.EquipmentFleets = []string{}
	}
	now := time.Now().UTC()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = now
	}
	subject.UpdatedAt = now

	const query = `
INSERT INTO subjects (id, name, code, description, grade_level, room, teacher_name, equipment_fleets, created_at, updated_at)
VALUES (:id, :name, :code, :description, :grade_level, :room, :teacher_name, :equipment_fleets, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update modifies a subject.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	if subject.EquipmentFleets == nil {
		subject.EquipmentFleets = []string{}
	}
	subject.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE subjects SET name = :name, code = :code, description = :description, grade_level = :grade_level,
       room = :room, teacher_name = :teacher_name, equipment_fleets = :equipment_fleets, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// Delete removes a subject record.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return nil
}

// CountLessonPlans returns the number of lesson plans referencing the subject.
func (r *SubjectRepository) CountLessonPlans(ctx context.Context, id string) (int, error) {
	const query = `SELECT COUNT(*) FROM lesson_plans WHERE subject_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count lesson plans: %w", err)
	}
	return count, nil
}
