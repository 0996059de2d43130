package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-fleet-api/internal/models"
	"github.com/noah-isme/edu-fleet-api/pkg/database"
	appErrors "github.com/noah-isme/edu-fleet-api/pkg/errors"
	"github.com/noah-isme/edu-fleet-api/pkg/validation"
)

type subjectRepository interface {
	List(ctx context.Context) ([]models.Subject, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error
	CountLessonPlans(ctx context.Context, id string) (int, error)
}

// SubjectRequest captures the writable subject fields for create and update.
type SubjectRequest struct {
	Name            string   `json:"name" validate:"required,max=255"`
	Code            string   `json:"code" validate:"required,max=32"`
	Description     string   `json:"description"`
	GradeLevel      string   `json:"grade_level" validate:"max=32"`
	Room            string   `json:"room" validate:"max=64"`
	TeacherName     string   `json:"teacher_name" validate:"max=255"`
	EquipmentFleets []string `json:"equipment_fleets" validate:"dive,required,serial"`
}

// SubjectService handles subject domain workflows.
type SubjectService struct {
	repo      subjectRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates a new subject service.
func NewSubjectService(repo subjectRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns all subjects ordered by name.
func (s *SubjectService) List(ctx context.Context) ([]models.Subject, error) {
	subjects, err := s.repo.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list subjects")
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}
	return subjects, nil
}

// Get returns subject by identifier.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Subject not found", "failed to load subject")
	}
	return subject, nil
}

// Create adds a new subject ensuring code uniqueness.
func (s *SubjectService) Create(ctx context.Context, req SubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject payload")
	}
	code := normaliseSubjectCode(req.Code)

	exists, err := s.repo.ExistsByCode(ctx, code, "")
	if err != nil {
		return nil, internalError(err, "failed to check subject code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrSubjectCode, "")
	}

	subject := &models.Subject{}
	applySubjectRequest(subject, req, code)
	if err := s.repo.Create(ctx, subject); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrSubjectCode, "")
		}
		return nil, internalError(err, "failed to create subject")
	}

	s.cache.Invalidate(ctx, cachePatternCurriculum)
	s.logger.Info("subject created", zap.String("subject_id", subject.ID), zap.String("code", subject.Code))
	return subject, nil
}

// Update replaces the writable fields of an existing subject.
func (s *SubjectService) Update(ctx context.Context, id string, req SubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject payload")
	}

	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Subject not found", "failed to load subject")
	}

	code := normaliseSubjectCode(req.Code)
	exists, err := s.repo.ExistsByCode(ctx, code, id)
	if err != nil {
		return nil, internalError(err, "failed to check subject code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrSubjectCode, "")
	}

	applySubjectRequest(subject, req, code)
	if err := s.repo.Update(ctx, subject); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrSubjectCode, "")
		}
		return nil, internalError(err, "failed to update subject")
	}

	s.cache.Invalidate(ctx, cachePatternCurriculum)
	return subject, nil
}

// Delete removes a subject when no lesson plans reference it.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "Subject not found", "failed to load subject")
	}

	count, err := s.repo.CountLessonPlans(ctx, subject.ID)
	if err != nil {
		return internalError(err, "failed to check subject dependencies")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrSubjectInUse, "")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if database.IsForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrSubjectInUse, "")
		}
		return internalError(err, "failed to delete subject")
	}

	s.cache.Invalidate(ctx, cachePatternCurriculum)
	return nil
}

func normaliseSubjectCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func applySubjectRequest(subject *models.Subject, req SubjectRequest, code string) {
	subject.Name = strings.TrimSpace(req.Name)
	subject.Code = code
	subject.Description = req.Description
	subject.GradeLevel = req.GradeLevel
	subject.Room = req.Room
	subject.TeacherName = req.TeacherName
	fleets := make([]string, 0, len(req.EquipmentFleets))
	for _, fleet := range req.EquipmentFleets {
		fleets = append(fleets, strings.TrimSpace(fleet))
	}
	subject.EquipmentFleets = fleets
}
