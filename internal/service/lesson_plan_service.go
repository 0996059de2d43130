package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-fleet-api/internal/dto"
	"github.com/noah-isme/edu-fleet-api/internal/models"
	"github.com/noah-isme/edu-fleet-api/pkg/database"
	appErrors "github.com/noah-isme/edu-fleet-api/pkg/errors"
	"github.com/noah-isme/edu-fleet-api/pkg/validation"
)

const (
	recentPlansLimit      = 5
	lessonPlanNotFoundMsg = "Lesson plan not found or not authorized"
)

type lessonPlanRepository interface {
	List(ctx context.Context, filter models.LessonPlanFilter) ([]models.LessonPlan, error)
	FindByID(ctx context.Context, id string) (*models.LessonPlan, error)
	Create(ctx context.Context, plan *models.LessonPlan) error
	Update(ctx context.Context, plan *models.LessonPlan) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, teacherID string) (*models.TeacherStats, error)
}

// LessonPlanRequest captures the writable lesson plan fields.
type LessonPlanRequest struct {
	SubjectID          string   `json:"subject_id" validate:"required"`
	Title              string   `json:"title" validate:"required,max=255"`
	Description        string   `json:"description"`
	LearningObjectives []string `json:"learning_objectives"`
	RequiredEquipment  []string `json:"required_equipment"`
	LessonDate         string   `json:"lesson_date" validate:"required,isodate"`
	StartDate          string   `json:"start_date" validate:"isodate"`
	EndDate            string   `json:"end_date" validate:"isodate"`
	DurationMinutes    int      `json:"duration_minutes" validate:"gte=0,lte=1440"`
	GradeLevel         string   `json:"grade_level" validate:"max=32"`
}

// BulkLessonPlanRequest wraps several plans created in one call.
type BulkLessonPlanRequest struct {
	Plans []LessonPlanRequest `json:"plans" validate:"required,min=1,dive"`
}

// LessonPlanService manages teacher-owned lesson plans.
type LessonPlanService struct {
	repo      lessonPlanRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLessonPlanService constructs a lesson plan service.
func NewLessonPlanService(repo lessonPlanRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *LessonPlanService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LessonPlanService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns the caller's plans. Teachers bound to a subject only see that subject.
func (s *LessonPlanService) List(ctx context.Context, principal models.Principal) ([]models.LessonPlan, error) {
	filter := models.LessonPlanFilter{TeacherID: principal.UserID}
	if principal.Role == models.RoleTeacher && principal.SubjectID != "" {
		filter.SubjectID = principal.SubjectID
	}
	plans, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list lesson plans")
	}
	if plans == nil {
		plans = []models.LessonPlan{}
	}
	return plans, nil
}

// Get returns a plan the caller owns, or any plan for admins.
func (s *LessonPlanService) Get(ctx context.Context, principal models.Principal, id string) (*models.LessonPlan, error) {
	return s.loadOwned(ctx, principal, id)
}

// Create stores a new plan owned by the caller.
func (s *LessonPlanService) Create(ctx context.Context, principal models.Principal, req LessonPlanRequest) (*models.LessonPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid lesson plan payload")
	}
	plan := &models.LessonPlan{TeacherID: principal.UserID}
	if err := applyLessonPlanRequest(plan, req); err != nil {
		return nil, err
	}
	if err := s.insert(ctx, plan); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cachePatternCurriculum)
	return plan, nil
}

// Update replaces the writable fields of a plan the caller owns.
func (s *LessonPlanService) Update(ctx context.Context, principal models.Principal, id string, req LessonPlanRequest) (*models.LessonPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid lesson plan payload")
	}
	plan, err := s.loadOwned(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if err := applyLessonPlanRequest(plan, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, plan); err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subject does not exist")
		}
		return nil, internalError(err, "failed to update lesson plan")
	}
	s.cache.Invalidate(ctx, cachePatternCurriculum)
	return plan, nil
}

// Delete removes a plan the caller owns.
func (s *LessonPlanService) Delete(ctx context.Context, principal models.Principal, id string) error {
	plan, err := s.loadOwned(ctx, principal, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, plan.ID); err != nil {
		return internalError(err, "failed to delete lesson plan")
	}
	s.cache.Invalidate(ctx, cachePatternCurriculum)
	return nil
}

// BulkCreate inserts plans one at a time. A failure stops the batch; earlier plans stay stored.
func (s *LessonPlanService) BulkCreate(ctx context.Context, principal models.Principal, req BulkLessonPlanRequest) (*dto.BulkLessonPlanResponse, error) {
	if len(req.Plans) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Plans array is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid lesson plan payload")
	}

	created := make([]models.LessonPlan, 0, len(req.Plans))
	defer func() {
		if len(created) > 0 {
			s.cache.Invalidate(ctx, cachePatternCurriculum)
		}
	}()

	for i, item := range req.Plans {
		plan := &models.LessonPlan{TeacherID: principal.UserID}
		err := applyLessonPlanRequest(plan, item)
		if err == nil {
			err = s.insert(ctx, plan)
		}
		if err != nil {
			s.logger.Warn("bulk lesson plan insert stopped", zap.Int("index", i), zap.Int("created", len(created)), zap.Error(err))
			appErr := appErrors.FromError(err)
			return nil, appErrors.WithDetails(appErr, dto.BulkFailure{FailedIndex: i, Created: created})
		}
		created = append(created, *plan)
	}

	return &dto.BulkLessonPlanResponse{
		Message: fmt.Sprintf("%d lesson plans created successfully", len(created)),
		Plans:   created,
	}, nil
}

// Stats summarises the caller's plans with the most recent five.
func (s *LessonPlanService) Stats(ctx context.Context, principal models.Principal) (*models.TeacherStats, error) {
	stats, err := s.repo.Stats(ctx, principal.UserID)
	if err != nil {
		return nil, internalError(err, "failed to load teacher statistics")
	}
	recent, err := s.repo.List(ctx, models.LessonPlanFilter{TeacherID: principal.UserID, Limit: recentPlansLimit})
	if err != nil {
		return nil, internalError(err, "failed to load recent lesson plans")
	}
	if recent == nil {
		recent = []models.LessonPlan{}
	}
	stats.RecentPlans = recent
	return stats, nil
}

func (s *LessonPlanService) loadOwned(ctx context.Context, principal models.Principal, id string) (*models.LessonPlan, error) {
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, lessonPlanNotFoundMsg, "failed to load lesson plan")
	}
	if plan.TeacherID != principal.UserID && !principal.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, lessonPlanNotFoundMsg)
	}
	return plan, nil
}

func (s *LessonPlanService) insert(ctx context.Context, plan *models.LessonPlan) error {
	if err := s.repo.Create(ctx, plan); err != nil {
		if database.IsForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrValidation, "subject does not exist")
		}
		return internalError(err, "failed to create lesson plan")
	}
	return nil
}

func applyLessonPlanRequest(plan *models.LessonPlan, req LessonPlanRequest) error {
	lessonDate, err := models.ParseDate(req.LessonDate)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "lesson_date must be a date in YYYY-MM-DD format")
	}
	start, end, err := optionalRange(req.StartDate, req.EndDate)
	if err != nil {
		return err
	}

	plan.SubjectID = strings.TrimSpace(req.SubjectID)
	plan.Title = strings.TrimSpace(req.Title)
	plan.Description = req.Description
	plan.LearningObjectives = req.LearningObjectives
	plan.RequiredEquipment = req.RequiredEquipment
	plan.LessonDate = lessonDate
	plan.StartDate = start
	plan.EndDate = end
	plan.DurationMinutes = req.DurationMinutes
	plan.GradeLevel = req.GradeLevel
	return nil
}

func optionalRange(startRaw, endRaw string) (*models.Date, *models.Date, error) {
	var start, end *models.Date
	if startRaw != "" {
		d, err := models.ParseDate(startRaw)
		if err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be a date in YYYY-MM-DD format")
		}
		start = &d
	}
	if endRaw != "" {
		d, err := models.ParseDate(endRaw)
		if err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be a date in YYYY-MM-DD format")
		}
		end = &d
	}
	if start != nil && end != nil && end.Before(start.Time) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}
	return start, end, nil
}
