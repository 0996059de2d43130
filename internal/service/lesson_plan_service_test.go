package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-fleet-api/internal/dto"
	"github.com/noah-isme/edu-fleet-api/internal/models"
	appErrors "github.com/noah-isme/edu-fleet-api/pkg/errors"
)

type lessonPlanRepoStub struct {
	plans      map[string]*models.LessonPlan
	lastFilter models.LessonPlanFilter
	failOnNth  int
	creates    int
	deleted    []string
}

func newLessonPlanRepoStub() *lessonPlanRepoStub {
	return &lessonPlanRepoStub{plans: map[string]*models.LessonPlan{}}
}

func (m *lessonPlanRepoStub) List(_ context.Context, filter models.LessonPlanFilter) ([]models.LessonPlan, error) {
	m.lastFilter = filter
	var out []models.LessonPlan
	for _, p := range m.plans {
		if p.TeacherID != filter.TeacherID {
			continue
		}
		if filter.SubjectID != "" && p.SubjectID != filter.SubjectID {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LessonDate.After(out[j].LessonDate.Time) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *lessonPlanRepoStub) FindByID(_ context.Context, id string) (*models.LessonPlan, error) {
	p, ok := m.plans[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *p
	return &clone, nil
}

func (m *lessonPlanRepoStub) Create(_ context.Context, plan *models.LessonPlan) error {
	m.creates++
	if m.failOnNth > 0 && m.creates == m.failOnNth {
		return &pq.Error{Code: "23503"}
	}
	plan.ID = fmt.Sprintf("lp-%d", m.creates)
	clone := *plan
	m.plans[plan.ID] = &clone
	return nil
}

func (m *lessonPlanRepoStub) Update(_ context.Context, plan *models.LessonPlan) error {
	clone := *plan
	m.plans[plan.ID] = &clone
	return nil
}

func (m *lessonPlanRepoStub) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.plans, id)
	return nil
}

func (m *lessonPlanRepoStub) Stats(_ context.Context, teacherID string) (*models.TeacherStats, error) {
	stats := &models.TeacherStats{}
	subjects := map[string]struct{}{}
	for _, p := range m.plans {
		if p.TeacherID == teacherID {
			stats.TotalPlans++
			subjects[p.SubjectID] = struct{}{}
		}
	}
	stats.SubjectsTaught = len(subjects)
	return stats, nil
}

var (
	teacherOne = models.Principal{UserID: "t1", Role: models.RoleTeacher}
	teacherTwo = models.Principal{UserID: "t2", Role: models.RoleTeacher}
	adminUser  = models.Principal{UserID: "a1", Role: models.RoleAdmin}
)

func planRequest(title, date string) LessonPlanRequest {
	return LessonPlanRequest{SubjectID: "s1", Title: title, LessonDate: date, DurationMinutes: 45}
}

func TestLessonPlanServiceCreateAndOwnership(t *testing.T) {
	repo := newLessonPlanRepoStub()
	svc := NewLessonPlanService(repo, nil, nil, nil)

	plan, err := svc.Create(context.Background(), teacherOne, planRequest("Fractions", "2024-05-02"))
	require.NoError(t, err)
	assert.Equal(t, "t1", plan.TeacherID)
	assert.Equal(t, "2024-05-02", plan.LessonDate.String())

	_, err = svc.Get(context.Background(), teacherTwo, plan.ID)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 404, appErr.Status)
	assert.Equal(t, "Lesson plan not found or not authorized", appErr.Message)

	err = svc.Delete(context.Background(), teacherTwo, plan.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, repo.deleted)

	got, err := svc.Get(context.Background(), adminUser, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, got.ID)

	require.NoError(t, svc.Delete(context.Background(), teacherOne, plan.ID))
	assert.Equal(t, []string{plan.ID}, repo.deleted)
}

func TestLessonPlanServiceUpdateRejectsInvertedRange(t *testing.T) {
	repo := newLessonPlanRepoStub()
	svc := NewLessonPlanService(repo, nil, nil, nil)
	plan, err := svc.Create(context.Background(), teacherOne, planRequest("Cells", "2024-05-02"))
	require.NoError(t, err)

	req := planRequest("Cells", "2024-05-02")
	req.StartDate = "2024-05-05"
	req.EndDate = "2024-05-01"
	_, err = svc.Update(context.Background(), teacherOne, plan.ID, req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	req.EndDate = "2024-05-06"
	updated, err := svc.Update(context.Background(), teacherOne, plan.ID, req)
	require.NoError(t, err)
	require.NotNil(t, updated.StartDate)
	assert.Equal(t, "2024-05-05", updated.StartDate.String())
}

func TestLessonPlanServiceListScopesTeacherSubject(t *testing.T) {
	repo := newLessonPlanRepoStub()
	svc := NewLessonPlanService(repo, nil, nil, nil)

	bound := models.Principal{UserID: "t1", Role: models.RoleTeacher, SubjectID: "s9"}
	_, err := svc.List(context.Background(), bound)
	require.NoError(t, err)
	assert.Equal(t, models.LessonPlanFilter{TeacherID: "t1", SubjectID: "s9"}, repo.lastFilter)

	admin := models.Principal{UserID: "a1", Role: models.RoleAdmin, SubjectID: "s9"}
	plans, err := svc.List(context.Background(), admin)
	require.NoError(t, err)
	assert.NotNil(t, plans)
	assert.Equal(t, models.LessonPlanFilter{TeacherID: "a1"}, repo.lastFilter)
}

func TestLessonPlanServiceBulkCreateIsNotAtomic(t *testing.T) {
	repo := newLessonPlanRepoStub()
	repo.failOnNth = 2
	svc := NewLessonPlanService(repo, nil, nil, nil)

	_, err := svc.BulkCreate(context.Background(), teacherOne, BulkLessonPlanRequest{Plans: []LessonPlanRequest{
		planRequest("One", "2024-05-01"),
		planRequest("Two", "2024-05-02"),
		planRequest("Three", "2024-05-03"),
	}})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	failure, ok := appErr.Details.(dto.BulkFailure)
	require.True(t, ok)
	assert.Equal(t, 1, failure.FailedIndex)
	assert.Len(t, failure.Created, 1)
	assert.Len(t, repo.plans, 1)
}

func TestLessonPlanServiceBulkCreate(t *testing.T) {
	repo := newLessonPlanRepoStub()
	svc := NewLessonPlanService(repo, nil, nil, nil)

	resp, err := svc.BulkCreate(context.Background(), teacherOne, BulkLessonPlanRequest{Plans: []LessonPlanRequest{
		planRequest("One", "2024-05-01"),
		planRequest("Two", "2024-05-02"),
	}})
	require.NoError(t, err)
	assert.Equal(t, "2 lesson plans created successfully", resp.Message)
	assert.Len(t, resp.Plans, 2)

	_, err = svc.BulkCreate(context.Background(), teacherOne, BulkLessonPlanRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestLessonPlanServiceStats(t *testing.T) {
	repo := newLessonPlanRepoStub()
	svc := NewLessonPlanService(repo, nil, nil, nil)
	for i := 1; i <= 7; i++ {
		_, err := svc.Create(context.Background(), teacherOne, planRequest(fmt.Sprintf("Plan %d", i), fmt.Sprintf("2024-05-%02d", i)))
		require.NoError(t, err)
	}

	stats, err := svc.Stats(context.Background(), teacherOne)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalPlans)
	assert.Equal(t, 1, stats.SubjectsTaught)
	require.Len(t, stats.RecentPlans, 5)
	assert.Equal(t, "2024-05-07", stats.RecentPlans[0].LessonDate.String())
}
