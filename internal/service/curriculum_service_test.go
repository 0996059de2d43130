package service

import (
	"context"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-fleet-api/internal/models"
)

type curriculumSubjectsStub struct {
	subjects []models.SubjectWithLessons
	calls    int
}

func (m *curriculumSubjectsStub) ListWithLessonCounts(context.Context) ([]models.SubjectWithLessons, error) {
	m.calls++
	return m.subjects, nil
}

type curriculumEquipmentStub struct {
	groups       []models.FleetGroup
	scores       []models.TypeScore
	usage        []models.TypeUsage
	scoreTypes   []string
	excludeTypes []string
	limit        int
}

func (m *curriculumEquipmentStub) Groups(context.Context) ([]models.FleetGroup, error) {
	return m.groups, nil
}

func (m *curriculumEquipmentStub) TypeScores(_ context.Context, types []string) ([]models.TypeScore, error) {
	m.scoreTypes = types
	return m.scores, nil
}

func (m *curriculumEquipmentStub) OtherTypeUsage(_ context.Context, exclude []string, limit int) ([]models.TypeUsage, error) {
	m.excludeTypes = exclude
	m.limit = limit
	return m.usage, nil
}

func curriculumSubject(name, code string, lessons int, fleets ...string) models.SubjectWithLessons {
	return models.SubjectWithLessons{
		Subject:     models.Subject{ID: code, Name: name, Code: code, EquipmentFleets: pq.StringArray(fleets)},
		LessonCount: lessons,
	}
}

func TestCurriculumServiceView(t *testing.T) {
	subjects := &curriculumSubjectsStub{subjects: []models.SubjectWithLessons{
		curriculumSubject("Art", "ART", 0),
		curriculumSubject("Mathematics", "MATH", 3, "LAP", "CALC"),
		curriculumSubject("Science", "SCI", 1, "MIC"),
	}}
	equipment := &curriculumEquipmentStub{groups: []models.FleetGroup{
		{BaseSerial: "CALC", Name: "Calculator", Type: "calculator", TotalCount: 30, AvailableCount: 30},
		{BaseSerial: "LAP", Name: "Laptop", Type: "laptop", TotalCount: 3, AvailableCount: 1},
		{BaseSerial: "LAPTOP", Name: "Laptop Pro", Type: "laptop", TotalCount: 2, AvailableCount: 2},
	}}
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	svc := NewCurriculumService(subjects, equipment, cache, nil, CurriculumConfig{ViewTTL: time.Minute})

	view, hit, err := svc.View(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, view.Subjects, 3)

	math := view.Subjects[1]
	assert.Equal(t, "MATH", math.Code)
	assert.Equal(t, 2, math.FleetCount)
	assert.Equal(t, 33, math.TotalEquipment)
	assert.Empty(t, view.Subjects[0].Fleets)
	assert.Equal(t, 0, view.Subjects[2].FleetCount)

	assert.Equal(t, models.CurriculumSummary{
		TotalSubjects:        3,
		SubjectsWithFleets:   1,
		SubjectsWithLessons:  2,
		TotalEquipmentMapped: 33,
	}, view.Summary)

	_, hit, err = svc.View(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, subjects.calls)
}

func TestCurriculumServiceRecommendations(t *testing.T) {
	equipment := &curriculumEquipmentStub{
		scores: []models.TypeScore{{Type: "laptop", Count: 3, AvgScore: 4.5}},
		usage:  []models.TypeUsage{{Type: "microscope", AvgScore: 4.2, UsageCount: 2}},
	}
	svc := NewCurriculumService(&curriculumSubjectsStub{}, equipment, nil, nil, CurriculumConfig{})

	recs, err := svc.Recommendations(context.Background(), "math")
	require.NoError(t, err)
	assert.Equal(t, "MATH", recs.SubjectCode)
	assert.Equal(t, []string{"laptop", "projector", "tablet", "calculator"}, equipment.scoreTypes)
	assert.Equal(t, equipment.scoreTypes, equipment.excludeTypes)
	assert.Equal(t, 5, equipment.limit)
	assert.Len(t, recs.CurrentEquipment, 1)
	assert.Len(t, recs.RecommendedAdditions, 1)
	require.Len(t, recs.GapAnalysis, 3)
	assert.Equal(t, "Interactive Whiteboard", recs.GapAnalysis[0].Type)
	assert.True(t, recs.GapAnalysisSample)
}

func TestCurriculumServiceRecommendationsUnknownCode(t *testing.T) {
	equipment := &curriculumEquipmentStub{}
	svc := NewCurriculumService(&curriculumSubjectsStub{}, equipment, nil, nil, CurriculumConfig{})

	recs, err := svc.Recommendations(context.Background(), "LATIN")
	require.NoError(t, err)
	assert.Empty(t, equipment.scoreTypes)
	assert.NotNil(t, recs.CurrentEquipment)
	assert.NotNil(t, recs.RecommendedAdditions)
}
