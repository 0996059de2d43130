package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edu-fleet-api/internal/models"
)

const recommendedAdditionsLimit = 5

// subjectEquipmentTypes maps subject codes to the equipment types they rely on.
var subjectEquipmentTypes = map[string][]string{
	"MATH": {"laptop", "projector", "tablet", "calculator"},
	"SCI":  {"microscope", "projector", "laptop", "camera"},
	"CS":   {"laptop", "tablet", "projector", "server"},
	"ENG":  {"projector", "laptop", "tablet", "speaker"},
	"HIST": {"projector", "laptop", "tablet"},
	"ART":  {"tablet", "camera", "projector", "laptop"},
	"MUS":  {"speaker", "microphone", "laptop", "projector"},
	"PE":   {"speaker", "camera"},
}

// sampleGapAnalysis is illustrative data; no gap model is computed.
var sampleGapAnalysis = []models.GapItem{
	{Type: "Interactive Whiteboard", AvgImpact: 4.7, SubjectCount: 5, IsGap: true},
	{Type: "VR Headset", AvgImpact: 4.5, SubjectCount: 3, IsGap: true},
	{Type: "Document Camera", AvgImpact: 4.3, SubjectCount: 4, IsGap: true},
}

type curriculumSubjects interface {
	ListWithLessonCounts(ctx context.Context) ([]models.SubjectWithLessons, error)
}

type curriculumEquipment interface {
	Groups(ctx context.Context) ([]models.FleetGroup, error)
	TypeScores(ctx context.Context, types []string) ([]models.TypeScore, error)
	OtherTypeUsage(ctx context.Context, exclude []string, limit int) ([]models.TypeUsage, error)
}

// CurriculumConfig tunes curriculum caching.
type CurriculumConfig struct {
	ViewTTL time.Duration
}

// CurriculumService maps subjects to the equipment inventory.
type CurriculumService struct {
	subjects  curriculumSubjects
	equipment curriculumEquipment
	cache     *CacheService
	logger    *zap.Logger
	config    CurriculumConfig
	now       func() time.Time
}

// NewCurriculumService constructs a curriculum service.
func NewCurriculumService(subjects curriculumSubjects, equipment curriculumEquipment, cache *CacheService, logger *zap.Logger, cfg CurriculumConfig) *CurriculumService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CurriculumService{subjects: subjects, equipment: equipment, cache: cache, logger: logger, config: cfg, now: time.Now}
}

// View returns every subject with its lesson count and mapped fleets. The bool reports a cache hit.
func (s *CurriculumService) View(ctx context.Context) (*models.CurriculumView, bool, error) {
	view, hit, err := remember(ctx, s.cache, cacheKeyCurriculum, s.config.ViewTTL, s.buildView)
	if err != nil {
		return nil, false, internalError(err, "failed to build curriculum view")
	}
	return view, hit, nil
}

func (s *CurriculumService) buildView(ctx context.Context) (*models.CurriculumView, error) {
	subjects, err := s.subjects.ListWithLessonCounts(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := s.equipment.Groups(ctx)
	if err != nil {
		return nil, err
	}

	view := &models.CurriculumView{
		Subjects:    make([]models.CurriculumSubject, 0, len(subjects)),
		GeneratedAt: s.now().UTC(),
	}
	for _, subject := range subjects {
		entry := models.CurriculumSubject{SubjectWithLessons: subject, Fleets: []models.FleetGroup{}}
		for _, group := range groups {
			if subject.HasFleet(group.BaseSerial) {
				entry.Fleets = append(entry.Fleets, group)
				entry.TotalEquipment += group.TotalCount
			}
		}
		entry.FleetCount = len(entry.Fleets)

		view.Summary.TotalSubjects++
		if entry.FleetCount > 0 {
			view.Summary.SubjectsWithFleets++
		}
		if entry.LessonCount > 0 {
			view.Summary.SubjectsWithLessons++
		}
		view.Summary.TotalEquipmentMapped += entry.TotalEquipment
		view.Subjects = append(view.Subjects, entry)
	}
	return view, nil
}

// Recommendations ranks owned equipment relevant to a subject code and suggests other types.
// Unknown codes have no relevant types. The gap analysis is sample data.
func (s *CurriculumService) Recommendations(ctx context.Context, subjectCode string) (*models.Recommendations, error) {
	code := strings.ToUpper(strings.TrimSpace(subjectCode))
	types := subjectEquipmentTypes[code]
	if types == nil {
		types = []string{}
	}

	recs, _, err := remember(ctx, s.cache, cacheKeyRecommendations+code, s.config.ViewTTL, func(ctx context.Context) (*models.Recommendations, error) {
		current, err := s.equipment.TypeScores(ctx, types)
		if err != nil {
			return nil, err
		}
		additions, err := s.equipment.OtherTypeUsage(ctx, types, recommendedAdditionsLimit)
		if err != nil {
			return nil, err
		}
		if current == nil {
			current = []models.TypeScore{}
		}
		if additions == nil {
			additions = []models.TypeUsage{}
		}
		gaps := make([]models.GapItem, len(sampleGapAnalysis))
		copy(gaps, sampleGapAnalysis)
		return &models.Recommendations{
			SubjectCode:          code,
			CurrentEquipment:     current,
			RecommendedAdditions: additions,
			GapAnalysis:          gaps,
			GapAnalysisSample:    true,
		}, nil
	})
	if err != nil {
		return nil, internalError(err, "failed to get equipment recommendations")
	}
	return recs, nil
}
