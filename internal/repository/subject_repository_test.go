package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-fleet-api/internal/models"
)

var subjectRowColumns = []string{"id", "name", "code", "description", "grade_level", "room", "teacher_name", "equipment_fleets", "created_at", "updated_at"}

func TestSubjectRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(subjectRowColumns).
		AddRow("s1", "Computer Science", "CS", "", "10", "Lab 1", "Ms. Ada", "{LAP,TAB}", now, now).
		AddRow("s2", "Mathematics", "MATH", "", "9", "R2", "Mr. Gauss", "{}", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM subjects ORDER BY name")).WillReturnRows(rows)

	subjects, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, []string{"LAP", "TAB"}, []string(subjects[0].EquipmentFleets))
	assert.Empty(t, subjects[1].EquipmentFleets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryListWithLessonCounts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	now := time.Now()
	cols := append(append([]string{}, subjectRowColumns...), "lesson_count")
	rows := sqlmock.NewRows(cols).AddRow("s1", "Computer Science", "CS", "", "10", "", "", "{LAP}", now, now, 3)
	mock.ExpectQuery(regexp.QuoteMeta("COUNT(DISTINCT lp.id) AS lesson_count")).WillReturnRows(rows)

	subjects, err := repo.ListWithLessonCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, 3, subjects[0].LessonCount)
	assert.Equal(t, "CS", subjects[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryExistsByCode(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM subjects WHERE UPPER(code) = UPPER($1) AND id <> $2 LIMIT 1")).
		WithArgs("MATH", "s1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}))

	exists, err := repo.ExistsByCode(context.Background(), "MATH", "s1")
	require.NoError(t, err)
	assert.False(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM subjects WHERE UPPER(code) = UPPER($1) LIMIT 1")).
		WithArgs("MATH").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	exists, err = repo.ExistsByCode(context.Background(), "MATH", "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryCreateDefaultsFleets(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec("INSERT INTO subjects").WillReturnResult(sqlmock.NewResult(1, 1))

	subject := &models.Subject{Name: "History", Code: "HIST"}
	require.NoError(t, repo.Create(context.Background(), subject))
	assert.NotEmpty(t, subject.ID)
	assert.NotNil(t, subject.EquipmentFleets)
	assert.False(t, subject.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryCountLessonPlans(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM lesson_plans WHERE subject_id = $1")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountLessonPlans(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
