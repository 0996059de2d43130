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

func TestReservationRepositoryHasActiveOverlap(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReservationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AND start_date <= $4 AND end_date >= $3")).
		WithArgs("e1", sqlmock.AnyArg(), "2024-03-01", "2024-03-03").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	overlap, err := repo.HasActiveOverlap(context.Background(), nil, "e1", mustRange(t, "2024-03-01", "2024-03-03"))
	require.NoError(t, err)
	assert.True(t, overlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryCreateInTx(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReservationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO requests").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	res := &models.Reservation{UserID: "u1", EquipmentID: "e1", StartDate: mustRange(t, "2024-03-01", "2024-03-01").Start, EndDate: mustRange(t, "2024-03-01", "2024-03-01").End}
	require.NoError(t, repo.Create(context.Background(), tx, res))
	require.NoError(t, tx.Commit())

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, models.ReservationPending, res.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryListForUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReservationRepository(db)

	now := time.Now()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "equipment_id", "start_date", "end_date", "status", "notes", "created_at", "updated_at", "serial_number", "equipment_name", "equipment_type", "location"}).
		AddRow("r1", "u1", "e1", start, start.AddDate(0, 0, 2), "pending", "", now, now, "LAP001", "Laptop", "laptop", "Lab")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND r.user_id = $1 ORDER BY r.start_date DESC, r.created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("u1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM requests r WHERE 1=1 AND r.user_id = $1")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	views, total, err := repo.List(context.Background(), models.ReservationFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "LAP001", views[0].SerialNumber)
	assert.Equal(t, "2024-03-03", views[0].EndDate.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReservationRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE requests r SET status = $2")).
		WithArgs("r1", "approved", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "equipment_id", "start_date", "end_date", "status", "notes", "created_at", "updated_at"}).
			AddRow("r1", "u1", "e1", now, now, "approved", "", now, now))

	res, err := repo.UpdateStatus(context.Background(), "r1", models.ReservationApproved)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationApproved, res.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
