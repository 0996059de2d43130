package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-fleet-api/internal/dto"
	"github.com/noah-isme/edu-fleet-api/internal/models"
	appErrors "github.com/noah-isme/edu-fleet-api/pkg/errors"
)

// fleetStoreStub serves both the equipment and reservation sides of an allocation.
type fleetStoreStub struct {
	items        map[string]*models.Equipment
	reservations []models.Reservation
	createErr    error
}

func newFleetStoreStub(items ...models.Equipment) *fleetStoreStub {
	store := &fleetStoreStub{items: map[string]*models.Equipment{}}
	for i := range items {
		item := items[i]
		store.items[item.ID] = &item
	}
	return store
}

func (s *fleetStoreStub) FindByIDForUpdate(_ context.Context, _ sqlx.ExtContext, id string) (*models.Equipment, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *item
	return &clone, nil
}

func (s *fleetStoreStub) NextAvailableInFleet(ctx context.Context, exec sqlx.ExtContext, fleet string, period models.DateRange, _ bool) (*models.Equipment, error) {
	var candidates []*models.Equipment
	for _, item := range s.items {
		if item.FleetSerial == fleet && item.Status == models.EquipmentAvailable {
			candidates = append(candidates, item)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].SerialNumber < candidates[j].SerialNumber })
	for _, item := range candidates {
		busy, _ := s.HasActiveOverlap(ctx, exec, item.ID, period)
		if !busy {
			clone := *item
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *fleetStoreStub) HasActiveOverlap(_ context.Context, _ sqlx.ExtContext, equipmentID string, period models.DateRange) (bool, error) {
	for _, r := range s.reservations {
		if r.EquipmentID == equipmentID && r.Status.Active() && r.Period().Overlaps(period) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fleetStoreStub) Create(_ context.Context, _ sqlx.ExtContext, reservation *models.Reservation) error {
	if s.createErr != nil {
		return s.createErr
	}
	reservation.ID = "req-" + reservation.EquipmentID
	s.reservations = append(s.reservations, *reservation)
	return nil
}

func laptop(id, serial string, status models.EquipmentStatus) models.Equipment {
	return models.Equipment{ID: id, SerialNumber: serial, FleetSerial: "LAP", Name: "Laptop", Type: "laptop", Status: status}
}

func mustDate(t *testing.T, raw string) models.Date {
	t.Helper()
	d, err := models.ParseDate(raw)
	require.NoError(t, err)
	return d
}

type allocationFixture struct {
	service *AllocationService
	store   *fleetStoreStub
	metrics *MetricsService
	mock    sqlmock.Sqlmock
}

func newAllocationFixture(t *testing.T, store *fleetStoreStub) allocationFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	plans := newLessonPlanRepoStub()
	plans.plans["lp-1"] = &models.LessonPlan{ID: "lp-1", TeacherID: teacherOne.UserID, Title: "Fractions"}

	metrics := NewMetricsService()
	svc := NewAllocationService(sqlx.NewDb(db, "sqlmock"), plans, store, store, nil, metrics, nil, nil)
	return allocationFixture{service: svc, store: store, metrics: metrics, mock: mock}
}

func equipmentRequest(ids ...string) dto.RequestEquipmentRequest {
	return dto.RequestEquipmentRequest{EquipmentIDs: ids, StartDate: "2024-03-10", EndDate: "2024-03-12"}
}

func TestAllocationServiceFallsBackToNextFleetUnit(t *testing.T) {
	store := newFleetStoreStub(
		laptop("e1", "LAP001", models.EquipmentAvailable),
		laptop("e2", "LAP002", models.EquipmentAvailable),
		laptop("e3", "LAP003", models.EquipmentAvailable),
	)
	store.reservations = []models.Reservation{{
		EquipmentID: "e1",
		StartDate:   mustDate(t, "2024-03-11"),
		EndDate:     mustDate(t, "2024-03-15"),
		Status:      models.ReservationApproved,
	}}
	fx := newAllocationFixture(t, store)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	resp, err := fx.service.RequestEquipment(context.Background(), teacherOne, "lp-1", equipmentRequest("e1"))
	require.NoError(t, err)
	require.Len(t, resp.Requests, 1)
	assert.Equal(t, "e2", resp.Requests[0].EquipmentID)
	require.NotNil(t, resp.Requests[0].Equipment)
	assert.Equal(t, "LAP002", resp.Requests[0].Equipment.SerialNumber)
	assert.Equal(t, models.ReservationPending, resp.Requests[0].Status)
	assert.Equal(t, teacherOne.UserID, resp.Requests[0].UserID)
	assert.Equal(t, "Equipment for lesson: Fractions", resp.Requests[0].Notes)
	assert.Empty(t, resp.Skipped)
	assert.Equal(t, "1 requests created, 0 items skipped", resp.Message)
	assert.Equal(t, "lp-1", resp.LessonPlan.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.allocationOutcomes.WithLabelValues(AllocationFallback)))
	require.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestAllocationServiceFleetScenario(t *testing.T) {
	store := newFleetStoreStub(
		laptop("e1", "LAP001", models.EquipmentCheckedOut),
		laptop("e2", "LAP002", models.EquipmentAvailable),
		laptop("e3", "LAP003", models.EquipmentAvailable),
	)
	fx := newAllocationFixture(t, store)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	resp, err := fx.service.RequestEquipment(context.Background(), teacherOne, "lp-1", equipmentRequest("e1"))
	require.NoError(t, err)
	require.Len(t, resp.Requests, 1)
	assert.Equal(t, "e2", resp.Requests[0].EquipmentID)
	require.NotNil(t, resp.Requests[0].Equipment)
	assert.Equal(t, "LAP002", resp.Requests[0].Equipment.SerialNumber)
	assert.Empty(t, resp.Skipped)
	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.allocationOutcomes.WithLabelValues(AllocationFallback)))
	require.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestAllocationServicePrefersSmallestSiblingSerial(t *testing.T) {
	store := newFleetStoreStub(
		laptop("e3", "LAP003", models.EquipmentCheckedOut),
		laptop("e2", "LAP002", models.EquipmentAvailable),
		laptop("e1", "LAP001", models.EquipmentAvailable),
	)
	fx := newAllocationFixture(t, store)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	resp, err := fx.service.RequestEquipment(context.Background(), teacherOne, "lp-1", equipmentRequest("e3"))
	require.NoError(t, err)
	require.Len(t, resp.Requests, 1)
	assert.Equal(t, "e1", resp.Requests[0].EquipmentID)
	require.NotNil(t, resp.Requests[0].Equipment)
	assert.Equal(t, "LAP001", resp.Requests[0].Equipment.SerialNumber)
	require.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestAllocationServiceSelectsEachUnitOnce(t *testing.T) {
	store := newFleetStoreStub(
		laptop("e1", "LAP001", models.EquipmentAvailable),
		laptop("e2", "LAP002", models.EquipmentUnderRepair),
		laptop("e3", "LAP003", models.EquipmentAvailable),
	)
	fx := newAllocationFixture(t, store)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()

	req := equipmentRequest("e1", "e1", "e1")
	req.Notes = "Group work"
	resp, err := fx.service.RequestEquipment(context.Background(), teacherOne, "lp-1", req)
	require.NoError(t, err)
	require.Len(t, resp.Requests, 2)
	assert.Equal(t, "e1", resp.Requests[0].EquipmentID)
	assert.Equal(t, "e3", resp.Requests[1].EquipmentID)
	assert.Equal(t, "Group work", resp.Requests[1].Notes)
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, dto.SkippedItem{EquipmentID: "e1", Reason: dto.SkipReasonNoFleetItem}, resp.Skipped[0])
	assert.Equal(t, "2 requests created, 1 items skipped", resp.Message)
	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.allocationOutcomes.WithLabelValues(AllocationReserved)))
	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.allocationOutcomes.WithLabelValues(AllocationSkipped)))
}

func TestAllocationServiceAllSkipped(t *testing.T) {
	store := newFleetStoreStub(
		laptop("e1", "LAP001", models.EquipmentCheckedOut),
		laptop("e2", "LAP002", models.EquipmentRetired),
	)
	fx := newAllocationFixture(t, store)
	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()
	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()

	_, err := fx.service.RequestEquipment(context.Background(), teacherOne, "lp-1", equipmentRequest("e1", "missing"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrFleetExhausted.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, appErrors.ErrFleetExhausted.Message, appErr.Message)
	details, ok := appErr.Details.(dto.SkippedDetails)
	require.True(t, ok)
	require.Len(t, details.Skipped, 2)
	assert.Equal(t, "missing", details.Skipped[1].EquipmentID)
	assert.Empty(t, store.reservations)
	require.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestAllocationServiceConflictIsSkipped(t *testing.T) {
	store := newFleetStoreStub(
		laptop("e1", "LAP001", models.EquipmentAvailable),
	)
	store.createErr = &pq.Error{Code: "23P01"}
	fx := newAllocationFixture(t, store)
	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()

	_, err := fx.service.RequestEquipment(context.Background(), teacherOne, "lp-1", equipmentRequest("e1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrFleetExhausted))
}

func TestAllocationServiceUnexpectedStoreError(t *testing.T) {
	store := newFleetStoreStub(
		laptop("e1", "LAP001", models.EquipmentAvailable),
	)
	store.createErr = &pq.Error{Code: "57014"}
	fx := newAllocationFixture(t, store)
	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()

	_, err := fx.service.RequestEquipment(context.Background(), teacherOne, "lp-1", equipmentRequest("e1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestAllocationServiceLessonPlanNotFound(t *testing.T) {
	fx := newAllocationFixture(t, newFleetStoreStub())

	_, err := fx.service.RequestEquipment(context.Background(), teacherOne, "nope", equipmentRequest("e1"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "Lesson plan not found", appErr.Message)
}

func TestAllocationServiceValidatesPeriod(t *testing.T) {
	fx := newAllocationFixture(t, newFleetStoreStub())

	cases := []dto.RequestEquipmentRequest{
		{StartDate: "2024-03-10", EndDate: "2024-03-12"},
		{EquipmentIDs: []string{"e1"}, StartDate: "10/03/2024", EndDate: "2024-03-12"},
		{EquipmentIDs: []string{"e1"}, StartDate: "2024-03-12", EndDate: "2024-03-10"},
	}
	for _, req := range cases {
		_, err := fx.service.RequestEquipment(context.Background(), teacherOne, "lp-1", req)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
	require.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestAllocationServiceSingleDayAdjacency(t *testing.T) {
	store := newFleetStoreStub(laptop("e1", "LAP001", models.EquipmentAvailable))
	store.reservations = []models.Reservation{{
		EquipmentID: "e1",
		StartDate:   mustDate(t, "2024-03-09"),
		EndDate:     mustDate(t, "2024-03-09"),
		Status:      models.ReservationPending,
	}, {
		EquipmentID: "e1",
		StartDate:   mustDate(t, "2024-03-10"),
		EndDate:     mustDate(t, "2024-03-12"),
		Status:      models.ReservationReturned,
	}}
	fx := newAllocationFixture(t, store)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	resp, err := fx.service.RequestEquipment(context.Background(), teacherOne, "lp-1", equipmentRequest("e1"))
	require.NoError(t, err)
	require.Len(t, resp.Requests, 1)
	assert.Equal(t, "e1", resp.Requests[0].EquipmentID)
	require.NoError(t, fx.mock.ExpectationsWereMet())
}
