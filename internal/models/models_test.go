package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseSerial(t *testing.T) {
	cases := map[string]string{
		"LAP001":   "LAP",
		"PROJ-A12": "PROJ-A12",
		"CAM2024":  "CAM2",
		"123":      "",
		"MIC":      "MIC",
	}
	for serial, want := range cases {
		assert.Equal(t, want, BaseSerial(serial), serial)
	}
}

func TestDateRangeOverlaps(t *testing.T) {
	r, err := ParseDateRange("2024-03-01", "2024-03-03")
	require.NoError(t, err)

	touching, _ := ParseDateRange("2024-03-03", "2024-03-05")
	after, _ := ParseDateRange("2024-03-04", "2024-03-05")
	inside, _ := ParseDateRange("2024-03-02", "2024-03-02")

	assert.True(t, r.Overlaps(touching))
	assert.True(t, touching.Overlaps(r))
	assert.True(t, r.Overlaps(inside))
	assert.False(t, r.Overlaps(after))
}

func TestParseDateRangeRejectsInverted(t *testing.T) {
	_, err := ParseDateRange("2024-03-05", "2024-03-01")
	assert.Error(t, err)

	_, err = ParseDateRange("03/01/2024", "2024-03-05")
	assert.Error(t, err)
}

func TestDateJSONAndScan(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-09-10"`), &d))
	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-09-10"`, string(out))

	var scanned Date
	require.NoError(t, scanned.Scan(time.Date(2024, 9, 10, 15, 4, 0, 0, time.UTC)))
	assert.Equal(t, "2024-09-10", scanned.String())

	require.NoError(t, scanned.Scan([]byte("2024-01-02T00:00:00Z")))
	assert.Equal(t, "2024-01-02", scanned.String())

	v, err := Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestPrincipalRoles(t *testing.T) {
	p := Principal{UserID: "u1", Role: RoleTeacher}
	assert.False(t, p.IsAdmin())
	assert.True(t, p.HasRole(RoleManager, RoleTeacher))
	assert.False(t, p.HasRole(RoleAdmin))
	assert.False(t, UserRole("SUPERADMIN").Valid())
}

func TestReservationStatusActive(t *testing.T) {
	assert.True(t, ReservationPending.Active())
	assert.True(t, ReservationApproved.Active())
	assert.False(t, ReservationReturned.Active())
	assert.False(t, ReservationStatus("lost").Valid())
}
