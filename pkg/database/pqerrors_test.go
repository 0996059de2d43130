package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestCodeUnwrapsPQErrors(t *testing.T) {
	err := fmt.Errorf("create subject: %w", &pq.Error{Code: CodeUniqueViolation})
	assert.Equal(t, CodeUniqueViolation, Code(err))
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsReservationConflict(err))
}

func TestIsReservationConflict(t *testing.T) {
	for _, code := range []string{CodeExclusionViolation, CodeSerializationFailure, CodeDeadlockDetected} {
		err := fmt.Errorf("insert reservation: %w", &pq.Error{Code: pq.ErrorCode(code)})
		assert.True(t, IsReservationConflict(err), code)
	}
	assert.False(t, IsReservationConflict(errors.New("boom")))
	assert.Equal(t, "", Code(nil))
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, IsForeignKeyViolation(&pq.Error{Code: CodeForeignKeyViolation}))
}
