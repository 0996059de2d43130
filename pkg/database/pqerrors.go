package database

import (
	"errors"

	"github.com/lib/pq"
)

// SQLSTATE codes the API reacts to.
const (
	CodeUniqueViolation      = "23505"
	CodeForeignKeyViolation  = "23503"
	CodeExclusionViolation   = "23P01"
	CodeSerializationFailure = "40001"
	CodeDeadlockDetected     = "40P01"
)

// Code extracts the SQLSTATE from a lib/pq error, or "" when err is not one.
func Code(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// IsUniqueViolation reports whether err is a unique constraint failure.
func IsUniqueViolation(err error) bool {
	return Code(err) == CodeUniqueViolation
}

// IsForeignKeyViolation reports whether err references a missing parent row.
func IsForeignKeyViolation(err error) bool {
	return Code(err) == CodeForeignKeyViolation
}

// IsReservationConflict reports whether err means a concurrent writer claimed the same
// equipment/date range: an exclusion constraint hit or a serializable transaction abort.
func IsReservationConflict(err error) bool {
	switch Code(err) {
	case CodeExclusionViolation, CodeSerializationFailure, CodeDeadlockDetected:
		return true
	}
	return false
}
