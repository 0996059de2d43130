package service

import (
	"database/sql"
	"errors"

	appErrors "github.com/noah-isme/edu-fleet-api/pkg/errors"
	"github.com/noah-isme/edu-fleet-api/pkg/validation"
)

func validationError(err error, message string) *appErrors.Error {
	wrapped := appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	if fields := validation.FieldErrors(err); len(fields) > 0 {
		wrapped.Details = fields
	}
	return wrapped
}

func internalError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// lookupError maps a missing row to NOT_FOUND with message and anything else to INTERNAL_ERROR.
func lookupError(err error, notFound, failure string) *appErrors.Error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return internalError(err, failure)
}
