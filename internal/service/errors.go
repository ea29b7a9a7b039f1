package service

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	appErrors "github.com/noah-isme/matricula-api/pkg/errors"
	"github.com/noah-isme/matricula-api/pkg/validation"
)

const (
	pqUniqueViolation     = "23505"
	pqCheckViolation      = "23514"
	pqForeignKeyViolation = "23503"
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// translateStoreError maps constraint violations raised by PostgreSQL to business
// errors. Anything else is unexpected.
func translateStoreError(err error, message string) error {
	var typed *appErrors.Error
	if errors.As(err, &typed) {
		return typed
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "record already exists").
				WithDetails(map[string]string{"constraint": pqErr.Constraint})
		case pqCheckViolation:
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "constraint violated").
				WithDetails(map[string]string{"constraint": pqErr.Constraint})
		case pqForeignKeyViolation:
			return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "referenced record not found")
		}
	}
	return appErrors.Internal(err, message)
}

func invalidPayload(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message).
		WithDetails(validation.Describe(err))
}

func invalidInput(message string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrValidation, message)
}

func invalidState(message string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrInvalidState, message)
}

func conflict(message string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrConflict, message)
}

func notFound(message string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrNotFound, message)
}

// lookupError maps a failed lookup to NotFound or Internal.
func lookupError(err error, missing, failed string) error {
	if isNoRows(err) {
		return notFound(missing)
	}
	return translateStoreError(err, failed)
}

func forbidden(message string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrForbidden, message)
}
