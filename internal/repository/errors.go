package repository

import (
	"errors"
	"strings"

	"github.com/atinyakov/JobTracker/internal/apperr"
	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

// mapWriteError converts Postgres constraint failures into apperr errors.
// Other errors are returned unchanged.
func mapWriteError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch string(pqErr.Code) {
	case pgerrcode.UniqueViolation:
		return apperr.DuplicateKey(fieldFromConstraint(pqErr.Constraint), err)
	case pgerrcode.NotNullViolation, pgerrcode.CheckViolation:
		return &apperr.AppError{Code: apperr.CodeValidation, Message: "invalid input", Field: pqErr.Column, Cause: err}
	}
	return err
}

// fieldFromConstraint infers the column from a Postgres default constraint
// name such as "users_email_key".
func fieldFromConstraint(name string) string {
	parts := strings.Split(name, "_")
	if len(parts) != 3 {
		return ""
	}
	return parts[1]
}
