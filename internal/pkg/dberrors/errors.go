// Package dberrors classifies PostgreSQL errors returned through pgx.
package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// ViolatedConstraint returns the constraint behind a unique violation, or ""
// when err is not one.
func ViolatedConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName
	}
	return ""
}

// IsDuplicateConstraintError reports whether err is a unique violation of the named constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	return constraintName != "" && ViolatedConstraint(err) == constraintName
}
