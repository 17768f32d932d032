package dberrors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateConstraintError(t *testing.T) {
	dup := fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	assert.True(t, IsDuplicateConstraintError(dup, "users_email_key"))
	assert.False(t, IsDuplicateConstraintError(dup, "users_student_id_key"))
	assert.False(t, IsDuplicateConstraintError(dup, ""))
	assert.Equal(t, "users_email_key", ViolatedConstraint(dup))

	fk := &pgconn.PgError{Code: "23503", ConstraintName: "refresh_tokens_user_id_fkey"}
	assert.False(t, IsDuplicateConstraintError(fk, "refresh_tokens_user_id_fkey"))
	assert.Empty(t, ViolatedConstraint(assert.AnError))
}
