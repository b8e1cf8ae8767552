package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapDBError_PassThrough(t *testing.T) {
	assert.NoError(t, MapDBError(nil))

	stdErr := errors.New("standard error")
	assert.Same(t, stdErr, MapDBError(stdErr))
}

func TestMapDBError_ContextErrors(t *testing.T) {
	assert.True(t, IsTimeout(MapDBError(context.DeadlineExceeded)))
	assert.True(t, IsCanceled(MapDBError(fmt.Errorf("query: %w", context.Canceled))))
}

func TestMapDBError_NoRows(t *testing.T) {
	err := MapDBError(fmt.Errorf("find user: %w", pgx.ErrNoRows))
	assert.True(t, IsNotFound(err))
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestMapDBError_Violations(t *testing.T) {
	tests := []struct {
		name    string
		pgErr   *pgconn.PgError
		code    ErrorCode
		field   string
		message string
	}{
		{
			name:    "username taken, column metadata",
			pgErr:   &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_username_key", ColumnName: "username"},
			code:    ErrCodeConflict,
			field:   "username",
			message: "That user already exists.",
		},
		{
			name: "role name taken, detail key",
			pgErr: &pgconn.PgError{
				Code:      pgerrcode.UniqueViolation,
				Detail:    `Key (name)=(Medico) already exists.`,
				TableName: "roles",
			},
			code:    ErrCodeConflict,
			field:   "name",
			message: "That role already exists.",
		},
		{
			name:    "role name taken, constraint only",
			pgErr:   &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "roles_name_key"},
			code:    ErrCodeConflict,
			field:   "name",
			message: "That role already exists.",
		},
		{
			name: "duplicate grant spans two columns",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "role_permissions_pkey",
				Detail:         `Key (role_id, permission_id)=(2, users.manage) already exists.`,
			},
			code:    ErrCodeConflict,
			message: "That role grant already exists.",
		},
		{
			name:    "unknown table",
			pgErr:   &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "audit_x_key"},
			code:    ErrCodeConflict,
			message: "This value already exists.",
		},
		{
			name: "role still assigned",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.ForeignKeyViolation,
				ConstraintName: "users_role_id_fkey",
				Detail:         `Key (id)=(3) is still referenced from table "users".`,
			},
			code:    ErrCodeForeignKey,
			field:   "id",
			message: "Still in use by a user.",
		},
		{
			name: "user with missing role",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.ForeignKeyViolation,
				ConstraintName: "users_role_id_fkey",
				Detail:         `Key (role_id)=(99) is not present in table "roles".`,
			},
			code:    ErrCodeForeignKey,
			field:   "role_id",
			message: "The referenced role does not exist.",
		},
		{
			name:    "foreign key without detail",
			pgErr:   &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, TableName: "role_permissions"},
			code:    ErrCodeForeignKey,
			message: "The role grant is linked to other data.",
		},
		{
			name:    "missing password hash",
			pgErr:   &pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "password_hash"},
			code:    ErrCodeValidation,
			field:   "password_hash",
			message: "This field is required.",
		},
		{
			name:    "blank role name",
			pgErr:   &pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "roles_name_check"},
			code:    ErrCodeValidation,
			field:   "name",
			message: "This field has an invalid value.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)

			var appErr *AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.field, appErr.Field)
			assert.Equal(t, tt.message, appErr.Message)
			assert.Same(t, tt.pgErr, appErr.Cause)
		})
	}
}

func TestMapDBError_UnknownPgError(t *testing.T) {
	err := MapDBError(&pgconn.PgError{Code: pgerrcode.DeadlockDetected})
	assert.True(t, IsInternal(err))
}

func TestFieldFromConstraint(t *testing.T) {
	tests := map[string]string{
		"roles_name_key":                             "name",
		"users_username_key":                         "username",
		"users_role_id_fkey":                         "role_id",
		"permissions_id_check":                       "id",
		"role_permissions_role_id_permission_id_key": "",
		"system_settings_pkey":                       "",
		"audit_user_key":                             "",
		"":                                           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, fieldFromConstraint(in), in)
	}
}
