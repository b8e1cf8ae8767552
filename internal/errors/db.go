package errors

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

//nolint:gochecknoglobals // compiled once
var (
	// "Key (username)=(ana) already exists."
	reDetailKey = regexp.MustCompile(`^Key \(([^)]+)\)=`)
	// "... is still referenced from table "users"."
	reStillReferenced = regexp.MustCompile(`still referenced from table "?([a-z_]+)"?`)
	// "... is not present in table "roles"."
	reNotPresent = regexp.MustCompile(`not present in table "?([a-z_]+)"?`)
)

// tableNouns names each table of the directory schema the way the back office
// talks about it. Longer names come first so prefix matching on constraint
// names picks role_permissions over roles.
//
//nolint:gochecknoglobals // read-only lookup table
var tableNouns = []struct{ table, noun string }{
	{"role_permissions", "role grant"},
	{"system_settings", "setting"},
	{"permissions", "permission"},
	{"roles", "role"},
	{"users", "user"},
}

//nolint:gochecknoglobals // read-only lookup table
var constraintSuffixes = []string{"_key", "_pkey", "_fkey", "_check", "_unique"}

// MapDBError turns driver errors into AppErrors:
// context deadline/cancel become Timeout/Canceled, pgx.ErrNoRows becomes
// NotFound and constraint violations become Conflict, ForeignKey or
// Validation with the offending column in Field when it can be told.
// Anything else is returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCodeTimeout, "The database took too long to answer.")
	case errors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeCanceled, "The request was canceled.")
	case errors.Is(err, pgx.ErrNoRows):
		return Wrap(err, ErrCodeNotFound, "Record not found.")
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	var code ErrorCode
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		code = ErrCodeConflict
	case pgerrcode.ForeignKeyViolation:
		code = ErrCodeForeignKey
	case pgerrcode.NotNullViolation, pgerrcode.CheckViolation:
		code = ErrCodeValidation
	default:
		return Wrap(pgErr, ErrCodeInternal, "A database error occurred.")
	}

	field := violatedField(pgErr)
	return &AppError{Code: code, Message: violationMessage(code, pgErr, field), Field: field, Cause: pgErr}
}

func violationMessage(code ErrorCode, pgErr *pgconn.PgError, field string) string {
	switch code {
	case ErrCodeConflict:
		if noun := nounFor(tableOf(pgErr)); noun != "" {
			return "That " + noun + " already exists."
		}
		return "This value already exists."
	case ErrCodeForeignKey:
		if m := reStillReferenced.FindStringSubmatch(pgErr.Detail); m != nil {
			return "Still in use by a " + nounOr(m[1], "record") + "."
		}
		if m := reNotPresent.FindStringSubmatch(pgErr.Detail); m != nil {
			return "The referenced " + nounOr(m[1], "record") + " does not exist."
		}
		return "The " + nounOr(tableOf(pgErr), "record") + " is linked to other data."
	default:
		if pgErr.Code == pgerrcode.NotNullViolation && field != "" {
			return "This field is required."
		}
		return "This field has an invalid value."
	}
}

// violatedField prefers server metadata, then the detail key, then the
// constraint name. Multi-column keys yield "".
func violatedField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if m := reDetailKey.FindStringSubmatch(pgErr.Detail); m != nil {
		if strings.Contains(m[1], ",") {
			return ""
		}
		return strings.TrimSpace(m[1])
	}
	return fieldFromConstraint(pgErr.ConstraintName)
}

// fieldFromConstraint reads Postgres default constraint names such as
// users_username_key or roles_name_check.
func fieldFromConstraint(name string) string {
	rest, ok := "", false
	for _, t := range tableNouns {
		if r, found := strings.CutPrefix(name, t.table+"_"); found {
			rest, ok = r, true
			break
		}
	}
	if !ok {
		return ""
	}
	for _, suffix := range constraintSuffixes {
		if r, found := strings.CutSuffix(rest, suffix); found {
			// role_permissions_role_id_permission_id_key spans two columns.
			if strings.Count(r, "_") > 1 {
				return ""
			}
			return r
		}
	}
	return ""
}

func tableOf(pgErr *pgconn.PgError) string {
	if pgErr.TableName != "" {
		return pgErr.TableName
	}
	for _, t := range tableNouns {
		if strings.HasPrefix(pgErr.ConstraintName, t.table+"_") {
			return t.table
		}
	}
	return ""
}

func nounFor(table string) string {
	table = strings.ToLower(strings.TrimSpace(table))
	for _, t := range tableNouns {
		if t.table == table {
			return t.noun
		}
	}
	return ""
}

func nounOr(table, fallback string) string {
	if n := nounFor(table); n != "" {
		return n
	}
	return fallback
}
