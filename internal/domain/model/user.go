//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxUsernameLen = 64
	maxRoleNameLen = 64
	// MinPasswordLen is the shortest password accepted by the admin tooling.
	MinPasswordLen = 8
)

// UserRecord is a directory row joined with its role and the role's permissions.
type UserRecord struct {
	ID           int64      `db:"id"`
	Username     string     `db:"username"`
	PasswordHash string     `db:"password_hash"`
	Active       bool       `db:"active"`
	RoleID       int64      `db:"role_id"`
	RoleName     string     `db:"role_name"`
	Permissions  []string   `db:"permissions"`
	CreatedAt    time.Time  `db:"created_at"`
	LastLoginAt  *time.Time `db:"last_login_at"`
}

// CreateUserRequest is the input for adding a user to the directory.
// PasswordHash must already be a bcrypt hash.
type CreateUserRequest struct {
	Username     string
	PasswordHash string
	RoleName     string
}

// Validate checks required fields and lengths.
func (r *CreateUserRequest) Validate() error {
	if err := ValidateUsername(r.Username); err != nil {
		return err
	}
	if strings.TrimSpace(r.PasswordHash) == "" {
		return errors.New("password hash is required")
	}
	if strings.TrimSpace(r.RoleName) == "" {
		return errors.New("role is required")
	}
	return nil
}

// ValidateUsername enforces the directory's username rules.
func ValidateUsername(username string) error {
	u := strings.TrimSpace(username)
	if u == "" {
		return errors.New("username is required")
	}
	if utf8.RuneCountInString(u) > maxUsernameLen {
		return errors.New("username is too long")
	}
	if strings.ContainsAny(u, " \t\r\n") {
		return errors.New("username must not contain whitespace")
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// Role is a named bundle of permissions.
type Role struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// ValidateRoleName checks a role name before insert.
func ValidateRoleName(name string) error {
	n := strings.TrimSpace(name)
	if n == "" {
		return errors.New("role name is required")
	}
	if utf8.RuneCountInString(n) > maxRoleNameLen {
		return errors.New("role name is too long")
	}
	return nil
}
