package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated means there is no valid logged-in session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrForbidden means the session is authenticated but lacks the permission.
	ErrForbidden = errors.New("forbidden")
	// ErrMisconfiguredSecret means the session secret is absent or too short.
	ErrMisconfiguredSecret = errors.New("session secret misconfigured")
)

// ForbiddenError carries the audit details of a denied check.
// It matches ErrForbidden with errors.Is.
type ForbiddenError struct {
	Username   string
	Role       string
	Permission Permission
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden: user %q (role %q) lacks permission %q", e.Username, e.Role, e.Permission)
}

// Is lets errors.Is(err, ErrForbidden) succeed.
func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }
