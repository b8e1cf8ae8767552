package auth

// Gate performs the fine-grained permission check.
// The zero value treats DefaultSuperuserRole as the superuser role.
type Gate struct {
	superuserRole string
}

// NewGate returns a Gate that bypasses permission checks for the named role.
// An empty name selects DefaultSuperuserRole.
func NewGate(superuserRole string) Gate {
	return Gate{superuserRole: superuserRole}
}

// SuperuserRole returns the role name that bypasses permission checks.
func (g Gate) SuperuserRole() string {
	if g.superuserRole == "" {
		return DefaultSuperuserRole
	}
	return g.superuserRole
}

// IsSuperuser reports whether the session's role name matches the superuser
// role exactly. The role name is the only signal consulted.
func (g Gate) IsSuperuser(s Session) bool {
	return s.User != nil && s.User.Role.Name == g.SuperuserRole()
}

// Authorize returns nil when s may exercise p.
// It returns ErrNotAuthenticated for anonymous or malformed sessions and a
// *ForbiddenError (matching ErrForbidden) when the permission is missing.
func (g Gate) Authorize(s Session, p Permission) error {
	if !s.Authenticated() {
		return ErrNotAuthenticated
	}
	if g.IsSuperuser(s) {
		return nil
	}
	if !s.Permissions.Has(p) {
		return &ForbiddenError{
			Username:   s.User.Username,
			Role:       s.User.Role.Name,
			Permission: p,
		}
	}
	return nil
}
