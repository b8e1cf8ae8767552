// Package auth contains domain-level types for sessions and authorization.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"encoding/json"
	"sort"
	"time"
)

// DefaultSuperuserRole is the role name that bypasses permission checks.
const DefaultSuperuserRole = "Superusuario"

// Role is the user's role as stored in the directory at login time.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User is the identity copied into the session at login.
// It is a snapshot, not a live reference to the directory row.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Identity is the authenticated principal returned by an external IdP.
// Adapters map provider-specific claims into this shape; the username is
// then resolved against the user directory.
type Identity struct {
	Username  string
	Email     string
	ExpiresAt time.Time
}

// Session is the entire authentication state carried in the sealed cookie.
// There is no server-side session table.
type Session struct {
	ID          string        `json:"id,omitempty"`
	User        *User         `json:"user,omitempty"`
	IsLoggedIn  bool          `json:"isLoggedIn"`
	Permissions PermissionSet `json:"permissions"`
	IssuedAt    time.Time     `json:"issuedAt,omitempty"`
}

// DefaultSession returns the anonymous session used whenever the cookie is
// absent, unreadable, or expired.
func DefaultSession() Session {
	return Session{IsLoggedIn: false, Permissions: PermissionSet{}}
}

// Authenticated reports whether the session satisfies the logged-in invariant:
// the flag is set and both the user and the permission set are present.
func (s Session) Authenticated() bool {
	return s.IsLoggedIn && s.User != nil && s.Permissions != nil
}

// Username returns the session's username or an empty string.
func (s Session) Username() string {
	if s.User == nil {
		return ""
	}
	return s.User.Username
}

// RoleName returns the session's role name or an empty string.
func (s Session) RoleName() string {
	if s.User == nil {
		return ""
	}
	return s.User.Role.Name
}

// PermissionSet is an unordered set of permission identifiers.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from the given identifiers, ignoring empty ones.
func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		if p == "" {
			continue
		}
		set[p] = struct{}{}
	}
	return set
}

// Has reports whether p is a member of the set. A nil set has no members.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Slice returns the members sorted for stable output.
func (s PermissionSet) Slice() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s PermissionSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	return json.Marshal(s.Slice())
}

// UnmarshalJSON decodes an array of identifiers. JSON null leaves the set nil.
func (s *PermissionSet) UnmarshalJSON(data []byte) error {
	var perms []Permission
	if err := json.Unmarshal(data, &perms); err != nil {
		return err
	}
	if perms == nil {
		*s = nil
		return nil
	}
	*s = NewPermissionSet(perms...)
	return nil
}
