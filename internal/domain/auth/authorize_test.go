package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loggedIn(role string, perms ...Permission) Session {
	return Session{
		IsLoggedIn:  true,
		User:        &User{ID: 1, Username: "ana", Role: Role{ID: 3, Name: role}},
		Permissions: NewPermissionSet(perms...),
	}
}

func TestGate_AnonymousIsNotAuthenticated(t *testing.T) {
	g := NewGate("")
	for _, p := range append(KnownPermissions(), "anything.else") {
		err := g.Authorize(DefaultSession(), p)
		require.ErrorIs(t, err, ErrNotAuthenticated, string(p))
	}
}

func TestGate_MalformedLoggedInSessionIsNotAuthenticated(t *testing.T) {
	g := NewGate("")

	noUser := Session{IsLoggedIn: true, Permissions: NewPermissionSet(PermSettingsManage)}
	require.ErrorIs(t, g.Authorize(noUser, PermSettingsManage), ErrNotAuthenticated)

	noPerms := Session{IsLoggedIn: true, User: &User{Username: "x", Role: Role{Name: DefaultSuperuserRole}}}
	require.ErrorIs(t, g.Authorize(noPerms, PermSettingsManage), ErrNotAuthenticated)
}

func TestGate_SuperuserBypassesEveryPermission(t *testing.T) {
	g := NewGate("")
	s := loggedIn(DefaultSuperuserRole)

	for _, p := range append(KnownPermissions(), "never.granted") {
		assert.NoError(t, g.Authorize(s, p), string(p))
	}
}

func TestGate_SuperuserMatchIsExact(t *testing.T) {
	g := NewGate("")
	for _, role := range []string{"superusuario", "Superusuario ", "Superuser", "Admin"} {
		err := g.Authorize(loggedIn(role), PermSettingsManage)
		assert.ErrorIs(t, err, ErrForbidden, role)
	}
}

func TestGate_CustomSuperuserRole(t *testing.T) {
	g := NewGate("Root")
	assert.NoError(t, g.Authorize(loggedIn("Root"), PermDatabaseView))
	assert.ErrorIs(t, g.Authorize(loggedIn(DefaultSuperuserRole), PermDatabaseView), ErrForbidden)
}

func TestGate_MembershipDecidesForRegularRoles(t *testing.T) {
	g := NewGate("")
	s := loggedIn("Recepcion", PermPatientsManage, PermAppointmentsManage)

	for _, p := range KnownPermissions() {
		err := g.Authorize(s, p)
		if s.Permissions.Has(p) {
			assert.NoError(t, err, string(p))
		} else {
			assert.ErrorIs(t, err, ErrForbidden, string(p))
		}
	}
}

func TestGate_ForbiddenCarriesAuditDetails(t *testing.T) {
	g := NewGate("")
	err := g.Authorize(loggedIn("Recepcion"), PermUsersManage)

	var fe *ForbiddenError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "ana", fe.Username)
	assert.Equal(t, "Recepcion", fe.Role)
	assert.Equal(t, PermUsersManage, fe.Permission)
	assert.NotErrorIs(t, err, ErrNotAuthenticated)
}

func TestGate_Idempotent(t *testing.T) {
	g := NewGate("")
	sessions := []Session{
		DefaultSession(),
		loggedIn("Recepcion", PermSettingsManage),
		loggedIn(DefaultSuperuserRole),
	}
	for _, s := range sessions {
		for _, p := range []Permission{PermSettingsManage, PermUsersManage} {
			first := g.Authorize(s, p)
			second := g.Authorize(s, p)
			assert.Equal(t, first == nil, second == nil)
			assert.Equal(t, errors.Is(first, ErrForbidden), errors.Is(second, ErrForbidden))
			assert.Equal(t, errors.Is(first, ErrNotAuthenticated), errors.Is(second, ErrNotAuthenticated))
		}
	}
}
