package ports_test

import (
	"testing"

	"github.com/noe-create/medidhub-cpv-sub001/internal/adapters/cookiesession"
	"github.com/noe-create/medidhub-cpv-sub001/internal/adapters/devauth"
	"github.com/noe-create/medidhub-cpv-sub001/internal/adapters/oidc"
	"github.com/noe-create/medidhub-cpv-sub001/internal/adapters/passwords"
	redisadapter "github.com/noe-create/medidhub-cpv-sub001/internal/adapters/redis"
	mocks "github.com/noe-create/medidhub-cpv-sub001/internal/mocks/auth"
	"github.com/noe-create/medidhub-cpv-sub001/internal/ports"
)

// This test only verifies that adapters and doubles conform to the ports at compile time.
func TestImplementationsSatisfyPorts(t *testing.T) {
	t.Helper()

	var _ ports.AuthProvider = (*mocks.MockAuthProvider)(nil)
	var _ ports.AuthProvider = (*oidc.Provider)(nil)
	var _ ports.AuthProvider = (*devauth.Provider)(nil)
	var _ ports.SessionStore = (*mocks.MemorySessionStore)(nil)
	var _ ports.SessionStore = (*cookiesession.Store)(nil)
	var _ ports.LoginLimiter = (*mocks.MemoryLoginLimiter)(nil)
	var _ ports.LoginLimiter = (*redisadapter.LoginLimiter)(nil)
	var _ ports.PasswordHasher = passwords.Bcrypt{}
}
