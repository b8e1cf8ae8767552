package httpx

import (
	"context"

	domainauth "github.com/noe-create/medidhub-cpv-sub001/internal/domain/auth"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
type sessionKey struct{}

type requestIDKey struct{}

// SetSessionInContext returns a child context that carries the given session.
func SetSessionInContext(ctx context.Context, session domainauth.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the session loaded by RouteGate and whether one was present.
// Absent means the default session.
func SessionFromContext(ctx context.Context) (domainauth.Session, bool) {
	if s, ok := ctx.Value(sessionKey{}).(domainauth.Session); ok {
		return s, true
	}
	return domainauth.DefaultSession(), false
}

// RequestIDFromContext returns the id assigned by the Logging middleware.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
