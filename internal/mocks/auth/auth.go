// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	domainauth "github.com/noe-create/medidhub-cpv-sub001/internal/domain/auth"
	"github.com/noe-create/medidhub-cpv-sub001/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider = (*MockAuthProvider)(nil)
	_ ports.SessionStore = (*MemorySessionStore)(nil)
	_ ports.LoginLimiter = (*MemoryLoginLimiter)(nil)
)

// MockAuthProvider simulates an IdP with deterministic state/nonce values.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	AuthURL     string
	DefaultUser domainauth.Identity

	mu        sync.Mutex
	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		DefaultUser: domainauth.Identity{Username: "mock.user", Email: "mock.user@example.com"},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}
	m.mu.Lock()
	m.callCount++
	n := m.callCount
	m.mu.Unlock()

	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}
	return authURL, fmt.Sprintf("state-%d", n), fmt.Sprintf("nonce-%d", n), nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	id := m.DefaultUser
	if id.Username == "" {
		id = domainauth.Identity{Username: "mock.user", Email: "mock.user@example.com"}
	}
	id.ExpiresAt = time.Now().Add(time.Hour)
	return id, nil
}

// MemorySessionStore keeps sessions server-side and hands the client an
// opaque numeric cookie. Useful where the sealed cookie is beside the point.
type MemorySessionStore struct {
	CookieName string

	mu       sync.Mutex
	next     int
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates an empty store using the production cookie name.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		CookieName: "salud-cpv-session",
		sessions:   make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Load(r *http.Request) domainauth.Session {
	c, err := r.Cookie(m.CookieName)
	if err != nil {
		return domainauth.DefaultSession()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[c.Value]
	if !ok {
		return domainauth.DefaultSession()
	}
	return sess
}

func (m *MemorySessionStore) Save(w http.ResponseWriter, _ *http.Request, sess domainauth.Session) error {
	m.mu.Lock()
	m.next++
	id := strconv.Itoa(m.next)
	m.sessions[id] = sess
	m.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: m.CookieName, Value: id, Path: "/", HttpOnly: true})
	return nil
}

func (m *MemorySessionStore) Clear(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(m.CookieName); err == nil {
		m.mu.Lock()
		delete(m.sessions, c.Value)
		m.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: m.CookieName, Value: "", Path: "/", MaxAge: -1})
}

// Put stores sess and returns the cookie that loads it, for arranging tests.
func (m *MemorySessionStore) Put(sess domainauth.Session) *http.Cookie {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	id := strconv.Itoa(m.next)
	m.sessions[id] = sess
	return &http.Cookie{Name: m.CookieName, Value: id}
}

// Len reports how many sessions are live.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// MemoryLoginLimiter counts failures in a map; the window never expires.
type MemoryLoginLimiter struct {
	Max int
	// Err, when set, is returned from every call.
	Err error

	mu       sync.Mutex
	failures map[string]int
}

// NewMemoryLoginLimiter allows max failures per key.
func NewMemoryLoginLimiter(maxFailures int) *MemoryLoginLimiter {
	return &MemoryLoginLimiter{Max: maxFailures, failures: make(map[string]int)}
}

func (m *MemoryLoginLimiter) Check(_ context.Context, key string) (bool, time.Duration, error) {
	if m.Err != nil {
		return false, 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures[key] >= m.Max {
		return false, time.Minute, nil
	}
	return true, 0, nil
}

func (m *MemoryLoginLimiter) RecordFailure(_ context.Context, key string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[key]++
	return nil
}

func (m *MemoryLoginLimiter) Reset(_ context.Context, key string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.failures, key)
	return nil
}

// Failures reports the current count for key.
func (m *MemoryLoginLimiter) Failures(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[key]
}
