// Package passwords hashes and verifies user passwords with bcrypt.
package passwords

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned when a password does not match its hash.
var ErrMismatch = errors.New("password mismatch")

// Bcrypt implements ports.PasswordHasher. The zero value uses bcrypt.DefaultCost.
type Bcrypt struct {
	Cost int
}

// Hash returns the bcrypt hash of password.
func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Compare returns nil when password matches hash and ErrMismatch otherwise.
// Malformed hashes are reported as errors distinct from ErrMismatch.
func (Bcrypt) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatch
	default:
		return fmt.Errorf("compare password: %w", err)
	}
}

// DummyHash is compared against when the user does not exist so that
// unknown usernames cost the same as wrong passwords.
const DummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoO5uV8Nl2XGb7Qx8QmQvY3Wc1Z9m2l6i."
