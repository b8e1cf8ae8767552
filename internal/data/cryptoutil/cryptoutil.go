// Package cryptoutil seals small payloads (session cookies) with AES-256-GCM.
package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// MinSecretLength is the shortest secret accepted for key derivation.
const MinSecretLength = 32

// sealPrefixV1 versions the format so the key or algorithm can rotate later.
const sealPrefixV1 = "v1."

var (
	// ErrSecretTooShort is returned when the secret is empty or shorter than MinSecretLength.
	ErrSecretTooShort = fmt.Errorf("secret must be at least %d characters", MinSecretLength)
	// ErrMalformed is returned for values that are not a v1 sealed payload.
	ErrMalformed = errors.New("malformed sealed value")
	// ErrOpen is returned when authentication of the sealed value fails.
	ErrOpen = errors.New("sealed value failed authentication")
)

// Sealer encrypts and authenticates payloads.
type Sealer interface {
	Seal(plaintext, additionalData []byte) (string, error)
	Open(sealed string, additionalData []byte) ([]byte, error)
}

// AESGCMSealer implements Sealer using AES-256-GCM.
type AESGCMSealer struct {
	aead cipher.AEAD
	rand io.Reader
}

// NewAESGCMSealer constructs a sealer from a raw 32-byte key.
func NewAESGCMSealer(key []byte) (*AESGCMSealer, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("aes-gcm key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESGCMSealer{aead: gcm, rand: rand.Reader}, nil
}

// NewSealerFromSecret derives a 32-byte key from secret with HKDF-SHA256.
// The info string separates keys derived from the same secret for different uses.
func NewSealerFromSecret(secret, info string) (*AESGCMSealer, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	key, err := DeriveKey(secret, info)
	if err != nil {
		return nil, err
	}
	return NewAESGCMSealer(key)
}

// DeriveKey expands secret into a 32-byte key bound to info.
func DeriveKey(secret, info string) ([]byte, error) {
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

// Seal encrypts plaintext with a random nonce and returns "v1." + base64url(nonce||ciphertext).
func (s *AESGCMSealer) Seal(plaintext, additionalData []byte) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(s.rand, nonce); err != nil {
		return "", err
	}
	buf := s.aead.Seal(nonce, nonce, plaintext, additionalData)
	return sealPrefixV1 + base64.RawURLEncoding.EncodeToString(buf), nil
}

// Open reverses Seal. Any modification of the value or additionalData fails with ErrOpen.
func (s *AESGCMSealer) Open(sealed string, additionalData []byte) ([]byte, error) {
	body, ok := strings.CutPrefix(sealed, sealPrefixV1)
	if !ok {
		return nil, ErrMalformed
	}
	data, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize+s.aead.Overhead() {
		return nil, ErrMalformed
	}
	pt, err := s.aead.Open(nil, data[:nonceSize], data[nonceSize:], additionalData)
	if err != nil {
		return nil, ErrOpen
	}
	return pt, nil
}
