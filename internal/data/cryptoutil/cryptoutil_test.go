package cryptoutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestAESGCMSealer_SealOpen(t *testing.T) {
	s, err := NewSealerFromSecret(testSecret, "session")
	require.NoError(t, err)

	sealed, err := s.Seal([]byte(`{"isLoggedIn":true}`), []byte("salud-cpv-session"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, "v1."))
	assert.NotContains(t, sealed, "isLoggedIn")
	assert.NotContains(t, sealed, "+")
	assert.NotContains(t, sealed, "/")

	pt, err := s.Open(sealed, []byte("salud-cpv-session"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"isLoggedIn":true}`, string(pt))
}

func TestAESGCMSealer_NonceIsRandom(t *testing.T) {
	s, err := NewSealerFromSecret(testSecret, "session")
	require.NoError(t, err)

	a, err := s.Seal([]byte("same"), nil)
	require.NoError(t, err)
	b, err := s.Seal([]byte("same"), nil)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestAESGCMSealer_TamperDetection(t *testing.T) {
	s, err := NewSealerFromSecret(testSecret, "session")
	require.NoError(t, err)
	sealed, err := s.Seal([]byte("payload"), []byte("ad"))
	require.NoError(t, err)

	flipped := []byte(sealed)
	last := len(flipped) - 1
	if flipped[last] == 'A' {
		flipped[last] = 'B'
	} else {
		flipped[last] = 'A'
	}

	_, err = s.Open(string(flipped), []byte("ad"))
	assert.Error(t, err)

	_, err = s.Open(sealed, []byte("other"))
	assert.ErrorIs(t, err, ErrOpen)
}

func TestAESGCMSealer_WrongSecret(t *testing.T) {
	s1, err := NewSealerFromSecret(testSecret, "session")
	require.NoError(t, err)
	s2, err := NewSealerFromSecret(strings.Repeat("z", 40), "session")
	require.NoError(t, err)

	sealed, err := s1.Seal([]byte("payload"), nil)
	require.NoError(t, err)
	_, err = s2.Open(sealed, nil)
	assert.ErrorIs(t, err, ErrOpen)
}

func TestAESGCMSealer_Malformed(t *testing.T) {
	s, err := NewSealerFromSecret(testSecret, "session")
	require.NoError(t, err)

	for _, in := range []string{"", "v1.", "v2.abc", "v1.!!!notbase64", "v1.AAAA", "plain"} {
		_, err := s.Open(in, nil)
		assert.ErrorIs(t, err, ErrMalformed, in)
	}
}

func TestNewSealerFromSecret_RejectsShortSecret(t *testing.T) {
	_, err := NewSealerFromSecret("", "session")
	assert.ErrorIs(t, err, ErrSecretTooShort)

	_, err = NewSealerFromSecret(strings.Repeat("a", MinSecretLength-1), "session")
	assert.ErrorIs(t, err, ErrSecretTooShort)

	_, err = NewSealerFromSecret(strings.Repeat("a", MinSecretLength), "session")
	assert.NoError(t, err)
}

func TestDeriveKey_SeparatesByInfo(t *testing.T) {
	a, err := DeriveKey(testSecret, "session")
	require.NoError(t, err)
	b, err := DeriveKey(testSecret, "csrf")
	require.NoError(t, err)
	again, err := DeriveKey(testSecret, "session")
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.False(t, bytes.Equal(a, b))
	assert.Equal(t, a, again)
}

func TestNewAESGCMSealer_InvalidKey(t *testing.T) {
	_, err := NewAESGCMSealer([]byte("short"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be 32 bytes")
}
