package auth

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/token-auth-service/pkg/util/errorutil"
)

func TestHashIsDeterministic(t *testing.T) {
	h := NewHasher(nil)
	salt := bytes.Repeat([]byte{7}, SaltSize)

	a, err := h.Hash("abc123", salt)
	require.NoError(t, err)
	b, err := h.Hash("abc123", salt)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, sha256.Size)
}

func TestHashMatchesIteratedConstruction(t *testing.T) {
	salt := []byte("0123456789abcdef")
	want := sha256.Sum256(append(append([]byte{}, salt...), []byte("s3cret")...))
	for i := 0; i < 100; i++ {
		want = sha256.Sum256(want[:])
	}

	got, err := NewHasher(nil).Hash("s3cret", salt)
	require.NoError(t, err)
	assert.Equal(t, want[:], got)
}

func TestHashDiffersBySecretAndSalt(t *testing.T) {
	h := NewHasher(nil)
	salt1 := bytes.Repeat([]byte{1}, SaltSize)
	salt2 := bytes.Repeat([]byte{2}, SaltSize)

	base, _ := h.Hash("abc123", salt1)
	otherSecret, _ := h.Hash("abc124", salt1)
	otherSalt, _ := h.Hash("abc123", salt2)

	assert.NotEqual(t, base, otherSecret)
	assert.NotEqual(t, base, otherSalt)
}

func TestHashRejectsBlankSecret(t *testing.T) {
	h := NewHasher(nil)
	for _, secret := range []string{"", "   "} {
		_, err := h.Hash(secret, make([]byte, SaltSize))
		require.Error(t, err)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	}
}

func TestVerify(t *testing.T) {
	h := NewHasher(nil)
	salt, err := h.GenerateSalt()
	require.NoError(t, err)
	digest, err := h.Hash("1a2b3c", salt)
	require.NoError(t, err)

	assert.True(t, h.Verify("1a2b3c", digest, salt))
	assert.False(t, h.Verify("1a2b3d", digest, salt))
	assert.False(t, h.Verify("", digest, salt))
	assert.False(t, h.Verify("1a2b3c", digest[:16], salt))
}

func TestGenerateSalt(t *testing.T) {
	h := NewHasher(bytes.NewReader(bytes.Repeat([]byte{0xAB}, SaltSize)))
	salt, err := h.GenerateSalt()
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0xAB}, SaltSize), salt)

	_, err = h.GenerateSalt()
	assert.Error(t, err)

	random := NewHasher(nil)
	s1, _ := random.GenerateSalt()
	s2, _ := random.GenerateSalt()
	assert.Len(t, s1, SaltSize)
	assert.NotEqual(t, s1, s2)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy unavailable") }

func TestGenerateSaltPropagatesReaderError(t *testing.T) {
	_, err := NewHasher(failingReader{}).GenerateSalt()
	assert.EqualError(t, err, "entropy unavailable")
}

func TestStrengthCheck(t *testing.T) {
	cases := map[string]bool{
		"1a2b3c":                 true,
		"abc123":                 true,
		"123abc":                 true,
		"Passw0rd!":              true,
		"a1 b2c":                 true,
		"":                       false,
		"password":               false,
		"12345678":               false,
		"ab12":                   false,
		"abc12":                  false,
		"abcdefghij12345":        true,
		"abcdefghij123456":       false,
		strings.Repeat("a1", 10): false,
		"abc\n123":               false,
	}
	for secret, want := range cases {
		assert.Equal(t, want, StrengthCheck(secret), "secret %q", secret)
	}
}
