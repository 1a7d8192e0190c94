package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"io"
	"strings"
	"unicode/utf8"

	apperrors "github.com/spec-kit/token-auth-service/pkg/util/errorutil"
)

const (
	// SaltSize is the length of generated salts in bytes.
	SaltSize = 16
	// hashRounds counts the re-hashes applied after the salted first pass.
	hashRounds = 100

	minSecretLen = 6
	maxSecretLen = 15
)

// Hasher computes and verifies salted iterated SHA-256 digests.
type Hasher struct {
	rand io.Reader
}

// NewHasher builds a hasher drawing salts from r; nil selects crypto/rand.
func NewHasher(r io.Reader) *Hasher {
	if r == nil {
		r = rand.Reader
	}
	return &Hasher{rand: r}
}

// Hash returns SHA-256(salt || secret) re-hashed 100 more times.
func (h *Hasher) Hash(secret string, salt []byte) ([]byte, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, apperrors.NewValidationError("password", "password is required")
	}

	first := sha256.New()
	first.Write(salt)
	first.Write([]byte(secret))
	digest := first.Sum(nil)

	for i := 0; i < hashRounds; i++ {
		sum := sha256.Sum256(digest)
		digest = sum[:]
	}
	return digest, nil
}

// Verify reports whether secret hashes to stored under salt.
func (h *Hasher) Verify(secret string, stored, salt []byte) bool {
	digest, err := h.Hash(secret, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(digest, stored) == 1
}

// GenerateSalt draws SaltSize random bytes.
func (h *Hasher) GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// StrengthCheck accepts secrets of 6-15 characters holding at least one
// ASCII letter and one digit.
func StrengthCheck(secret string) bool {
	n := utf8.RuneCountInString(secret)
	if n < minSecretLen || n > maxSecretLen {
		return false
	}
	var letter, digit bool
	for _, r := range secret {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			letter = true
		case r == '\n' || r == '\r':
			// line breaks are never part of a password
			return false
		}
	}
	return letter && digit
}
