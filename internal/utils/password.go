package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// BcryptVerifier checks plaintext passwords against bcrypt hashes.
type BcryptVerifier struct{}

// Verify reports whether plaintext matches hash. Malformed hashes never match.
func (BcryptVerifier) Verify(plaintext, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

var (
	decoyOnce sync.Once
	decoyHash string
)

// DecoyHash returns a process-wide bcrypt hash of a random secret. Login compares
// against it when no account matches, so a miss costs the same as a wrong password.
func (BcryptVerifier) DecoyHash() string {
	decoyOnce.Do(func() {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return
		}
		decoyHash, _ = HashPassword(base64.RawURLEncoding.EncodeToString(secret))
	})
	return decoyHash
}

// HashPassword produces a bcrypt hash at the default cost, used to seed user rows.
func HashPassword(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
