package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes passwords with a process-wide salt.
// The password is keyed with the salt through HMAC-SHA256 before bcrypt, which
// also keeps the bcrypt input under its 72-byte limit.
type PasswordHasher struct {
	salt []byte
	cost int
}

// NewPasswordHasher creates a hasher; a cost outside bcrypt's range falls back to the default
func NewPasswordHasher(salt string, cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{salt: []byte(salt), cost: cost}
}

// Hash returns the storable hash of password
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword(h.prehash(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether password matches hash
func (h *PasswordHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), h.prehash(password)) == nil
}

func (h *PasswordHasher) prehash(password string) []byte {
	mac := hmac.New(sha256.New, h.salt)
	mac.Write([]byte(password))
	sum := mac.Sum(nil)
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum)
	return out
}
