// Package credentials hashes and verifies account passwords.
package credentials

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

// MaxPasswordBytes is the longest input bcrypt uses; longer passwords are
// truncated to it on both hashing and verification.
const MaxPasswordBytes = 72

// Hasher turns raw passwords into one-way hashes and checks candidates
// against them.
type Hasher interface {
	Hash(raw string) (string, error)
	Verify(raw, hashed string) (bool, error)
}

// BcryptHasher is a salted, cost-parameterized Hasher.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given cost. Costs outside
// bcrypt's accepted range fall back to DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(raw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(truncate(raw), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether raw matches hashed. A mismatch is (false, nil);
// a malformed hash is returned as an error.
func (h *BcryptHasher) Verify(raw, hashed string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), truncate(raw))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

func truncate(raw string) []byte {
	b := []byte(raw)
	if len(b) > MaxPasswordBytes {
		b = b[:MaxPasswordBytes]
	}
	return b
}
