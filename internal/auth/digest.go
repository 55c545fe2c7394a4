package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher produces and checks bcrypt digests for passwords and opaque tokens.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher. With minCost set it uses bcrypt.MinCost, which keeps
// test suites fast; otherwise bcrypt.DefaultCost.
func NewHasher(minCost bool) *Hasher {
	cost := bcrypt.DefaultCost
	if minCost {
		cost = bcrypt.MinCost
	}
	return &Hasher{cost: cost}
}

// Cost returns the bcrypt work factor used for new digests.
func (h *Hasher) Cost() int {
	return h.cost
}

// Digest returns the salted bcrypt hash of secret.
func (h *Hasher) Digest(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to digest secret: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether secret matches digest. A nil digest never matches.
func (h *Hasher) Verify(digest *string, secret string) bool {
	if digest == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*digest), []byte(secret)) == nil
}
