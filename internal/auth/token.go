package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes gives 128 bits of entropy, encoded as 22 URL-safe characters.
const tokenBytes = 16

// NewToken returns a random URL-safe token for remember-me, activation and reset links.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
