package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// NewOpaqueToken generates a cryptographically random single-use token.
// The plaintext goes into the email link; only the digest is persisted.
func NewOpaqueToken() (plaintext, digest string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	plaintext = hex.EncodeToString(raw)
	return plaintext, HashOpaqueToken(plaintext), nil
}

// HashOpaqueToken returns the deterministic digest stored for a token, so a
// presented plaintext can be re-hashed and compared by equality. Unlike the
// password hash, this is intentionally unsalted.
func HashOpaqueToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
