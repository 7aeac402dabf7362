package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// generateResetToken creates the caller-visible reset value and the hash
// stored in its place. The plaintext is 32 random bytes in hex with the
// owning user's ID appended; only the SHA-256 of that composite string is
// ever persisted.
func generateResetToken(userID string) (plaintext, hash string, err error) {
	b := make([]byte, 32)
	if _, err = rand.Read(b); err != nil {
		return "", "", err
	}
	plaintext = hex.EncodeToString(b) + userID
	return plaintext, hashResetToken(plaintext), nil
}

// hashResetToken derives the stored lookup key from a presented token.
func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
