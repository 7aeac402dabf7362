package passwordutil

import "golang.org/x/crypto/bcrypt"

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// GeneratePasswordHash generates a salted hash from a password.
func GeneratePasswordHash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a hash and the provided password.
// The underlying comparison is constant-time.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
