package model

import "time"

// ResetTokenTTL is how long an issued reset token stays valid.
const ResetTokenTTL = 30 * time.Minute

// ResetToken authorizes a single password reset for its owning user.
// Only the SHA-256 of the emailed value is stored.
type ResetToken struct {
	UserID    string    `json:"userId"`
	TokenHash string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the token is no longer valid at the given instant.
// A token is valid strictly before its expiry.
func (t *ResetToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
