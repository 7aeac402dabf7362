package model

import "time"

// Defaults applied to new users when the client omits the field.
const (
	DefaultPhoto = "https://i.ibb.co/4pDNDk1/avatar.png"
	DefaultPhone = "+351"
	DefaultBio   = "bio"
)

// MaxBioLength is the maximum number of characters allowed in a user bio.
const MaxBioLength = 250

// User is a registered account holder.
type User struct {
	ID           string    `json:"id"` // uuid
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Photo        string    `json:"photo"`
	Phone        string    `json:"phone"`
	Bio          string    `json:"bio"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile holds the user fields shared with clients. The password hash
// never leaves the server.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
	Phone string `json:"phone"`
	Bio   string `json:"bio"`
	Token string `json:"token,omitempty"`
}

// ToProfile converts a user record to its client-facing form.
func (u *User) ToProfile() *Profile {
	return &Profile{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Photo: u.Photo,
		Phone: u.Phone,
		Bio:   u.Bio,
	}
}

// ProfileUpdate carries the mutable profile fields of a PATCH request.
// Nil fields keep their current value. Email changes are not supported
// through profile updates.
type ProfileUpdate struct {
	Name  *string `json:"name"`
	Photo *string `json:"photo"`
	Phone *string `json:"phone"`
	Bio   *string `json:"bio"`
}
