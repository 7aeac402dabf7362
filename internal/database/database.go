package database

import (
	"context"
	"errors"
	"time"

	"github.com/dferreira/authserver/internal/model"
)

// DefaultTimeout is the default length of time to wait
// for a database operation to complete.
const DefaultTimeout = time.Second * 3

// Sentinel errors returned by the stores.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrTokenNotFound  = errors.New("reset token not found or expired")
)

// Database handles all interactions with the data backend.
type Database interface {
	UserDB
	ResetTokenDB
	Close() error
}

// UserDB handles interactions with the user collection.
type UserDB interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
}

// ResetTokenDB handles interactions with the reset token collection.
type ResetTokenDB interface {
	// SaveResetToken persists the token, replacing any existing token
	// for the same user.
	SaveResetToken(ctx context.Context, token *model.ResetToken) error

	// ConsumeResetToken looks up a live token by its hash and deletes it,
	// returning the owning user's ID. Expired and unknown hashes fail
	// uniformly with ErrTokenNotFound.
	ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time) (string, error)
}
