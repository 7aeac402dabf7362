package auth

import (
	"context"
	"log"
	"time"

	"github.com/dferreira/authserver/internal/database"
	"github.com/dferreira/authserver/internal/mail"
	"github.com/dferreira/authserver/internal/model"
	"github.com/dferreira/authserver/internal/session"
	"github.com/dferreira/authserver/util/passwordutil"
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
)

// Service orchestrates the credential and session lifecycle: registration,
// login, profile management, password change and the reset flow.
type Service struct {
	users    database.UserDB
	tokens   database.ResetTokenDB
	sessions *session.Manager
	mailer   mail.Mailer

	frontendURL string
}

// NewService assembles the auth service from its collaborators.
func NewService(
	users database.UserDB,
	tokens database.ResetTokenDB,
	sessions *session.Manager,
	mailer mail.Mailer,
	frontendURL string,
) *Service {
	return &Service{
		users:       users,
		tokens:      tokens,
		sessions:    sessions,
		mailer:      mailer,
		frontendURL: frontendURL,
	}
}

// Register creates a new user and issues a session token for it.
func (s *Service) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	if err := validateRegistration(name, email, password); err != nil {
		return nil, "", err
	}

	hash, err := passwordutil.GeneratePasswordHash(password)
	if err != nil {
		return nil, "", errors.Wrap(err, "hashing password")
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           id.String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Photo:        model.DefaultPhoto,
		Phone:        model.DefaultPhone,
		Bio:          model.DefaultBio,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if err == database.ErrDuplicateEmail {
			return nil, "", model.ErrDuplicateEmail
		}
		return nil, "", errors.Wrap(err, "creating user")
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, "", errors.Wrap(err, "issuing session")
	}

	return user, token, nil
}

// Login verifies the user's credentials and issues a session token.
// The session is only issued after the password check succeeds.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	if email == "" || password == "" {
		return nil, "", model.ErrMissingCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if err == database.ErrUserNotFound {
			return nil, "", model.ErrUserNotFound
		}
		return nil, "", errors.Wrap(err, "looking up user")
	}

	if !passwordutil.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", model.ErrWrongCredentials
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, "", errors.Wrap(err, "issuing session")
	}

	return user, token, nil
}

// GetProfile returns the user owning a verified session.
func (s *Service) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if err == database.ErrUserNotFound {
			return nil, model.ErrProfileNotFound
		}
		return nil, errors.Wrap(err, "looking up user")
	}
	return user, nil
}

// UpdateProfile merges the supplied fields over the stored record. Omitted
// fields keep their current value; the email is never changed here.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update *model.ProfileUpdate) (*model.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Photo != nil {
		user.Photo = *update.Photo
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	if update.Bio != nil {
		if len(*update.Bio) > model.MaxBioLength {
			return nil, model.ErrBioTooLong
		}
		user.Bio = *update.Bio
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.UpdateUser(ctx, user); err != nil {
		if err == database.ErrUserNotFound {
			return nil, model.ErrProfileNotFound
		}
		return nil, errors.Wrap(err, "updating user")
	}
	return user, nil
}

// ChangePassword verifies the old password before storing a hash of the
// new one. Re-hashing is skipped when the password did not actually change.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return model.ErrMissingPasswords
	}
	if len(newPassword) < passwordutil.MinPasswordLength {
		return model.ErrPasswordTooShort
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	if !passwordutil.CheckPasswordHash(oldPassword, user.PasswordHash) {
		return model.ErrWrongOldPassword
	}
	if newPassword == oldPassword {
		// Unchanged value, keep the stored hash.
		return nil
	}

	return s.setPassword(ctx, user, newPassword)
}

// ForgotPassword issues a reset token for the account and emails a reset
// link. Any previously issued token for the user is invalidated first.
// A delivery failure leaves the token valid until it expires.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if err == database.ErrUserNotFound {
			return model.ErrEmailNotRegistered
		}
		return errors.Wrap(err, "looking up user")
	}

	plaintext, hash, err := generateResetToken(user.ID)
	if err != nil {
		return errors.Wrap(err, "generating reset token")
	}

	now := time.Now().UTC()
	token := &model.ResetToken{
		UserID:    user.ID,
		TokenHash: hash,
		CreatedAt: now,
		ExpiresAt: now.Add(model.ResetTokenTTL),
	}
	if err := s.tokens.SaveResetToken(ctx, token); err != nil {
		return errors.Wrap(err, "saving reset token")
	}

	resetURL := s.frontendURL + "/resetpassword/" + plaintext
	body := mail.ResetEmail(user.Name, resetURL)
	if err := s.mailer.Send(mail.ResetEmailSubject, body, user.Email); err != nil {
		log.Printf("Error sending reset email: %v\n", err)
		return model.ErrMailDelivery
	}

	return nil
}

// ResetPassword exchanges a live reset token for a password overwrite.
// The token is single-use: it is deleted in the same transaction that
// validates it.
func (s *Service) ResetPassword(ctx context.Context, presentedToken, newPassword string) error {
	if newPassword == "" {
		return model.ErrMissingFields
	}
	if len(newPassword) < passwordutil.MinPasswordLength {
		return model.ErrPasswordTooShort
	}

	userID, err := s.tokens.ConsumeResetToken(ctx, hashResetToken(presentedToken), time.Now().UTC())
	if err != nil {
		if err == database.ErrTokenNotFound {
			return model.ErrResetTokenInvalid
		}
		return errors.Wrap(err, "consuming reset token")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "looking up user")
	}

	return s.setPassword(ctx, user, newPassword)
}

// setPassword unconditionally overwrites the stored hash.
func (s *Service) setPassword(ctx context.Context, user *model.User, newPassword string) error {
	hash, err := passwordutil.GeneratePasswordHash(newPassword)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return errors.Wrap(err, "updating user")
	}
	return nil
}
