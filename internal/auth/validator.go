package auth

import (
	"regexp"

	"github.com/dferreira/authserver/internal/model"
	"github.com/dferreira/authserver/util/passwordutil"
)

// emailPattern matches the email shape the front end validates against.
var emailPattern = regexp.MustCompile(`^(([^<>()[\]\\.,;:\s@"]+(\.[^<>()[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)

// validateRegistration checks the required registration fields before any
// store mutation happens.
func validateRegistration(name, email, password string) *model.RequestError {
	if name == "" || email == "" || password == "" {
		return model.ErrMissingFields
	}
	if len(password) < passwordutil.MinPasswordLength {
		return model.ErrPasswordTooShort
	}
	if !validEmail(email) {
		return model.ErrInvalidEmail
	}
	return nil
}

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}
