package model

import "net/http"

// RequestError is a failure that maps directly onto an HTTP response:
// a status code plus a user-facing message.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// Request errors surfaced by the auth endpoints. Messages match the
// front end's locale.
var (
	ErrMissingFields = &RequestError{
		Status:  http.StatusBadRequest,
		Message: "Por favor preencha todos os campos obrigatórios",
	}
	ErrPasswordTooShort = &RequestError{
		Status:  http.StatusBadRequest,
		Message: "Password deve conter no mínimo 6 caracteres",
	}
	ErrInvalidEmail = &RequestError{
		Status:  http.StatusBadRequest,
		Message: "Email Inválido",
	}
	ErrDuplicateEmail = &RequestError{
		Status:  http.StatusBadRequest,
		Message: "Email já registado",
	}
	ErrMissingCredentials = &RequestError{
		Status:  http.StatusBadRequest,
		Message: "Por favor adicione um email e password",
	}
	ErrUserNotFound = &RequestError{
		Status:  http.StatusBadRequest,
		Message: "Utilizador não encontrado. Por favor introduza um email válido",
	}
	ErrWrongCredentials = &RequestError{
		Status:  http.StatusBadRequest,
		Message: "Email ou Password Inválidos",
	}
	ErrUnauthorized = &RequestError{
		Status:  http.StatusUnauthorized,
		Message: "Não autorizado. Por favor efetue o login",
	}
	ErrProfileNotFound = &RequestError{
		Status:  http.StatusBadRequest,
		Message: "Utilizador não encontrado",
	}
	ErrBioTooLong = &RequestError{
		Status:  http.StatusBadRequest,
		Message: "Bio não pode conter mais de 250 caracteres",
	}
	ErrMissingPasswords = &RequestError{
		Status:  http.StatusBadRequest,
		Message: "Por favor adicione a password antiga e a nova",
	}
	ErrWrongOldPassword = &RequestError{
		Status:  http.StatusBadRequest,
		Message: "Password antiga incorreta",
	}
	ErrEmailNotRegistered = &RequestError{
		Status:  http.StatusNotFound,
		Message: "Utilizador não existe",
	}
	ErrResetTokenInvalid = &RequestError{
		Status:  http.StatusNotFound,
		Message: "Token inválido ou expirado",
	}
	ErrMailDelivery = &RequestError{
		Status:  http.StatusInternalServerError,
		Message: "Email não enviado. Por favor tente novamente",
	}
)
