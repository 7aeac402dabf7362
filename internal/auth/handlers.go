package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/dferreira/authserver/internal/database"
	"github.com/dferreira/authserver/internal/model"
	"github.com/dferreira/authserver/internal/session"
	"github.com/gorilla/mux"
)

// Endpoints served under the user API prefix.
const (
	APIPrefix = "/api/users"

	RegisterEndpoint       = "/register"
	LoginEndpoint          = "/login"
	LogoutEndpoint         = "/logout"
	GetUserEndpoint        = "/getuser"
	LoggedInEndpoint       = "/loggedin"
	UpdateUserEndpoint     = "/updateuser"
	ChangePasswordEndpoint = "/changepassword"
	ForgotPasswordEndpoint = "/forgotpassword"
	ResetPasswordEndpoint  = "/resetpassword/{resetToken}"
)

// SetupRoutes configures user routing for the given mux.
func SetupRoutes(r *mux.Router, svc *Service) {
	h := handler{svc: svc}

	api := r.PathPrefix(APIPrefix).Subrouter()
	api.HandleFunc(RegisterEndpoint, h.handleRegister).Methods(http.MethodPost)
	api.HandleFunc(LoginEndpoint, h.handleLogin).Methods(http.MethodPost)
	api.HandleFunc(LogoutEndpoint, h.handleLogout).Methods(http.MethodGet)
	api.HandleFunc(LoggedInEndpoint, h.handleLoggedIn).Methods(http.MethodGet)
	api.HandleFunc(ForgotPasswordEndpoint, h.handleForgotPassword).Methods(http.MethodPost)
	api.HandleFunc(ResetPasswordEndpoint, h.handleResetPassword).Methods(http.MethodPut)

	api.Handle(GetUserEndpoint,
		h.SessionAuthenticated(http.HandlerFunc(h.handleGetUser))).Methods(http.MethodGet)
	api.Handle(UpdateUserEndpoint,
		h.SessionAuthenticated(http.HandlerFunc(h.handleUpdateUser))).Methods(http.MethodPatch)
	api.Handle(ChangePasswordEndpoint,
		h.SessionAuthenticated(http.HandlerFunc(h.handleChangePassword))).Methods(http.MethodPatch)
}

type handler struct {
	svc *Service
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, model.ErrMissingFields)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	user, token, err := h.svc.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	session.SetCookie(w, token)

	profile := user.ToProfile()
	profile.Token = token
	writeJSON(w, http.StatusCreated, profile)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, model.ErrMissingCredentials)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	user, token, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	session.SetCookie(w, token)

	profile := user.ToProfile()
	profile.Token = token
	writeJSON(w, http.StatusOK, profile)
}

func (h handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	session.ClearCookie(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logout com Sucesso"})
}

func (h handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	user, err := h.svc.GetProfile(ctx, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user.ToProfile())
}

// handleLoggedIn reports session liveness as a bare boolean. It never
// errors: a missing or invalid cookie simply reads as false.
func (h handler) handleLoggedIn(w http.ResponseWriter, r *http.Request) {
	loggedIn := false
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		if _, err := h.svc.sessions.Verify(cookie.Value); err == nil {
			loggedIn = true
		}
	}
	writeJSON(w, http.StatusOK, loggedIn)
}

func (h handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	var update model.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, model.ErrMissingFields)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	user, err := h.svc.UpdateProfile(ctx, userID, &update)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user.ToProfile())
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	Password    string `json:"password"`
}

func (h handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, model.ErrMissingPasswords)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	if err := h.svc.ChangePassword(ctx, userID, req.OldPassword, req.Password); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Password alterada com sucesso"})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, model.ErrMissingFields)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	if err := h.svc.ForgotPassword(ctx, req.Email); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: "Email de recuperação enviado",
	})
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func (h handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	resetToken := mux.Vars(r)["resetToken"]

	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, model.ErrMissingFields)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	if err := h.svc.ResetPassword(ctx, resetToken, req.Password); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: "Password alterada com sucesso. Por favor efetue o login",
	})
}

type messageResponse struct {
	Message string `json:"message"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), database.DefaultTimeout)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v\n", err)
	}
}

// writeError translates a typed request error into its HTTP response.
// Anything else is an internal failure and surfaces as a generic 500.
func writeError(w http.ResponseWriter, err error) {
	if reqErr, ok := err.(*model.RequestError); ok {
		writeJSON(w, reqErr.Status, messageResponse{Message: reqErr.Message})
		return
	}
	log.Printf("Internal error: %v\n", err)
	writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Erro interno do servidor"})
}
